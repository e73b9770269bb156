// Package mcp exposes indexed header documentation as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/cppdoc/internal/indexer"
	"github.com/mvp-joe/cppdoc/internal/search"
	"github.com/mvp-joe/cppdoc/internal/storage"
)

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Version string
	// Watch keeps the index current while serving
	Watch bool
}

// Server manages the MCP server lifecycle.
type Server struct {
	config  ServerConfig
	indexer indexer.Indexer
	mcp     *server.MCPServer
}

// NewServer registers the cppdoc tools over an indexed project. The indexer
// must already have completed a run so the search index and storage agree.
func NewServer(config ServerConfig, ix indexer.Indexer, idx *search.Index, reader *storage.SymbolReader) *Server {
	if config.Version == "" {
		config.Version = "dev"
	}
	mcpServer := server.NewMCPServer(
		"cppdoc-mcp",
		config.Version,
		server.WithToolCapabilities(true),
	)
	AddSearchTool(mcpServer, idx)
	AddSymbolTool(mcpServer, reader)

	return &Server{config: config, indexer: ix, mcp: mcpServer}
}

// MCPServer returns the underlying server with the tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.config.Watch && s.indexer != nil {
		go func() {
			err := s.indexer.Watch(ctx, func(stats *indexer.Stats, err error) {
				if err != nil {
					log.Printf("Reindex failed: %v", err)
					return
				}
				log.Printf("Reindexed %d headers (%d extracted, %d removed)", stats.FilesDiscovered, stats.FilesExtracted, stats.FilesRemoved)
			})
			if err != nil {
				log.Printf("Watcher stopped: %v", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio...")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
