// Package watcher reports debounced header changes under a source tree.
package watcher

import (
	"context"
	"time"
)

// Watcher monitors a source tree with debouncing and pause/resume support.
type Watcher interface {
	// Start begins watching, calling callback with each debounced batch.
	Start(ctx context.Context, callback func(changes []Change)) error

	// Stop stops watching and releases the underlying notifier.
	Stop() error

	// Pause stops firing callbacks but keeps accumulating changes.
	Pause()

	// Resume fires any changes accumulated while paused and continues.
	Resume()
}

// Change is one file that changed within a batch.
type Change struct {
	Path    string
	Removed bool
}

// Options controls which paths are reported.
type Options struct {
	// Debounce is the quiet period before a batch is delivered.
	Debounce time.Duration

	// Include reports whether a changed file is of interest. Nil includes all.
	Include func(path string) bool

	// SkipDir reports whether a directory should not be watched.
	SkipDir func(path string) bool
}
