package indexer

import (
	"context"
	"fmt"
	"log"

	"github.com/mvp-joe/cppdoc/internal/watcher"
)

// Watch runs Index after each debounced batch of header changes. The
// watcher is paused while a run is in progress so changes made meanwhile
// arrive as the next batch. Blocks until ctx is cancelled.
func (ix *indexer) Watch(ctx context.Context, onUpdate func(*Stats, error)) error {
	w, err := watcher.New(ix.cfg.RootDir, watcher.Options{
		Debounce: ix.cfg.Debounce,
		Include:  ix.discovery.Matches,
		SkipDir:  ix.discovery.IgnoresDir,
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", ix.cfg.RootDir, err)
	}
	defer w.Stop()

	// Every run rediscovers the whole tree, so a batch arriving while
	// another is queued adds nothing and is dropped.
	batches := make(chan []watcher.Change, 1)
	if err := w.Start(ctx, func(changes []watcher.Change) {
		select {
		case batches <- changes:
		default:
		}
	}); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case changes := <-batches:
			removed := 0
			for _, c := range changes {
				if c.Removed {
					removed++
				}
			}
			log.Printf("Detected %d header changes (%d removed), reindexing", len(changes), removed)

			w.Pause()
			stats, err := ix.Index(ctx)
			w.Resume()

			if err != nil && ctx.Err() != nil {
				return nil
			}
			if onUpdate != nil {
				onUpdate(stats, err)
			}
		}
	}
}
