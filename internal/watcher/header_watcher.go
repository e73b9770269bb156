package watcher

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 500 * time.Millisecond

type headerWatcher struct {
	watcher  *fsnotify.Watcher
	root     string
	opts     Options
	callback func([]Change)
	ctx      context.Context
	cancel   context.CancelFunc

	paused   bool
	pausedMu sync.RWMutex

	pending   map[string]bool // path -> removed
	pendingMu sync.Mutex

	timer   *time.Timer
	timerMu sync.Mutex

	stopOnce sync.Once
	doneCh   chan struct{}
}

// New watches root and every directory below it not rejected by
// opts.SkipDir.
func New(root string, opts Options) (Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &headerWatcher{
		watcher: fsw,
		root:    root,
		opts:    opts,
		pending: make(map[string]bool),
		doneCh:  make(chan struct{}),
	}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *headerWatcher) Start(ctx context.Context, callback func([]Change)) error {
	if callback == nil {
		return errors.New("watcher: nil callback")
	}
	w.callback = callback
	w.ctx, w.cancel = context.WithCancel(ctx)
	go w.loop()
	return nil
}

func (w *headerWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			close(w.doneCh)
		}
		err = w.watcher.Close()
	})
	return err
}

func (w *headerWatcher) Pause() {
	w.pausedMu.Lock()
	w.paused = true
	w.pausedMu.Unlock()
}

func (w *headerWatcher) Resume() {
	w.pausedMu.Lock()
	wasPaused := w.paused
	w.paused = false
	w.pausedMu.Unlock()

	if wasPaused {
		w.flush()
	}
}

func (w *headerWatcher) loop() {
	defer close(w.doneCh)

	fire := make(chan struct{}, 1)
	for {
		select {
		case <-w.ctx.Done():
			w.stopTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event, fire)

		case <-fire:
			w.pausedMu.RLock()
			paused := w.paused
			w.pausedMu.RUnlock()
			if !paused {
				w.flush()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Header watcher error: %v", err)
		}
	}
}

func (w *headerWatcher) handle(event fsnotify.Event, fire chan struct{}) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				log.Printf("Warning: failed to watch new directory %s: %v", event.Name, err)
			}
			return
		}
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if w.opts.Include != nil && !w.opts.Include(event.Name) {
		return
	}

	removed := event.Op&(fsnotify.Remove|fsnotify.Rename) != 0
	w.pendingMu.Lock()
	w.pending[event.Name] = removed
	w.pendingMu.Unlock()

	w.resetTimer(fire)
}

// flush delivers and clears the pending batch.
func (w *headerWatcher) flush() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	changes := make([]Change, 0, len(w.pending))
	for path, removed := range w.pending {
		changes = append(changes, Change{Path: path, Removed: removed})
	}
	w.pending = make(map[string]bool)
	w.pendingMu.Unlock()

	slices.SortFunc(changes, func(a, b Change) int { return strings.Compare(a.Path, b.Path) })
	if w.callback != nil {
		w.callback(changes)
	}
}

func (w *headerWatcher) resetTimer(fire chan struct{}) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, func() {
		select {
		case fire <- struct{}{}:
		default:
		}
	})
}

func (w *headerWatcher) stopTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *headerWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Printf("Warning: error accessing %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.opts.SkipDir != nil && w.opts.SkipDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to watch directory %s: %v", path, err)
		}
		return nil
	})
}
