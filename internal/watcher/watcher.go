// Package watcher provides file system watching for reloading the bench
// configuration when it changes on disk.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher monitors a single file and calls onChange after it is written,
// created, renamed or removed. The parent directory is watched rather
// than the file itself, so editors that save by writing a temp file and
// renaming it over the target are still observed. Events are debounced:
// a burst of writes triggers one callback.
type Watcher struct {
	targetPath string
	onChange   func()

	watcher  *fsnotify.Watcher
	ctx      context.Context
	cancel   context.CancelFunc
	debounce time.Duration

	mu      sync.Mutex
	running bool
}

// New creates a Watcher for the given file path. The onChange callback
// runs on the watcher's timer goroutine.
func New(targetPath string, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		targetPath: filepath.Clean(targetPath),
		onChange:   onChange,
		watcher:    fsw,
		ctx:        ctx,
		cancel:     cancel,
		debounce:   200 * time.Millisecond,
	}, nil
}

// Start begins watching. Calling Start on a running watcher is a no-op.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	parent := filepath.Dir(w.targetPath)
	if err := w.watcher.Add(parent); err != nil {
		return fmt.Errorf("watch %s: %w", parent, err)
	}

	go w.watchLoop()
	return nil
}

// Stop stops the watcher. A pending debounced callback is dropped.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	w.cancel()
	return w.watcher.Close()
}

func (w *Watcher) watchLoop() {
	var debounceTimer *time.Timer

	for {
		select {
		case <-w.ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.targetPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}

			log.Debug().
				Str("path", w.targetPath).
				Str("op", event.Op.String()).
				Msg("watched file changed")

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.fire)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) fire() {
	if w.onChange != nil {
		w.onChange()
	}
}
