// Package watcher observes the Homebrew Caskroom for install and
// uninstall activity so the local cask inventory can be invalidated
// the moment it goes stale, instead of waiting out the TTL.
package watcher

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/brewhaul/internal/logging"
)

// debounceWindow coalesces the burst of filesystem events a single
// cask install produces into one onChange call.
const debounceWindow = 2 * time.Second

// CaskroomWatcher watches the Caskroom directory and fires onChange
// after activity settles. It is best-effort: if the directory does not
// exist or the watch cannot be established, callers fall back to
// TTL-based inventory refresh.
type CaskroomWatcher struct {
	dir      string
	onChange func()

	fsw    *fsnotify.Watcher
	stopCh chan struct{}
	wg     sync.WaitGroup
	log    zerolog.Logger
}

// New creates a watcher for the given Caskroom directory. onChange is
// called from the watcher's goroutine, at most once per debounce
// window.
func New(dir string, onChange func()) (*CaskroomWatcher, error) {
	if dir == "" {
		return nil, fmt.Errorf("caskroom directory cannot be empty")
	}
	if onChange == nil {
		return nil, fmt.Errorf("onChange callback cannot be nil")
	}
	return &CaskroomWatcher{
		dir:      dir,
		onChange: onChange,
		stopCh:   make(chan struct{}),
		log:      logging.GetLogger("watcher"),
	}, nil
}

// Start establishes the filesystem watch and begins dispatching. A
// missing Caskroom is not an error: there is nothing to watch until
// the first cask is installed, and the TTL path still works.
func (w *CaskroomWatcher) Start() error {
	if _, err := os.Stat(w.dir); err != nil {
		w.log.Debug().Err(err).Str("dir", w.dir).Msg("caskroom not watchable")
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.run()

	w.log.Debug().Str("dir", w.dir).Msg("watching caskroom")
	return nil
}

// run dispatches debounced change notifications until stopped.
func (w *CaskroomWatcher) run() {
	defer w.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(debounceWindow)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.log.Debug().Msg("caskroom changed")
			w.onChange()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Debug().Err(err).Msg("watch error")

		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// Stop halts the watcher. Safe to call when Start never established a
// watch.
func (w *CaskroomWatcher) Stop() {
	close(w.stopCh)
	if w.fsw != nil {
		w.fsw.Close()
	}
	w.wg.Wait()
}
