package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the bursts of filesystem events editors produce
// when saving (write temp, rename over, chmod).
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads a settings file whenever it changes on disk and hands the
// result to a callback. The parent directory is watched rather than the
// file itself so atomic-rename saves keep working.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func(*Settings)
	debounce time.Duration

	timer   *time.Timer
	timerMu sync.Mutex

	stopCh   chan struct{}
	stopOnce sync.Once
}

// Watch starts watching path. onChange is called with freshly loaded
// settings after each change; a change that fails to load (mid-save,
// deleted, or invalid) is skipped rather than reported, so the callback only
// ever sees valid settings.
func Watch(path string, onChange func(*Settings)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		watcher:  fw,
		path:     abs,
		onChange: onChange,
		debounce: DefaultDebounce,
		stopCh:   make(chan struct{}),
	}
	go w.eventLoop()
	return w, nil
}

// Close stops watching and cancels any pending reload. A reload that is
// already running may still deliver one final callback; none start after
// Close returns. Safe to call multiple times.
func (w *Watcher) Close() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()

		w.timerMu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.timerMu.Unlock()
	})
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) == w.path {
				w.resetDebounce()
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		case <-w.stopCh:
			return
		}
	}
}

// resetDebounce restarts the reload timer so a burst of events produces one
// reload.
func (w *Watcher) resetDebounce() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Reset(w.debounce)
		return
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	select {
	case <-w.stopCh:
		return
	default:
	}
	s, err := Load(w.path)
	if err != nil {
		return
	}
	w.onChange(s)
}
