// Package watcher monitors the market data file for changes so the viewer
// can reload the graph live. It prefers fsnotify and falls back to polling
// when the platform watcher is unavailable or MG_FORCE_POLL is set.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Defaults for debounce and fallback polling.
const (
	DefaultDebounce     = 250 * time.Millisecond
	DefaultPollInterval = 2 * time.Second
)

// Common errors.
var (
	ErrAlreadyStarted = errors.New("watcher already started")
	ErrPermission     = errors.New("permission denied")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce window for change bursts.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithOnChange sets the callback invoked when the file changes.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithForcePoll forces polling mode even if fsnotify is available.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// Watcher monitors a single file, debouncing change bursts (scrapers tend
// to rewrite the data file in several quick writes).
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	onChange     func()
	forcePoll    bool

	mu        sync.Mutex
	started   bool
	polling   bool
	fsWatcher *fsnotify.Watcher
	ctx       context.Context
	cancel    context.CancelFunc
	debTimer  *time.Timer
	lastMtime time.Time
	lastSize  int64
	changeCh  chan struct{}
}

// New creates a watcher for the given path.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         abs,
		debounce:     DefaultDebounce,
		pollInterval: DefaultPollInterval,
		onChange:     func() {},
		changeCh:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching. The file may not exist yet; its appearance counts
// as a change.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return ErrAlreadyStarted
	}
	w.ctx, w.cancel = context.WithCancel(context.Background())

	if info, err := os.Stat(w.path); err == nil {
		w.lastMtime = info.ModTime()
		w.lastSize = info.Size()
	} else if os.IsPermission(err) {
		return ErrPermission
	}

	poll := w.forcePoll || envBool("MG_FORCE_POLL")
	if !poll {
		if fsw, err := fsnotify.NewWatcher(); err == nil {
			// Watch the containing directory; atomic rename-into-place is
			// invisible when watching the file itself.
			if err := fsw.Add(filepath.Dir(w.path)); err == nil {
				w.fsWatcher = fsw
				go w.runFsnotify()
			} else {
				fsw.Close()
				poll = true
			}
		} else {
			poll = true
		}
	}
	if poll {
		w.polling = true
		go w.runPolling()
	}
	w.started = true
	return nil
}

// Stop halts the watcher. Idempotent. The change channel stays open so a
// consumer blocked on it is released by process shutdown, not a close race.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.cancel()
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}
	if w.debTimer != nil {
		w.debTimer.Stop()
	}
	w.started = false
}

// Changed returns a channel that receives after each debounced change.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

// IsPolling reports whether the watcher runs in polling fallback mode.
func (w *Watcher) IsPolling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polling
}

func (w *Watcher) runFsnotify() {
	// Capture channel references to avoid a race with Stop() setting
	// fsWatcher to nil.
	w.mu.Lock()
	if w.fsWatcher == nil {
		w.mu.Unlock()
		return
	}
	events := w.fsWatcher.Events
	errs := w.fsWatcher.Errors
	w.mu.Unlock()

	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.scheduleNotify()
			}
		case _, ok := <-errs:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) runPolling() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(w.path)
			if err != nil {
				continue
			}
			w.mu.Lock()
			changed := !info.ModTime().Equal(w.lastMtime) || info.Size() != w.lastSize
			if changed {
				w.lastMtime = info.ModTime()
				w.lastSize = info.Size()
			}
			w.mu.Unlock()
			if changed {
				w.scheduleNotify()
			}
		}
	}
}

// scheduleNotify debounces: each event resets the timer, and the callback
// fires once the burst goes quiet.
func (w *Watcher) scheduleNotify() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debTimer != nil {
		w.debTimer.Stop()
	}
	w.debTimer = time.AfterFunc(w.debounce, func() {
		w.onChange()
		select {
		case w.changeCh <- struct{}{}:
		default:
		}
	})
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
