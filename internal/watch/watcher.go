package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mmr-tortoise/denver/internal/clock"
)

// DefaultQueueSize is the capacity of the Events channel.
const DefaultQueueSize = 64

// Event is one filesystem change below the watched root.
type Event struct {
	// Path is the file or directory that changed.
	Path string

	// Op describes the change, for example "WRITE" or "CREATE|REMOVE".
	Op string

	// At is when the watcher observed the change.
	At time.Time
}

// Source delivers change events and watch errors to a Loop. Closing the
// Events channel ends the loop.
type Source interface {
	Events() <-chan Event
	Errors() <-chan error
}

// Watcher watches a directory tree recursively.
type Watcher struct {
	root   string
	notify *fsnotify.Watcher

	events chan Event
	errors chan error

	clock  clock.Clock
	logger *slog.Logger

	// done is closed by Close; it unblocks a pending error delivery.
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error

	// finished is closed when the forwarding goroutine exits.
	finished chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherClock sets the clock used to timestamp events.
func WithWatcherClock(c clock.Clock) WatcherOption {
	return func(w *Watcher) {
		w.clock = c
	}
}

// WithWatcherLogger sets the logger for dropped events and skipped
// directories.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithQueueSize sets the capacity of the Events channel.
func WithQueueSize(size int) WatcherOption {
	return func(w *Watcher) {
		w.events = make(chan Event, size)
	}
}

// NewWatcher starts watching root and every directory below it. The caller
// must Close the returned Watcher.
func NewWatcher(root string, options ...WatcherOption) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}

	w := &Watcher{
		root:     root,
		notify:   notify,
		events:   make(chan Event, DefaultQueueSize),
		errors:   make(chan error, 1),
		clock:    clock.Real(),
		logger:   slog.New(slog.DiscardHandler),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	for _, option := range options {
		option(w)
	}

	if err := w.addTree(root); err != nil {
		notify.Close()
		return nil, err
	}

	go w.forward()
	return w, nil
}

// Events returns the channel of change events. It is closed after Close.
func (w *Watcher) Events() <-chan Event { return w.events }

// Errors returns the channel of watch errors. It is closed after Close.
func (w *Watcher) Errors() <-chan error { return w.errors }

// Close stops watching and closes the Events and Errors channels. It is
// safe to call more than once.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		w.closeErr = w.notify.Close()
		<-w.finished
	})
	return w.closeErr
}

// addTree registers dir and all directories below it. Failure to register
// the root is an error; unreadable subdirectories are skipped.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			w.logger.Debug("skipping directory", "path", path, "error", err)
			return filepath.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.notify.Add(path); err != nil {
			if path == dir {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			w.logger.Debug("skipping directory", "path", path, "error", err)
			return filepath.SkipDir
		}
		return nil
	})
}

// forward moves fsnotify notifications onto the Watcher's channels until
// fsnotify closes its own channels.
func (w *Watcher) forward() {
	defer close(w.finished)
	defer close(w.errors)
	defer close(w.events)

	for {
		select {
		case ev, ok := <-w.notify.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.notify.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			case <-w.done:
				return
			}
		}
	}
}

// handle watches newly created directories and queues the event. Pure
// permission changes are ignored.
func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op == fsnotify.Chmod {
		return
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil && !errors.Is(err, fs.ErrNotExist) {
				w.logger.Debug("failed to watch new directory", "path", ev.Name, "error", err)
			}
		}
	}

	event := Event{Path: ev.Name, Op: ev.Op.String(), At: w.clock.Now()}
	select {
	case w.events <- event:
	default:
		w.logger.Debug("event queue full, dropping event", "path", ev.Name, "op", event.Op)
	}
}
