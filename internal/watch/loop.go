package watch

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmr-tortoise/denver/internal/clock"
	"github.com/mmr-tortoise/denver/internal/model"
)

// DefaultThreshold is the minimum time between a successful rebuild and
// the change that triggers the next one.
const DefaultThreshold = 2 * time.Second

// RebuildFunc rebuilds and restarts the watched container.
type RebuildFunc func(ctx context.Context) error

// Loop debounces change events into rebuilds.
type Loop struct {
	threshold time.Duration
	clock     clock.Clock
	logger    *slog.Logger
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithThreshold sets the debounce threshold. The default is
// DefaultThreshold.
func WithThreshold(d time.Duration) LoopOption {
	return func(l *Loop) {
		l.threshold = d
	}
}

// WithClock sets the clock that timestamps completed rebuilds. It must be
// the clock the event source stamps events with.
func WithClock(c clock.Clock) LoopOption {
	return func(l *Loop) {
		l.clock = c
	}
}

// WithLogger sets the logger for discarded events and triggered rebuilds.
func WithLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// NewLoop returns a Loop with the given options applied.
func NewLoop(options ...LoopOption) *Loop {
	l := &Loop{
		threshold: DefaultThreshold,
		clock:     clock.Real(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(l)
	}
	return l
}

// Watch runs the full watch sequence for one build context: a synchronous
// rebuild, a recursive watch rooted at root, then Run until ctx is
// cancelled or a fatal error occurs. Cancellation during the initial
// rebuild is a clean shutdown, as it is in Run.
func (l *Loop) Watch(ctx context.Context, root string, rebuild RebuildFunc) error {
	if err := rebuild(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	lastBuild := l.clock.Now()

	w, err := NewWatcher(root, WithWatcherClock(l.clock), WithWatcherLogger(l.logger))
	if err != nil {
		return model.WrapError(model.KindRun, "failed to watch "+root, err)
	}
	defer w.Close()

	l.logger.Info("watching build context", "path", root)
	return l.Run(ctx, w, lastBuild, rebuild)
}

// Run consumes events from src and calls rebuild for every event observed
// at least the threshold after the last successful rebuild. lastBuild is
// the completion time of the rebuild that preceded the loop. Events
// arriving sooner are discarded.
//
// Run returns nil when the Events channel is closed or ctx is cancelled. A
// watch error is returned as a model.KindRun error; a rebuild error is
// returned as is.
func (l *Loop) Run(ctx context.Context, src Source, lastBuild time.Time, rebuild RebuildFunc) error {
	events := src.Events()
	errs := src.Errors()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			return model.WrapError(model.KindRun, "filesystem watch failed", err)

		case ev, ok := <-events:
			if !ok {
				return nil
			}

			if elapsed := ev.At.Sub(lastBuild); elapsed < l.threshold {
				l.logger.Debug("discarding change within debounce window",
					"path", ev.Path, "op", ev.Op, "since_last_build", elapsed)
				continue
			}

			l.logger.Info("change detected, rebuilding", "path", ev.Path, "op", ev.Op)
			if err := rebuild(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			lastBuild = l.clock.Now()
		}
	}
}
