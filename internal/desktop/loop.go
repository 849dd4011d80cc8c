package desktop

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/deskwm/internal/geom"
)

// Loop defaults.
const (
	DefaultTick          = 5 * time.Millisecond
	DefaultFrameInterval = 16 * time.Millisecond
)

// Presenter pushes a rendered frame to the screen. damage is the area that
// changed since the previous call.
type Presenter interface {
	Present(damage geom.Rect) error
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(damage geom.Rect) error

// Present implements Presenter.
func (f PresenterFunc) Present(damage geom.Rect) error { return f(damage) }

// LoopConfig holds configuration for the desktop loop.
type LoopConfig struct {
	// Tick is the pointer poll interval.
	Tick time.Duration
	// FrameInterval is the minimum time between presents.
	FrameInterval time.Duration
	Presenter     Presenter
	// Keys delivers key presses from the host; nil disables keyboard input.
	Keys   <-chan rune
	Logger *slog.Logger
}

type job struct {
	fn   func(*Desktop) error
	done chan error
}

// Loop is the only goroutine that touches its Desktop. Other goroutines
// reach the desktop through Do.
type Loop struct {
	desk          *Desktop
	tick          time.Duration
	frameInterval time.Duration
	presenter     Presenter
	keys          <-chan rune
	jobs          chan job
	logger        *slog.Logger
}

// NewLoop creates a loop for d.
func NewLoop(d *Desktop, cfg LoopConfig) *Loop {
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	if cfg.FrameInterval < 0 {
		cfg.FrameInterval = 0
	}
	if cfg.Presenter == nil {
		cfg.Presenter = PresenterFunc(func(geom.Rect) error { return nil })
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Loop{
		desk:          d,
		tick:          cfg.Tick,
		frameInterval: cfg.FrameInterval,
		presenter:     cfg.Presenter,
		keys:          cfg.Keys,
		jobs:          make(chan job),
		logger:        cfg.Logger,
	}
}

// Do runs fn on the loop goroutine and waits for it. ctx bounds only the
// wait for the loop to accept the job: an accepted job runs to completion
// and Do returns its result, so a caller never sees an error for a change
// that was applied.
func (l *Loop) Do(ctx context.Context, fn func(*Desktop) error) error {
	j := job{fn: fn, done: make(chan error, 1)}
	select {
	case l.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	}
	// The loop runs a received job before it selects again.
	return <-j.done
}

// Serve runs the loop until ctx is cancelled.
func (l *Loop) Serve(ctx context.Context) error {
	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	l.logger.Info("desktop loop started", "tick", l.tick, "frame_interval", l.frameInterval)

	keys := l.keys
	var lastPresent time.Time
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("desktop loop stopped")
			return ctx.Err()
		case j := <-l.jobs:
			j.done <- l.run(j.fn)
		case r, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			l.desk.HandleKey(r)
		case now := <-ticker.C:
			l.desk.Poll()
			if now.Sub(lastPresent) < l.frameInterval {
				continue
			}
			if l.present() {
				lastPresent = now
			}
		}
	}
}

// String names the loop for the supervisor.
func (l *Loop) String() string { return "desktop-loop" }

func (l *Loop) present() bool {
	damage, ok := l.desk.Render()
	if !ok {
		return false
	}
	if err := l.presenter.Present(damage); err != nil {
		l.logger.Warn("present failed", "error", err)
	}
	return true
}

// run executes a job and reports a panic as its error.
func (l *Loop) run(fn func(*Desktop) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("desktop job panic recovered", "error", r)
			err = fmt.Errorf("desktop job panicked: %v", r)
		}
	}()
	return fn(l.desk)
}
