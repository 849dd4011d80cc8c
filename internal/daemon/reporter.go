package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/deskwm/internal/desktop"
	"github.com/1broseidon/deskwm/internal/ipc"
)

// DefaultReportInterval is how often desktop counters are logged.
const DefaultReportInterval = 30 * time.Second

// ReporterConfig holds configuration for the reporter.
type ReporterConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reporter periodically logs desktop counters and frame rate.
type Reporter struct {
	interval time.Duration
	exec     ipc.Executor
	logger   *slog.Logger

	lastFrames uint64
	lastAt     time.Time
}

// NewReporter creates a reporter that reads the desktop through exec.
func NewReporter(cfg ReporterConfig, exec ipc.Executor) *Reporter {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultReportInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{
		interval: interval,
		exec:     exec,
		logger:   logger,
	}
}

// Serve starts the report loop. Blocks until context is cancelled.
func (r *Reporter) Serve(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Debug("reporter started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			r.report(ctx, now)
		}
	}
}

// String names the reporter for the supervisor.
func (r *Reporter) String() string { return "status-reporter" }

// report logs a single status line.
func (r *Reporter) report(ctx context.Context, now time.Time) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reporter panic recovered", "error", err)
		}
	}()

	var st desktop.Status
	err := r.exec.Do(ctx, func(d *desktop.Desktop) error {
		st = d.Status()
		return nil
	})
	if err != nil {
		r.logger.Warn("reporter: failed to read desktop status", "error", err)
		return
	}

	fps := 0.0
	if !r.lastAt.IsZero() && st.Frames >= r.lastFrames {
		if elapsed := now.Sub(r.lastAt).Seconds(); elapsed > 0 {
			fps = float64(st.Frames-r.lastFrames) / elapsed
		}
	}
	r.lastFrames = st.Frames
	r.lastAt = now

	r.logger.Info("desktop status",
		"windows", st.Windows,
		"capacity", st.Capacity,
		"focused", st.Focused,
		"phase", st.Phase,
		"frames", st.Frames,
		"packets", st.Packets,
		"fps", fps)
}
