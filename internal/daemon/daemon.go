// Package daemon wires the configured host, the desktop loop and the IPC
// server together and runs them under one supervisor.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/thejerf/suture/v4"

	"github.com/1broseidon/deskwm/internal/config"
	"github.com/1broseidon/deskwm/internal/desktop"
	"github.com/1broseidon/deskwm/internal/ipc"
	"github.com/1broseidon/deskwm/internal/platform"
	"github.com/1broseidon/deskwm/internal/supervise"
	"github.com/1broseidon/deskwm/internal/theme"
)

// HostTitle is the title of the host window on windowed backends.
const HostTitle = "deskwm"

// Options holds the parts of a daemon that are not in the config file.
type Options struct {
	Logger *slog.Logger
	// OpenHost defaults to platform.Open.
	OpenHost func(platform.Options) (platform.Host, error)
}

// Daemon is a running desktop and everything that feeds it.
type Daemon struct {
	cfg      *config.Config
	host     platform.Host
	loop     *desktop.Loop
	server   *ipc.Server
	reporter *Reporter
	logger   *slog.Logger
}

// New builds the daemon from a validated config. Nothing runs until Run.
func New(cfg *config.Config, opts Options) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon: config is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.OpenHost == nil {
		opts.OpenHost = platform.Open
	}
	logger := opts.Logger

	th, err := theme.LoadFile(cfg.ThemeFile)
	if err != nil {
		return nil, err
	}

	host, err := opts.OpenHost(platform.Options{
		Backend:       cfg.Backend,
		Width:         cfg.Screen.Width,
		Height:        cfg.Screen.Height,
		Pitch:         cfg.Screen.Pitch,
		PointerDevice: cfg.PointerDevice,
		FBDevPath:     cfg.FBDevPath,
		Title:         HostTitle,
		Logger:        logger.With("component", "host"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s host: %w", cfg.Backend, err)
	}

	desk, err := desktop.New(desktop.Config{
		Framebuffer: host.Framebuffer(),
		Source:      host.Pointer(),
		Theme:       th,
		Capacity:    cfg.MaxWindows,
		SlotPixels:  cfg.SurfaceCapacity,
		PollBudget:  cfg.PollBudget,
		EdgeWidth:   cfg.ResizeEdge,
		Logger:      logger.With("component", "desktop"),
	})
	if err != nil {
		host.Close()
		return nil, err
	}

	loop := desktop.NewLoop(desk, desktop.LoopConfig{
		Tick:          cfg.Tick,
		FrameInterval: cfg.FrameInterval,
		Presenter:     host,
		Keys:          host.Keys(),
		Logger:        logger.With("component", "loop"),
	})

	server, err := ipc.NewServer(ipc.ServerConfig{
		SocketPath: cfg.Socket,
		Exec:       loop,
		Backend:    host.Name(),
		Logger:     logger.With("component", "ipc"),
	})
	if err != nil {
		host.Close()
		return nil, err
	}

	return &Daemon{
		cfg:    cfg,
		host:   host,
		loop:   loop,
		server: server,
		reporter: NewReporter(ReporterConfig{
			Logger: logger.With("component", "reporter"),
		}, loop),
		logger: logger,
	}, nil
}

// Loop returns the desktop loop.
func (d *Daemon) Loop() *desktop.Loop { return d.loop }

// SocketPath returns the IPC socket the daemon listens on.
func (d *Daemon) SocketPath() string { return d.server.SocketPath() }

// Run serves until ctx is cancelled or the host window is closed. Both are
// a clean shutdown and return nil.
func (d *Daemon) Run(ctx context.Context) error {
	super := supervise.New("deskwm", d.logger)
	supervise.Add(super, d.loop)
	supervise.Add(super, d.server)
	supervise.Add(super, supervise.NewServiceFunc("host-"+d.host.Name(), d.serveHost))
	supervise.Add(super, supervise.NewServiceFunc("startup-windows", d.openStartupWindows))
	supervise.Add(super, d.reporter)

	d.logger.Info("deskwm daemon started",
		"backend", d.host.Name(),
		"screen", fmt.Sprintf("%dx%d", d.cfg.Screen.Width, d.cfg.Screen.Height),
		"max_windows", d.cfg.MaxWindows,
		"socket", d.server.SocketPath())

	err := super.Serve(ctx)
	switch {
	case errors.Is(err, suture.ErrTerminateSupervisorTree):
		d.logger.Info("host closed, shutting down")
		return nil
	case ctx.Err() != nil:
		d.logger.Info("shutting down")
		return nil
	}
	return err
}

func (d *Daemon) serveHost(ctx context.Context) error {
	err := d.host.Run(ctx)
	if errors.Is(err, platform.ErrClosed) {
		return suture.ErrTerminateSupervisorTree
	}
	return err
}

// openStartupWindows creates the configured windows once. It never asks to
// be restarted so a failure cannot duplicate windows.
func (d *Daemon) openStartupWindows(ctx context.Context) error {
	for i, w := range d.cfg.StartupWindows {
		spec, err := w.Options().Spec()
		if err != nil {
			d.logger.Warn("invalid startup window", "index", i, "error", err)
			continue
		}
		err = d.loop.Do(ctx, func(desk *desktop.Desktop) error {
			id, err := desk.Create(spec)
			if err != nil {
				return err
			}
			d.logger.Debug("startup window created", "window", id, "title", spec.Title)
			return nil
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.logger.Warn("failed to create startup window", "index", i, "title", w.Title, "error", err)
		}
	}
	return suture.ErrDoNotRestart
}

// Close releases the host.
func (d *Daemon) Close() error {
	return d.host.Close()
}
