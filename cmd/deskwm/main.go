package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/1broseidon/deskwm/internal/config"
	"github.com/1broseidon/deskwm/internal/daemon"
	"github.com/1broseidon/deskwm/internal/ipc"
	"github.com/1broseidon/deskwm/internal/platform"
	"github.com/1broseidon/deskwm/internal/tui"
)

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "window":
		os.Exit(runWindow(os.Args[2:]))
	case "pointer":
		os.Exit(runPointer(os.Args[2:]))
	case "screen":
		os.Exit(runScreen(os.Args[2:]))
	case "snapshot":
		os.Exit(runSnapshot(os.Args[2:]))
	case "preview":
		os.Exit(runPreview(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: deskwm <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the desktop daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  window create       Open a window")
	fmt.Fprintln(w, "  window destroy      Close a window")
	fmt.Fprintln(w, "  window move         Move a window")
	fmt.Fprintln(w, "  window resize       Resize a window")
	fmt.Fprintln(w, "  window focus        Focus and raise a window")
	fmt.Fprintln(w, "  window raise|lower  Change a window's stacking")
	fmt.Fprintln(w, "  window maximize|minimize|restore|show|hide")
	fmt.Fprintln(w, "  window title        Rename a window")
	fmt.Fprintln(w, "  window list         List windows front to back")
	fmt.Fprintln(w, "  window count        Show window count and capacity")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  pointer             Inject pointer motion, buttons or clicks")
	fmt.Fprintln(w, "  screen              Change the screen size")
	fmt.Fprintln(w, "  snapshot            Save the current frame to an image file")
	fmt.Fprintln(w, "  preview             Show the current frame in the terminal")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "  config path         Print the config file location")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open interactive inspector")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'deskwm <command> --help' for command-specific options.")
}

// parseFlags parses args and maps the outcome to an exit code; ok reports
// whether the command should go on.
func parseFlags(fs *flag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

// socketFlag registers the common --socket option.
func socketFlag(fs *flag.FlagSet) *string {
	return fs.String("socket", "", "Daemon socket (default: $DESKWM_SOCKET or the runtime dir)")
}

func newClient(socket string) *ipc.Client {
	if socket == "" {
		return ipc.NewClient()
	}
	return ipc.NewClientWithSocket(socket)
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: $DESKWM_CONFIG or ~/.config/deskwm/config.yaml)")
	backend := fs.String("backend", "", "Override the backend ("+strings.Join(platform.Backends, ", ")+")")
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskwm daemon [--config PATH] [--backend NAME] [--debug]")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config
	if *backend != "" {
		cfg.Backend = *backend
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}

	logger, err := newLogger(cfg.LogLevel, *debug)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	d, err := daemon.New(cfg, daemon.Options{Logger: logger})
	if err != nil {
		log.Fatalf("Failed to start daemon: %v", err)
	}
	defer d.Close()

	ctx, cancel := signalContext()
	defer cancel()

	if err := d.Run(ctx); err != nil {
		logger.Error("daemon stopped", "error", err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := socketFlag(fs)
	asJSON := fs.Bool("json", false, "Print JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskwm status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := newClient(*socket).GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(status)
	}
	printStatus(os.Stdout, status)
	return 0
}

func printStatus(w io.Writer, s *ipc.StatusData) {
	fmt.Fprintf(w, "daemon_running: %v\n", s.DaemonRunning)
	fmt.Fprintf(w, "backend:        %s\n", s.Backend)
	fmt.Fprintf(w, "screen:         %dx%d\n", s.ScreenWidth, s.ScreenHeight)
	fmt.Fprintf(w, "windows:        %d/%d\n", s.Windows, s.Capacity)
	fmt.Fprintf(w, "focused:        %s\n", formatID(s.Focused))
	fmt.Fprintf(w, "pointer:        %d,%d %s\n", s.PointerX, s.PointerY, strings.Join(s.Buttons, "+"))
	fmt.Fprintf(w, "interaction:    %s %s\n", s.Phase, formatID(s.Target))
	fmt.Fprintf(w, "frames:         %d\n", s.Frames)
	fmt.Fprintf(w, "packets:        %d\n", s.Packets)
	fmt.Fprintf(w, "uptime_seconds: %d\n", s.UptimeSeconds)
}

func formatID(id uint32) string {
	if id == 0 {
		return "-"
	}
	return fmt.Sprintf("#%d", id)
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := socketFlag(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskwm tui")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Inspect and drive the running desktop.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if err := tui.Run(newClient(*socket)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
