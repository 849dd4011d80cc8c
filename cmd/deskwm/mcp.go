package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/1broseidon/deskwm/internal/config"
	"github.com/1broseidon/deskwm/internal/mcp"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: deskwm mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'deskwm mcp <command> --help' for command-specific options.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	fs := flag.NewFlagSet("mcp serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := socketFlag(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskwm mcp serve [--socket PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the MCP server on stdio. Tool calls are forwarded to the")
		fmt.Fprintln(os.Stderr, "running daemon over its socket.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *socket == "" {
		*socket = cfg.Socket
	}

	// Stdout carries the protocol; logs go to stderr.
	logger, err := newLogger(cfg.LogLevel, false)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	server, err := mcp.NewServer(newClient(*socket), logger)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("MCP server error: %v", err)
	}
	return 0
}
