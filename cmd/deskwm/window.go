package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/1broseidon/deskwm/internal/ipc"
)

func printWindowUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  deskwm window create [--title T] [--x N --y N] [--width N --height N]")
	fmt.Fprintln(w, "                       [--flags movable,resizable,closable] [--content KIND] [--color #RRGGBB] [--text S]")
	fmt.Fprintln(w, "  deskwm window destroy|focus|raise|lower|maximize|minimize|restore|show|hide <id>")
	fmt.Fprintln(w, "  deskwm window move <id> <x> <y>")
	fmt.Fprintln(w, "  deskwm window resize <id> <width> <height>")
	fmt.Fprintln(w, "  deskwm window title <id> <title>")
	fmt.Fprintln(w, "  deskwm window list [--json]")
	fmt.Fprintln(w, "  deskwm window count")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Every window command accepts --socket PATH.")
}

// windowOps are the commands that take only a window id.
var windowOps = map[string]func(*ipc.Client, uint32) error{
	"destroy":  (*ipc.Client).Destroy,
	"focus":    (*ipc.Client).Focus,
	"raise":    (*ipc.Client).Raise,
	"lower":    (*ipc.Client).Lower,
	"maximize": (*ipc.Client).Maximize,
	"minimize": (*ipc.Client).Minimize,
	"restore":  (*ipc.Client).Restore,
	"show":     (*ipc.Client).Show,
	"hide":     (*ipc.Client).Hide,
}

func runWindow(args []string) int {
	if len(args) == 0 {
		printWindowUsage(os.Stderr)
		return 2
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "create":
		return runWindowCreate(rest)
	case "move", "resize":
		return runWindowGeometry(sub, rest)
	case "title":
		return runWindowTitle(rest)
	case "list":
		return runWindowList(rest)
	case "count":
		return runWindowCount(rest)
	case "help", "-h", "--help":
		printWindowUsage(os.Stdout)
		return 0
	}

	op, ok := windowOps[sub]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown window command: %s\n\n", sub)
		printWindowUsage(os.Stderr)
		return 2
	}
	fs := flag.NewFlagSet(sub, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := socketFlag(fs)
	fs.Usage = func() { fmt.Fprintf(os.Stderr, "Usage: deskwm window %s <id>\n", sub) }
	if code, ok := parseFlags(fs, rest); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	id, err := parseWindowID(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := op(newClient(*socket), id); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runWindowCreate(args []string) int {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := socketFlag(fs)
	title := fs.String("title", "", "Window title")
	x := fs.Int("x", 0, "Left edge (default 50)")
	y := fs.Int("y", 0, "Top edge (default 50)")
	width := fs.Int("width", 0, "Width (default 300)")
	height := fs.Int("height", 0, "Height (default 200)")
	flags := fs.String("flags", "", "Comma separated window flags (default movable,resizable,closable)")
	content := fs.String("content", "", "Content kind: none, solid, checker, palette, keypad, text")
	color := fs.String("color", "", "Fill color for solid content (#RRGGBB)")
	text := fs.String("text", "", "Body for text content")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskwm window create [options]")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "create takes no arguments")
		fs.Usage()
		return 2
	}

	p := ipc.CreatePayload{
		Title:   *title,
		Width:   *width,
		Height:  *height,
		Flags:   *flags,
		Content: *content,
		Color:   *color,
		Text:    *text,
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "x":
			p.X = x
		case "y":
			p.Y = y
		}
	})

	id, err := newClient(*socket).Create(p)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(id)
	return 0
}

func runWindowGeometry(sub string, args []string) int {
	fs := flag.NewFlagSet(sub, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := socketFlag(fs)
	names := "<x> <y>"
	if sub == "resize" {
		names = "<width> <height>"
	}
	fs.Usage = func() { fmt.Fprintf(os.Stderr, "Usage: deskwm window %s <id> %s\n", sub, names) }
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 3 {
		fs.Usage()
		return 2
	}
	id, err := parseWindowID(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	a, errA := strconv.Atoi(fs.Arg(1))
	b, errB := strconv.Atoi(fs.Arg(2))
	if errA != nil || errB != nil {
		fmt.Fprintf(os.Stderr, "%s expects integers, got %q %q\n", names, fs.Arg(1), fs.Arg(2))
		return 2
	}

	client := newClient(*socket)
	var info *ipc.WindowInfo
	if sub == "move" {
		info, err = client.Move(id, a, b)
	} else {
		info, err = client.Resize(id, a, b)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("#%d %dx%d at %d,%d\n", info.ID, info.Width, info.Height, info.X, info.Y)
	return 0
}

func runWindowTitle(args []string) int {
	fs := flag.NewFlagSet("title", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := socketFlag(fs)
	fs.Usage = func() { fmt.Fprintln(os.Stderr, "Usage: deskwm window title <id> <title>") }
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return 2
	}
	id, err := parseWindowID(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := newClient(*socket).SetTitle(id, strings.Join(fs.Args()[1:], " ")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runWindowList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := socketFlag(fs)
	asJSON := fs.Bool("json", false, "Print JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	windows, err := newClient(*socket).List()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(windows)
	}
	printWindows(os.Stdout, windows)
	return 0
}

func printWindows(w io.Writer, windows []ipc.WindowInfo) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tZ\tGEOMETRY\tFLAGS\tTITLE")
	for _, win := range windows {
		fmt.Fprintf(tw, "%d\t%d\t%dx%d+%d+%d\t%s\t%s\n",
			win.ID, win.Z, win.Width, win.Height, win.X, win.Y, strings.Join(win.Flags, ","), win.Title)
	}
	tw.Flush()
}

func runWindowCount(args []string) int {
	fs := flag.NewFlagSet("count", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := socketFlag(fs)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	count, err := newClient(*socket).Count()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("%d/%d\n", count.Count, count.Capacity)
	return 0
}

func parseWindowID(s string) (uint32, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return uint32(id), nil
}

func printJSON(v any) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(string(data))
	return 0
}
