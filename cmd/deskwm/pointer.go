package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/1broseidon/deskwm/internal/ipc"
	"github.com/1broseidon/deskwm/internal/snapshot"
)

func runPointer(args []string) int {
	fs := flag.NewFlagSet("pointer", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := socketFlag(fs)
	x := fs.Int("x", 0, "Absolute x (with --y)")
	y := fs.Int("y", 0, "Absolute y (with --x)")
	dx := fs.Int("dx", 0, "Relative x motion")
	dy := fs.Int("dy", 0, "Relative y motion, positive is up")
	left := fs.Bool("left", false, "Hold the left button")
	middle := fs.Bool("middle", false, "Hold the middle button")
	right := fs.Bool("right", false, "Hold the right button")
	click := fs.Bool("click", false, "Press and release the left button at the resulting position")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskwm pointer [--x N --y N | --dx N --dy N] [--left] [--middle] [--right] [--click]")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	absolute := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "x" || f.Name == "y" {
			absolute = true
		}
	})
	p := ipc.PointerPayload{
		Absolute: absolute,
		X:        *x,
		Y:        *y,
		DX:       *dx,
		DY:       *dy,
		Left:     *left,
		Middle:   *middle,
		Right:    *right,
		Click:    *click,
	}
	if absolute && (p.DX != 0 || p.DY != 0) {
		fmt.Fprintln(os.Stderr, "use either --x/--y or --dx/--dy")
		return 2
	}

	data, err := newClient(*socket).Pointer(p)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("%d,%d %s\n", data.X, data.Y, strings.Join(data.Buttons, "+"))
	return 0
}

func runSnapshot(args []string) int {
	fs := flag.NewFlagSet("snapshot", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := socketFlag(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskwm snapshot <file.png|.jpg|.bmp|.gif|.tif>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Save the current frame; the format follows the extension.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	snap, err := newClient(*socket).Snapshot()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	img, err := snapshot.Decode(snap.PNG)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := snapshot.Save(img, fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("saved %dx%d frame to %s\n", snap.Width, snap.Height, fs.Arg(0))
	return 0
}

func runScreen(args []string) int {
	fs := flag.NewFlagSet("screen", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := socketFlag(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskwm screen <width> <height>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Change the screen size. Windows and the pointer are kept on screen.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 2
	}
	width, errW := strconv.Atoi(fs.Arg(0))
	height, errH := strconv.Atoi(fs.Arg(1))
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		fmt.Fprintf(os.Stderr, "invalid screen size %q x %q\n", fs.Arg(0), fs.Arg(1))
		return 2
	}

	b, err := newClient(*socket).SetBounds(width, height)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("%dx%d pointer %d,%d\n", b.Width, b.Height, b.PointerX, b.PointerY)
	return 0
}

func runPreview(args []string) int {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := socketFlag(fs)
	protocol := fs.String("protocol", snapshot.ProtocolAuto, "Image protocol: auto, kitty, iterm2, sixel, halfblocks")
	width := fs.Int("width", 0, "Width in cells (default: terminal width)")
	height := fs.Int("height", 0, "Height in cells (default: terminal height)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskwm preview [--protocol NAME] [--width N] [--height N]")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	if *width == 0 || *height == 0 {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			if *width == 0 {
				*width = w
			}
			if *height == 0 {
				*height = h - 1
			}
		}
	}

	snap, err := newClient(*socket).Snapshot()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	img, err := snapshot.Decode(snap.PNG)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	out, err := snapshot.Preview(img, snapshot.PreviewOptions{
		Protocol: *protocol,
		Width:    *width,
		Height:   *height,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Print(out)
	if !strings.HasSuffix(out, "\n") {
		fmt.Println()
	}
	return 0
}
