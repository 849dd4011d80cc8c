package snapshot

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"

	"github.com/blacktop/go-termimg"
)

// Terminal graphics protocols.
const (
	ProtocolAuto       = "auto"
	ProtocolKitty      = "kitty"
	ProtocolITerm2     = "iterm2"
	ProtocolSixel      = "sixel"
	ProtocolHalfblocks = "halfblocks"
)

// Protocols lists the accepted protocol names.
var Protocols = []string{ProtocolAuto, ProtocolKitty, ProtocolITerm2, ProtocolSixel, ProtocolHalfblocks}

// PreviewOptions sizes a terminal preview in character cells.
type PreviewOptions struct {
	Protocol string
	Width    int
	Height   int
}

// DetectProtocol picks a protocol from the terminal environment.
func DetectProtocol() string {
	switch {
	case os.Getenv("KITTY_WINDOW_ID") != "" || strings.Contains(os.Getenv("TERM"), "kitty"):
		return ProtocolKitty
	case os.Getenv("TERM_PROGRAM") == "iTerm.app" || os.Getenv("TERM_PROGRAM") == "WezTerm":
		return ProtocolITerm2
	default:
		return ProtocolHalfblocks
	}
}

// Preview renders img as terminal escape sequences.
func Preview(img image.Image, opts PreviewOptions) (string, error) {
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 24
	}
	proto := opts.Protocol
	if proto == "" || proto == ProtocolAuto {
		proto = DetectProtocol()
	}

	switch proto {
	case ProtocolKitty:
		return renderTermimg(img, termimg.Kitty, opts)
	case ProtocolITerm2:
		return renderTermimg(img, termimg.ITerm2, opts)
	case ProtocolSixel:
		return renderTermimg(img, termimg.Sixel, opts)
	case ProtocolHalfblocks:
		return Halfblocks(img, opts.Width, opts.Height), nil
	default:
		return "", fmt.Errorf("unknown preview protocol %q", proto)
	}
}

func renderTermimg(img image.Image, proto termimg.Protocol, opts PreviewOptions) (string, error) {
	ti := termimg.New(img)
	if ti == nil {
		return "", fmt.Errorf("go-termimg: failed to create image wrapper")
	}
	ti.Protocol(proto).Size(opts.Width, opts.Height).Scale(termimg.ScaleFit)
	return ti.Render()
}

// Halfblocks renders img with upper half block characters, two pixel rows
// per cell, scaled to fit cols x rows cells.
func Halfblocks(img image.Image, cols, rows int) string {
	small := Fit(img, cols, rows*2)
	b := small.Bounds()

	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := rgb(small.At(x, y))
			bot := top
			if y+1 < b.Max.Y {
				bot = rgb(small.At(x, y+1))
			}
			fmt.Fprintf(&sb, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				top.R, top.G, top.B, bot.R, bot.G, bot.B)
		}
		sb.WriteString("\x1b[0m\n")
	}
	return sb.String()
}

func rgb(c color.Color) color.RGBA {
	r, g, b, _ := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xFF}
}
