package tui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/deskwm/internal/ipc"
)

// Corner and edge runes of a box: ┌┐└┘ ─ │.
type boxRunes [6]rune

var (
	singleBox = boxRunes{'┌', '┐', '└', '┘', '─', '│'}
	doubleBox = boxRunes{'╔', '╗', '╚', '╝', '═', '║'}
)

// charGrid is a fixed-size rune canvas addressed by cell.
type charGrid struct {
	cells [][]rune
	w, h  int
}

func newCharGrid(w, h int) *charGrid {
	g := &charGrid{cells: make([][]rune, h), w: w, h: h}
	for y := range g.cells {
		g.cells[y] = []rune(strings.Repeat(" ", w))
	}
	return g
}

// box outlines the cells from (x1,y1) to (x2,y2) inclusive. With clear
// set the interior is blanked first, hiding whatever was drawn there.
func (g *charGrid) box(x1, y1, x2, y2 int, r boxRunes, clear bool) {
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			switch {
			case y == y1 || y == y2:
				g.cells[y][x] = r[4]
			case x == x1 || x == x2:
				g.cells[y][x] = r[5]
			case clear:
				g.cells[y][x] = ' '
			}
		}
	}
	g.cells[y1][x1], g.cells[y1][x2] = r[0], r[1]
	g.cells[y2][x1], g.cells[y2][x2] = r[2], r[3]
}

// label centres s in the box, keeping it off the side edges. A box two
// rows tall gets it on its top edge.
func (g *charGrid) label(x1, y1, x2, y2 int, s string) {
	y := (y1 + y2) / 2
	x := (x1+x2)/2 - len(s)/2
	for i, r := range s {
		if x+i > x1 && x+i < x2 {
			g.cells[y][x+i] = r
		}
	}
}

func (g *charGrid) lines() []string {
	out := make([]string, g.h)
	for y, row := range g.cells {
		out[y] = string(row)
	}
	return out
}

// renderDesktopMap draws the visible windows of a screenW x screenH desktop
// onto a width x height character canvas. windows is front to back, so the
// front window is drawn last and overlaps the others.
func renderDesktopMap(windows []ipc.WindowInfo, screenW, screenH, width, height int) []string {
	if width < 0 || height < 0 {
		return nil
	}
	g := newCharGrid(width, height)
	if width < 5 || height < 3 || screenW <= 0 || screenH <= 0 {
		return g.lines()
	}

	for _, w := range slices.Backward(windows) {
		if !w.HasFlag("visible") {
			continue
		}
		// Screen to cell coordinates, kept inside the outer frame.
		x1 := max(w.X*width/screenW, 1)
		y1 := max(w.Y*height/screenH, 1)
		x2 := min((w.X+w.Width)*width/screenW, width-2)
		y2 := min((w.Y+w.Height)*height/screenH, height-2)
		if x2 <= x1 || y2 <= y1 {
			continue
		}
		g.box(x1, y1, x2, y2, singleBox, true)

		id := strconv.FormatUint(uint64(w.ID), 10)
		if w.HasFlag("focused") {
			id += "*"
		}
		g.label(x1, y1, x2, y2, id)
	}

	g.box(0, 0, width-1, height-1, doubleBox, false)
	return g.lines()
}

// MapTab shows where the windows sit on the desktop.
type MapTab struct {
	width  int
	height int
}

func (t MapTab) View(windows []ipc.WindowInfo, status *ipc.StatusData) string {
	if t.width == 0 || t.height == 0 {
		return ""
	}
	screenW, screenH := 0, 0
	if status != nil {
		screenW, screenH = status.ScreenWidth, status.ScreenHeight
	}
	caption := fmt.Sprintf("%dx%d desktop  * focused", screenW, screenH)
	lines := renderDesktopMap(windows, screenW, screenH, t.width-2, t.height-1)
	body := lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Render(strings.Join(lines, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1).Render(caption),
		lipgloss.NewStyle().Padding(0, 1).Render(body),
	)
}
