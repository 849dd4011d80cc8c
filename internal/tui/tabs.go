package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/deskwm/internal/ipc"
)

// Tab identifies a TUI tab.
type Tab int

const (
	TabWindows Tab = iota
	TabMap
	tabCount // sentinel for iteration
)

func (t Tab) String() string {
	switch t {
	case TabWindows:
		return "Windows"
	case TabMap:
		return "Desktop Map"
	default:
		return "?"
	}
}

// The accent matches the compositor's focused border.
var (
	colorAccent = lipgloss.Color("#0078D4")
	colorDesk   = lipgloss.Color("#1E1E1E")
	colorMuted  = lipgloss.Color("#5A5A5A")
	colorText   = lipgloss.Color("#D0D0D0")

	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(colorAccent).Padding(0, 2)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(colorText).Background(lipgloss.Color("#3A3A3A")).Padding(0, 2)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
)

// renderTabBar draws "1:Windows 2:Desktop Map" with the active tab lit.
func renderTabBar(active Tab, width int) string {
	gap := lipgloss.NewStyle().Background(colorDesk).Render(" ")
	parts := make([]string, 0, 2*int(tabCount))
	for i := Tab(0); i < tabCount; i++ {
		if i > 0 {
			parts = append(parts, gap)
		}
		style := inactiveTabStyle
		if i == active {
			style = activeTabStyle
		}
		parts = append(parts, style.Render(fmt.Sprintf("%d:%s", int(i)+1, i)))
	}
	return lipgloss.NewStyle().Width(width).MarginBottom(1).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
}

// renderStatusBar renders the daemon connection status bar.
func renderStatusBar(status *ipc.StatusData, width int) string {
	var line string
	if status != nil {
		dot := lipgloss.NewStyle().Foreground(colorAccent).Render("●")
		parts := []string{
			dot + " daemon connected",
			"backend:" + status.Backend,
			fmt.Sprintf("windows:%d/%d", status.Windows, status.Capacity),
			fmt.Sprintf("pointer:%d,%d", status.PointerX, status.PointerY),
		}
		if status.Phase != "" && status.Phase != "idle" {
			parts = append(parts, fmt.Sprintf("%s:#%d", status.Phase, status.Target))
		}
		line = strings.Join(parts, "  ")
	} else {
		line = lipgloss.NewStyle().Foreground(colorMuted).Render("●") + " daemon not running"
	}
	return lipgloss.NewStyle().Width(width).Background(colorDesk).Foreground(colorText).Padding(0, 1).Render(line)
}

// renderHelpBar renders the bottom help/keybinding bar.
func renderHelpBar(errMsg string, width int) string {
	help := "tab: switch tabs  1-2: jump  f: focus  x: close  m: minimize  r: restore  z: maximize  t: rename  q: quit"
	if errMsg != "" {
		help = errorStyle.Render(errMsg)
	}
	return lipgloss.NewStyle().Width(width).Foreground(colorMuted).Padding(0, 1).Render(help)
}
