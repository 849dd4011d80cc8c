package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/deskwm/internal/ipc"
)

// stateMsg carries a fresh read of the daemon state.
type stateMsg struct {
	status  *ipc.StatusData
	windows []ipc.WindowInfo
	err     error
}

type tickMsg time.Time

// model is the root bubbletea model for the TUI.
type model struct {
	client Client

	activeTab  Tab
	windowsTab WindowsTab
	mapTab     MapTab

	status    *ipc.StatusData
	windows   []ipc.WindowInfo
	lastError string

	width  int
	height int
}

func newModel(client Client) model {
	return model{
		client:     client,
		activeTab:  TabWindows,
		windowsTab: NewWindowsTab(client),
	}
}

// fetchState reads status and the window list from the daemon.
func fetchState(client Client) tea.Cmd {
	return func() tea.Msg {
		status, err := client.GetStatus()
		if err != nil {
			return stateMsg{err: err}
		}
		windows, err := client.List()
		if err != nil {
			return stateMsg{status: status, err: err}
		}
		return stateMsg{status: status, windows: windows}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(fetchState(m.client), tick())
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	return max(m.height-4, 1)
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		if msg.err != nil {
			m.status = nil
			m.windows = nil
			m.lastError = msg.err.Error()
		} else {
			m.status = msg.status
			m.windows = msg.windows
			m.lastError = ""
		}
		m.windowsTab.SetWindows(m.windows)
		return m, nil

	case tickMsg:
		return m, tea.Batch(fetchState(m.client), tick())

	case actionMsg:
		if msg.err != nil {
			m.lastError = fmt.Sprintf("%s #%d: %v", msg.action, msg.id, msg.err)
			return m, nil
		}
		m.lastError = ""
		return m, fetchState(m.client)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		sub := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
		m.windowsTab, _ = m.windowsTab.Update(sub)
		m.mapTab.width, m.mapTab.height = sub.Width, sub.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// The rename prompt consumes every other key.
		if m.windowsTab.renaming {
			var cmd tea.Cmd
			m.windowsTab, cmd = m.windowsTab.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabWindows
			return m, nil
		case "2":
			m.activeTab = TabMap
			return m, nil
		}
	}

	// Window commands work from both tabs; the selection lives in the list.
	var cmd tea.Cmd
	m.windowsTab, cmd = m.windowsTab.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.status, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.lastError, m.width)

	var content string
	switch m.activeTab {
	case TabWindows:
		content = m.windowsTab.View()
	case TabMap:
		content = m.mapTab.View(m.windows, m.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
