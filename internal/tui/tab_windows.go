package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/deskwm/internal/ipc"
)

// windowItem is a list item representing a desktop window.
type windowItem struct {
	info ipc.WindowInfo
}

func (i windowItem) Title() string {
	mark := lipgloss.NewStyle().Foreground(colorMuted).Render("○")
	switch {
	case i.info.HasFlag("focused"):
		mark = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Render("●")
	case i.info.HasFlag("minimized"):
		mark = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("_")
	case i.info.HasFlag("visible"):
		mark = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("○")
	}
	return fmt.Sprintf("%s #%d %s", mark, i.info.ID, i.info.Title)
}

func (i windowItem) Description() string {
	return fmt.Sprintf("%dx%d at %d,%d  z:%d", i.info.Width, i.info.Height, i.info.X, i.info.Y, i.info.Z)
}

func (i windowItem) FilterValue() string { return i.info.Title }

// actionMsg reports the outcome of a window command.
type actionMsg struct {
	action string
	id     uint32
	err    error
}

// WindowsTab lists the windows front to back and runs commands on the
// selected one.
type WindowsTab struct {
	list   list.Model
	client Client
	width  int
	height int

	renaming  bool
	textInput textinput.Model
}

// NewWindowsTab creates an empty windows tab.
func NewWindowsTab(client Client) WindowsTab {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Windows"
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	ti := textinput.New()
	ti.Placeholder = "new title"
	ti.CharLimit = 63

	return WindowsTab{
		list:      l,
		client:    client,
		textInput: ti,
	}
}

// SetWindows replaces the listed windows, keeping the selection on the same
// window id when it still exists.
func (t *WindowsTab) SetWindows(windows []ipc.WindowInfo) {
	selected, hadSelection := t.Selected()
	items := make([]list.Item, 0, len(windows))
	index := 0
	for i, w := range windows {
		items = append(items, windowItem{info: w})
		if hadSelection && w.ID == selected.ID {
			index = i
		}
	}
	t.list.SetItems(items)
	if len(items) > 0 {
		t.list.Select(index)
	}
}

// Selected returns the highlighted window.
func (t WindowsTab) Selected() (ipc.WindowInfo, bool) {
	item, ok := t.list.SelectedItem().(windowItem)
	if !ok {
		return ipc.WindowInfo{}, false
	}
	return item.info, true
}

// Update handles messages for the windows tab.
func (t WindowsTab) Update(msg tea.Msg) (WindowsTab, tea.Cmd) {
	if t.renaming {
		return t.updateRenaming(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		t.list.SetSize(t.listWidth(), t.height)
		return t, nil

	case tea.KeyMsg:
		w, ok := t.Selected()
		switch msg.String() {
		case "f", "enter":
			if ok {
				return t, t.run("focus", w.ID, t.client.Focus)
			}
			return t, nil
		case "x", "delete":
			if ok {
				return t, t.run("close", w.ID, t.client.Destroy)
			}
			return t, nil
		case "m":
			if ok {
				return t, t.run("minimize", w.ID, t.client.Minimize)
			}
			return t, nil
		case "r":
			if ok {
				return t, t.run("restore", w.ID, t.client.Restore)
			}
			return t, nil
		case "z":
			if ok {
				return t, t.run("maximize", w.ID, t.client.Maximize)
			}
			return t, nil
		case "t":
			if ok {
				t.renaming = true
				t.textInput.SetValue(w.Title)
				t.textInput.CursorEnd()
				t.textInput.Focus()
				return t, textinput.Blink
			}
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.list, cmd = t.list.Update(msg)
	return t, cmd
}

func (t WindowsTab) updateRenaming(msg tea.Msg) (WindowsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			t.renaming = false
			t.textInput.Blur()
			title := strings.TrimSpace(t.textInput.Value())
			w, ok := t.Selected()
			if !ok || title == "" {
				return t, nil
			}
			client := t.client
			return t, t.run("rename", w.ID, func(id uint32) error {
				return client.SetTitle(id, title)
			})
		case "esc":
			t.renaming = false
			t.textInput.Blur()
			return t, nil
		}
	case tea.WindowSizeMsg:
		t.width = msg.Width
		t.height = msg.Height
		return t, nil
	}

	var cmd tea.Cmd
	t.textInput, cmd = t.textInput.Update(msg)
	return t, cmd
}

// run wraps a window command as a tea.Cmd.
func (t WindowsTab) run(action string, id uint32, op func(uint32) error) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{action: action, id: id, err: op(id)}
	}
}

func (t WindowsTab) listWidth() int {
	w := t.width * 2 / 5
	if w < 24 {
		w = 24
	}
	return w
}

// View implements tea.Model.
func (t WindowsTab) View() string {
	if t.width == 0 || t.height == 0 {
		return ""
	}

	leftWidth := t.listWidth()
	rightWidth := max(t.width-leftWidth, 10)

	var leftContent string
	if t.renaming {
		inputStyle := lipgloss.NewStyle().Padding(0, 1).Width(leftWidth)
		prompt := lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Render("Rename window:") + "\n" +
			t.textInput.View() + "\n" +
			lipgloss.NewStyle().Foreground(colorMuted).Render("enter: confirm  esc: cancel")
		inputBlock := inputStyle.Render(prompt)
		listHeight := max(t.height-lipgloss.Height(inputBlock), 1)
		t.list.SetSize(leftWidth, listHeight)
		leftContent = inputBlock + "\n" + t.list.View()
	} else {
		leftContent = t.list.View()
	}

	left := lipgloss.NewStyle().
		Width(leftWidth).
		Height(t.height).
		Render(leftContent)

	var right string
	if w, ok := t.Selected(); ok {
		right = renderWindowDetail(w, rightWidth, t.height)
	} else {
		right = lipgloss.NewStyle().
			Width(rightWidth).
			Height(t.height).
			Foreground(colorMuted).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No windows open")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// renderWindowDetail renders the right-side detail pane for the selected window.
func renderWindowDetail(w ipc.WindowInfo, width, height int) string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	b.WriteString(titleStyle.Render(w.Title))
	b.WriteString("\n\n")

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("248")).Width(12)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	field := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	field("id:", fmt.Sprintf("%d", w.ID))
	field("position:", fmt.Sprintf("%d,%d", w.X, w.Y))
	field("size:", fmt.Sprintf("%dx%d", w.Width, w.Height))
	field("z-order:", fmt.Sprintf("%d", w.Z))
	field("flags:", strings.Join(w.Flags, " "))

	style := lipgloss.NewStyle().
		Width(width).
		Height(height).
		Padding(1, 2).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(lipgloss.Color("236"))
	return style.Render(b.String())
}
