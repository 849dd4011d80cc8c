// Package tui is an interactive inspector for a running desktop daemon.
package tui

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/deskwm/internal/ipc"
)

// refreshInterval is how often the daemon state is polled.
const refreshInterval = 500 * time.Millisecond

// Client is the part of the IPC client the inspector drives.
type Client interface {
	GetStatus() (*ipc.StatusData, error)
	List() ([]ipc.WindowInfo, error)
	Focus(id uint32) error
	Destroy(id uint32) error
	Minimize(id uint32) error
	Restore(id uint32) error
	Maximize(id uint32) error
	SetTitle(id uint32, title string) error
}

// Run starts the inspector and blocks until the user quits.
func Run(client Client) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	p := tea.NewProgram(newModel(client), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
