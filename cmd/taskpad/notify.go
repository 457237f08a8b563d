package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// terminalNotifier prints reminders to stderr.
type terminalNotifier struct {
	w       io.Writer
	enabled bool
}

func (n terminalNotifier) Permitted() bool { return n.enabled }

func (n terminalNotifier) Notify(title, body string) error {
	_, err := fmt.Fprintf(n.w, "%s %s\n", lipgloss.NewStyle().Bold(true).Render(title+":"), body)
	return err
}
