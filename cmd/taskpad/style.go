package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"taskpad/client"
)

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorText    = ac("235", "252")
	colorMuted   = ac("240", "245")
	colorAccent  = ac("27", "62")
	colorDanger  = ac("160", "203")
	colorSuccess = ac("28", "71")
)

// pick resolves an adaptive colour for the saved theme rather than the
// terminal background.
func pick(c lipgloss.AdaptiveColor, t client.Theme) lipgloss.Color {
	if t == client.ThemeDark {
		return lipgloss.Color(c.Dark)
	}
	return lipgloss.Color(c.Light)
}

type styles struct {
	title   lipgloss.Style
	text    lipgloss.Style
	done    lipgloss.Style
	muted   lipgloss.Style
	overdue lipgloss.Style
	status  lipgloss.Style
	failure lipgloss.Style
}

func stylesFor(t client.Theme) styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(pick(colorAccent, t)),
		text:    lipgloss.NewStyle().Foreground(pick(colorText, t)),
		done:    lipgloss.NewStyle().Strikethrough(true).Foreground(pick(colorMuted, t)),
		muted:   lipgloss.NewStyle().Foreground(pick(colorMuted, t)),
		overdue: lipgloss.NewStyle().Bold(true).Foreground(pick(colorDanger, t)),
		status:  lipgloss.NewStyle().Foreground(pick(colorSuccess, t)),
		failure: lipgloss.NewStyle().Foreground(pick(colorDanger, t)),
	}
}

func writeView(cmd *cobra.Command, app *App) error {
	return renderView(cmd.OutOrStdout(), app.tasks.View())
}

func writeStatus(cmd *cobra.Command, app *App) error {
	s := app.tasks.State()
	if s.Status == "" {
		return nil
	}
	st := stylesFor(s.Theme)
	line := st.status.Render(s.Status)
	if s.StatusIsError {
		line = st.failure.Render(s.Status)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), line)
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func renderView(w io.Writer, v client.View) error {
	st := stylesFor(v.Theme)
	var b strings.Builder

	if v.LoggedIn {
		b.WriteString(st.title.Render("Tasks for "+v.Username) + "\n")
	}
	if v.Status != "" {
		b.WriteString(st.muted.Render(v.Status) + "\n")
	}
	if !v.LoggedIn {
		_, err := io.WriteString(w, b.String())
		return err
	}

	for i, r := range v.Rows {
		box, text := "[ ]", st.text.Render(r.Text)
		if r.Done {
			box, text = "[x]", st.done.Render(r.Text)
		}
		line := fmt.Sprintf("%2d. %s %s %s", i+1, box, text, st.muted.Render(shortID(r.ID)))
		if r.DueLabel != "" {
			due := st.muted.Render(r.DueLabel)
			if r.Overdue {
				due = st.overdue.Render(r.DueLabel + " (overdue)")
			}
			line += "  " + due
		}
		b.WriteString(line + "\n")
	}
	if len(v.Rows) == 0 {
		b.WriteString(st.muted.Render("No tasks yet.") + "\n")
	}
	b.WriteString(st.muted.Render(fmt.Sprintf("%s (%.0f%%)", v.Progress, v.Percent)) + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}
