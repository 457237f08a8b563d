package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taskpad/client"
)

const dueInputLayout = "2006-01-02 15:04"

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, app)
		},
	}
}

func runList(cmd *cobra.Command, app *App) error {
	if err := app.tasks.Load(cmd.Context()); err != nil {
		return err
	}
	return writeView(cmd, app)
}

func newAddCmd(app *App) *cobra.Command {
	var due string

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := parseDue(due)
			if err != nil {
				return err
			}
			if err := app.tasks.Add(cmd.Context(), strings.Join(args, " "), at); err != nil {
				return err
			}
			return writeView(cmd, app)
		},
	}

	cmd.Flags().StringVar(&due, "due", "", `Due date, "YYYY-MM-DD HH:MM" local time or RFC3339`)
	return cmd
}

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <task> <text>",
		Short: "Replace a task's text",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveTask(cmd.Context(), app.tasks, args[0])
			if err != nil {
				return err
			}
			if err := app.tasks.Edit(cmd.Context(), id, strings.TrimSpace(strings.Join(args[1:], " "))); err != nil {
				return err
			}
			return writeView(cmd, app)
		},
	}
}

func newDoneCmd(app *App, done bool) *cobra.Command {
	use, short := "done <task>", "Mark a task done"
	if !done {
		use, short = "undone <task>", "Mark a task not done"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveTask(cmd.Context(), app.tasks, args[0])
			if err != nil {
				return err
			}
			if err := app.tasks.SetDone(cmd.Context(), id, done); err != nil {
				return err
			}
			return writeView(cmd, app)
		},
	}
}

func newRmCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <task>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveTask(cmd.Context(), app.tasks, args[0])
			if err != nil {
				return err
			}
			if !yes {
				fmt.Fprint(cmd.ErrOrStderr(), "Delete task? [y/N] ")
				answer, err := readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				if a := strings.ToLower(answer); a != "y" && a != "yes" {
					return nil
				}
			}
			if err := app.tasks.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return writeView(cmd, app)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newMoveCmd(app *App) *cobra.Command {
	var onto string

	cmd := &cobra.Command{
		Use:   "move <task> --onto <task>",
		Short: "Drop a task onto another task's position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dragged, err := resolveTask(cmd.Context(), app.tasks, args[0])
			if err != nil {
				return err
			}
			target, err := resolveTask(cmd.Context(), app.tasks, onto)
			if err != nil {
				return err
			}
			if err := app.tasks.Move(cmd.Context(), dragged, target); err != nil {
				_ = writeStatus(cmd, app)
				return err
			}
			return writeView(cmd, app)
		},
	}

	cmd.Flags().StringVar(&onto, "onto", "", "Target task")
	_ = cmd.MarkFlagRequired("onto")
	return cmd
}

func newThemeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "theme",
		Short: "Toggle between the light and dark theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			theme, err := app.tasks.ToggleTheme()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Theme: %s\n", theme)
			return err
		},
	}
}

func parseDue(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(dueInputLayout, s, time.Local); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid --due %q", s)
	}
	return &t, nil
}

// resolveTask accepts a 1-based list position, a full id or a unique id prefix.
func resolveTask(ctx context.Context, app *client.App, ref string) (string, error) {
	if !app.State().Auth.LoggedIn() {
		return "", client.ErrLoginFirst
	}
	if err := app.Load(ctx); err != nil {
		return "", err
	}
	rows := app.View().Rows
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(rows) {
		return rows[n-1].ID, nil
	}
	var match string
	for _, r := range rows {
		if r.ID == ref {
			return r.ID, nil
		}
		if ref != "" && strings.HasPrefix(r.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("task %q is ambiguous", ref)
			}
			match = r.ID
		}
	}
	if match == "" {
		return "", errors.New("no task " + strconv.Quote(ref))
	}
	return match, nil
}
