package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"taskpad/client"
)

const defaultAPI = "http://localhost:3000"

type App struct {
	API         string
	PrefsPath   string
	NoReminders bool

	tasks *client.App
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "taskpad",
		Short:        "Personal task list client",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  taskpad register alice
  taskpad login alice
  taskpad add "buy milk" --due "2025-03-01 18:00"
  taskpad move 3 --onto 1
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.open(cmd)
	}

	api := os.Getenv("TASKPAD_API")
	if api == "" {
		api = defaultAPI
	}
	cmd.PersistentFlags().StringVar(&app.API, "api", api, "API base URL (env TASKPAD_API)")
	cmd.PersistentFlags().StringVar(&app.PrefsPath, "prefs", client.DefaultPrefsPath(), "Preferences file")
	cmd.PersistentFlags().BoolVar(&app.NoReminders, "no-reminders", false, "Do not print reminders for tasks due soon")

	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newDoneCmd(app, true))
	cmd.AddCommand(newDoneCmd(app, false))
	cmd.AddCommand(newRmCmd(app))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newThemeCmd(app))
	return cmd
}

func (a *App) open(cmd *cobra.Command) error {
	prefs, err := client.OpenPrefs(a.PrefsPath)
	if err != nil {
		return err
	}
	a.tasks = client.NewApp(
		client.New(a.API),
		prefs,
		client.WithNotifier(terminalNotifier{w: cmd.ErrOrStderr(), enabled: !a.NoReminders}),
	)
	return nil
}
