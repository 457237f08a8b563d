package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is replaced in tests.
var readPassword = term.ReadPassword

func newRegisterCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "register <username> [password]",
		Short: "Create an account",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := passwordArg(cmd, args)
			if err != nil {
				return err
			}
			if err := app.tasks.Register(cmd.Context(), args[0], password); err != nil {
				return err
			}
			return writeStatus(cmd, app)
		},
	}
}

func newLoginCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> [password]",
		Short: "Log in and remember the session",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := passwordArg(cmd, args)
			if err != nil {
				return err
			}
			if err := app.tasks.Login(cmd.Context(), args[0], password); err != nil {
				return err
			}
			return writeView(cmd, app)
		},
	}
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := app.tasks.Logout(cmd.Context())
			if werr := writeStatus(cmd, app); err == nil {
				err = werr
			}
			return err
		},
	}
}

// passwordArg returns the second argument, or prompts for it. The prompt hides
// input on a terminal and reads one line otherwise.
func passwordArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 2 {
		return args[1], nil
	}
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		return string(pw), err
	}
	return readLine(in)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
