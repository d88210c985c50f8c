package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rongwang/expense-tracker/internal/models"
	"github.com/rongwang/expense-tracker/internal/session"
)

func migrateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// opening the app applies pending migrations
			return withApp(opts, func(a *app) error {
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ Database is up to date"))
				return nil
			})
		},
	}
}

// readPassword takes --password if set, otherwise one line of stdin
func readPassword(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.New("password is required")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func saveLogin(a *app, resp *models.AuthResponse) error {
	return a.tokens.Save(&session.Credentials{
		Token:  resp.Token,
		UserID: resp.UserID,
		Email:  resp.Email,
		Name:   resp.Name,
	})
}

func registerCmd(opts *globalOptions) *cobra.Command {
	var name, password string

	cmd := &cobra.Command{
		Use:   "register <email>",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			return withApp(opts, func(a *app) error {
				resp, err := a.svc.SignUp(cmd.Context(), models.SignUpRequest{Email: args[0], Password: pw, Name: name})
				if err != nil {
					return err
				}
				if err := saveLogin(a, resp); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ Welcome, %s", resp.Name)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "your display name")
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func loginCmd(opts *globalOptions) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Log in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			return withApp(opts, func(a *app) error {
				resp, err := a.svc.Login(cmd.Context(), models.LoginRequest{Email: args[0], Password: pw})
				if err != nil {
					return err
				}
				if err := saveLogin(a, resp); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ Logged in as %s", resp.Email)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when omitted)")

	return cmd
}

func logoutCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(a *app) error {
				ctx, err := a.authed(cmd.Context())
				if err == nil {
					if err := a.svc.Logout(ctx); err != nil {
						return err
					}
				}
				if err := a.tokens.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("✓ Logged out"))
				return nil
			})
		},
	}
}

func whoamiCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, opts, func(ctx context.Context, a *app) error {
				user, err := a.svc.CurrentUser(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.Name, user.Email)
				return nil
			})
		},
	}
}
