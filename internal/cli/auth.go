package cli

import (
	"context"
	"fmt"

	"mobilehub/internal/storefront"

	"github.com/spf13/cobra"
)

func newAuthCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in, sign up and manage passwords",
	}

	login := &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Sign in with an email and password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, app *storefront.App) error {
				session, err := app.Auth.Login(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				if session.IsTempPassword {
					fmt.Fprintln(cmd.ErrOrStderr(), "You are using a temporary password. Please change it.")
				}
				return printJSON(cmd.OutOrStdout(), session)
			})
		},
	}

	var confirm string
	signup := &cobra.Command{
		Use:   "signup <email> <password>",
		Short: "Register a new account and sign in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("confirm") {
				confirm = args[1]
			}
			if err := storefront.ValidateNewSecret(args[1], confirm); err != nil {
				return err
			}
			return e.withApp(cmd, func(ctx context.Context, app *storefront.App) error {
				session, err := app.Auth.Signup(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), session)
			})
		},
	}
	signup.Flags().StringVar(&confirm, "confirm", "", "password confirmation")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, app *storefront.App) error {
				return app.Auth.Logout(ctx)
			})
		},
	}

	reset := &cobra.Command{
		Use:   "reset <email>",
		Short: "Replace a password with a temporary one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, app *storefront.App) error {
				secret, err := app.Auth.ResetSecret(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Temporary password: %s\n", secret)
				return nil
			})
		},
	}

	var confirmNew string
	change := &cobra.Command{
		Use:   "change-password <current> <new>",
		Short: "Change the password of the signed-in account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("confirm") {
				confirmNew = args[1]
			}
			if err := storefront.ValidateNewSecret(args[1], confirmNew); err != nil {
				return err
			}
			return e.withApp(cmd, func(ctx context.Context, app *storefront.App) error {
				if err := app.Auth.ChangeSecret(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Password changed")
				return nil
			})
		},
	}
	change.Flags().StringVar(&confirmNew, "confirm", "", "new password confirmation")

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd, func(ctx context.Context, app *storefront.App) error {
				session, ok := app.Auth.CurrentUser()
				if !ok {
					return storefront.ErrNoActiveSession
				}
				return printJSON(cmd.OutOrStdout(), session)
			})
		},
	}

	cmd.AddCommand(login, signup, logout, reset, change, whoami)
	return cmd
}
