package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var (
	authEmail    string
	authPassword string
	authUsername string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account (and its list) and sign in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		identity, err := c.Register(ctx, authEmail, authPassword, authUsername)
		if err != nil {
			slog.Error("Registration failed", "email", authEmail, "error", err)
			return err
		}
		if err := saveSession(c.Token()); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Registered %s. Your list: /list/%s\n", identity.Email, identity.ID)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		identity, err := c.Login(ctx, authEmail, authPassword)
		if err != nil {
			slog.Error("Login failed", "email", authEmail, "error", err)
			return err
		}
		if err := saveSession(c.Token()); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", identity.Email, identity.ID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the saved session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		if err := c.Logout(ctx); err != nil {
			slog.Error("Logout failed", "error", err)
		}
		if err := clearSession(); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()

		identity := c.Identity()
		if identity == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", identity.Email, identity.ID)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{registerCmd, loginCmd} {
		cmd.Flags().StringVar(&authEmail, "email", "", "account email")
		cmd.Flags().StringVar(&authPassword, "password", "", "account password")
		cmd.MarkFlagRequired("email")
		cmd.MarkFlagRequired("password")
	}
	registerCmd.Flags().StringVar(&authUsername, "username", "", "name shown on your list")
	registerCmd.MarkFlagRequired("username")
}
