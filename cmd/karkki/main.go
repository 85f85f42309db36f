package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/karkkilista/internal/client"
	"github.com/mmynk/karkkilista/pkg/logging"
)

var (
	// Global flags
	serverURL   string
	sessionPath string
	timeout     time.Duration
	verbose     bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "karkki",
	Short: "Karkkilista - shared candy wishlists from the terminal",
	Long: `karkki talks to a Karkkilista server.

Everyone can browse the lists; only the owner of a list can add to it or
remove from it. Sign in with "karkki login" or create an account with
"karkki register". The session is remembered between runs.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := os.Getenv("LOG_LEVEL")
		if verbose {
			level = "debug"
		} else if level == "" {
			level = "warn"
		}
		logging.Configure(level, os.Getenv("LOG_FORMAT"))
	},
}

func init() {
	defaultServer := os.Getenv("KARKKI_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "server base URL (env KARKKI_SERVER)")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session", "", "session file (default: user config dir)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "how long to wait for the server")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(usersCmd, listCmd, addCmd, fetchCmd, removeCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// connect creates a client and restores the saved session, if any. A session
// the server rejects is forgotten; one that cannot be checked right now is
// kept for the next run.
func connect(ctx context.Context) (*client.Client, error) {
	c := client.New(serverURL)

	saved, err := loadSession()
	if err != nil {
		c.Close()
		return nil, err
	}
	if saved == nil || saved.Server != serverURL {
		return c, nil
	}

	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_, err = c.Resume(rctx, saved.Token)
	switch {
	case errors.Is(err, client.ErrSessionRejected):
		slog.Warn("Saved session is no longer valid", "error", err)
		if err := clearSession(); err != nil {
			slog.Warn("Failed to remove session file", "error", err)
		}
	case err != nil:
		slog.Warn("Could not restore session, continuing signed out", "error", err)
	}
	return c, nil
}

func printErr(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
