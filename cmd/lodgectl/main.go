// Command lodgectl is a terminal client for the lodge API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/lodge-manager/internal/client"
)

const defaultServer = "http://localhost:3000"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd(nil).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	server      string
	sessionPath string
	timeout     time.Duration

	// store overrides the file store; tests inject a MemorySessionStore.
	store  client.SessionStore
	client *client.Client
}

func rootCmd(store client.SessionStore) *cobra.Command {
	a := &app{store: store}

	server := os.Getenv("LODGE_SERVER")
	if server == "" {
		server = defaultServer
	}

	cmd := &cobra.Command{
		Use:           "lodgectl",
		Short:         "Manage lodge rooms and availability",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	cmd.PersistentFlags().StringVar(&a.server, "server", server, "API base URL (env LODGE_SERVER)")
	cmd.PersistentFlags().StringVar(&a.sessionPath, "session", "", "session file (default: user config dir)")
	cmd.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "per-command request timeout, 0 for none")

	cmd.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.dashboardCmd(),
		a.roomsCmd(),
		a.availabilityCmd(),
	)
	return cmd
}

func (a *app) init() error {
	if a.store == nil {
		path := a.sessionPath
		if path == "" {
			var err error
			if path, err = client.DefaultSessionPath(); err != nil {
				return err
			}
		}
		a.store = client.NewFileSessionStore(path)
	}

	opts := []client.Option{client.WithSessionStore(a.store)}
	session, err := a.store.Load()
	switch {
	case err == nil:
		opts = append(opts, client.WithSession(session))
	case errors.Is(err, client.ErrNoSession):
	default:
		return fmt.Errorf("load session: %w", err)
	}

	c, err := client.New(a.server, opts...)
	if err != nil {
		return err
	}
	a.client = c
	return nil
}

// context bounds a command's requests by --timeout when one is set.
func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a.timeout > 0 {
		return context.WithTimeout(ctx, a.timeout)
	}
	return context.WithCancel(ctx)
}

// guard is the route guard for views that need a login.
func (a *app) guard() (*client.Session, error) {
	session, err := a.client.RequireSession()
	if err != nil {
		return nil, explain(err)
	}
	return session, nil
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = prompt(cmd, "Password: "); err != nil {
					return err
				}
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			session, err := a.client.Login(ctx, email, password)
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", session.User.Name, session.User.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (a *app) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the landing view",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.guard()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Welcome to your Dashboard, %s\n\n", session.User.Name)
			fmt.Fprintln(out, "Use the commands below to manage your rooms and availability:")
			fmt.Fprintln(out, "  lodgectl rooms list|create|update|delete")
			fmt.Fprintln(out, "  lodgectl availability list|create|update|delete")
			return nil
		},
	}
}
