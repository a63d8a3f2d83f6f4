// Command lodge runs the lodge management API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/lodge-manager/internal/config"
	"github.com/example/lodge-manager/internal/logging"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	load := func() (config.Config, error) {
		if configPath == "" {
			return config.Load()
		}
		return config.LoadPath(configPath)
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, logging.New(os.Stdout, cfg.LogLevel))
		},
	}

	cmd := &cobra.Command{
		Use:   "lodge",
		Short: "Lodge room and availability API",
		Long: `lodge serves the lodge management API: login, rooms and availability windows.

Configuration is read from the environment, optionally layered over a YAML
file named by --config or LODGE_CONFIG.`,
		SilenceUsage: true,
		RunE:         serveCmd.RunE,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (overrides LODGE_CONFIG)")

	cmd.AddCommand(serveCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			logger := logging.New(os.Stdout, cfg.LogLevel)
			store, err := openMigratedStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			logger.Info("database schema is up to date", "db_driver", cfg.DBDriver)
			return store.Close()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lodge version %s (build: %s)\n", Version, BuildTime)
		},
	})

	return cmd
}
