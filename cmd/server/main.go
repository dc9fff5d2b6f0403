package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/translachat-server/internal/app"
	"github.com/vovakirdan/translachat-server/internal/config"
	applog "github.com/vovakirdan/translachat-server/internal/log"
)

type rootFlags struct {
	configPath string
	addr       string
	logLevel   string
	dbPath     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "translachat-server",
		Short:         "Real-time multilingual chat server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to config file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "SQLite database path")
	root.Flags().StringVar(&flags.addr, "addr", "", "HTTP listen address")

	root.AddCommand(newMigrateCmd(flags), newRoomsCmd(flags))
	return root
}

// loadConfig resolves configuration and applies command line overrides on top.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	bootLog := applog.New("info")
	cfg, path, err := config.Load(bootLog, flags.configPath)
	if err != nil {
		return nil, err
	}
	cfg.UpdateFrom(config.Config{
		Addr:         flags.addr,
		LogLevel:     flags.logLevel,
		DatabasePath: flags.dbPath,
	})
	bootLog.Debug().Str("path", path).Msg("config loaded")
	return &cfg, nil
}

func runServe(ctx context.Context, flags *rootFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	logger := applog.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	logger.Info().Str("addr", cfg.Addr).Msg("starting translachat server")
	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			st, err := app.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			applog.New(cfg.LogLevel).Info().Str("db_path", cfg.DatabasePath).Msg("schema is up to date")
			return nil
		},
	}
}
