package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/mindwave/internal/config"
	"github.com/san-kum/mindwave/internal/logging"
	"github.com/san-kum/mindwave/internal/storage"
	"github.com/san-kum/mindwave/internal/viz"
)

var (
	configFile string
	envFile    string
	logLevel   string
	logFile    string
	userFlag   string

	cfg      *config.Config
	logger   *log.Logger
	closeLog func() error
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "mindwave",
		Short:             "relaxation games, mood tracking and a supportive chat",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if closeLog != nil {
				return closeLog()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return playGames(cmd.Context(), "")
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with overrides")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "user id for sessions and moods")

	rootCmd.AddCommand(simCommands()...)
	rootCmd.AddCommand(wellbeingCommands()...)
	rootCmd.AddCommand(serveCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// setup loads the config file, then the environment, then flags, each
// overriding the last.
func setup(cmd *cobra.Command, args []string) error {
	cfg = config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	cfg.ApplyEnv(config.LoadEnv(envFile))

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if cmd.Flags().Changed("log-file") {
		cfg.Log.File = logFile
	}
	if cmd.Flags().Changed("user") {
		cfg.UserID = userFlag
	}

	var err error
	logger, closeLog, err = logging.Open(cfg.Log)
	if err != nil {
		return err
	}
	viz.SetTheme(cfg.Display.Theme)
	logger.Debug("config loaded", "game", cfg.Game, "store", cfg.Store.Driver)
	return nil
}

func openStore(ctx context.Context) (storage.Store, error) {
	st, err := storage.Open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func requireUser() (string, error) {
	if cfg.UserID == "" {
		return "", fmt.Errorf("no user: pass --user or set MINDWAVE_USER")
	}
	return cfg.UserID, nil
}
