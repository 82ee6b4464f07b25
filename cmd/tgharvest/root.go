package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tgharvest/pkg/auth"
	"tgharvest/pkg/config"
	"tgharvest/pkg/logger"
	"tgharvest/pkg/ratelimit"
	"tgharvest/pkg/telegram"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string

	// Loaded in PersistentPreRunE, available to every command.
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tgharvest",
	Short: "Harvest photos and videos from Telegram channels",
	Long: `tgharvest scans the message history of Telegram channels you are a
member of, downloads a requested number of photos and videos from each,
and can republish everything it downloads to another channel.

Features:
  - Counts available media before downloading anything
  - Concurrent downloads with a configurable worker bound
  - Skips videos longer than the configured duration limit
  - Never downloads the same file twice across runs
  - Secure credential storage using the system keychain`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level = logLevel
		}
		return logger.Initialize(&cfg.Logging)
	},
}

// Execute runs the root command with a signal-aware context so Ctrl+C
// tears the MTProto connection down cleanly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is the user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.SetVersionTemplate(`tgharvest {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadCredentials pulls connection credentials from the secure store
// chain, falling back to the telegram section of the config file.
func loadCredentials() (*auth.Credentials, error) {
	if manager, err := auth.NewManager(); err == nil {
		if creds, err := manager.Load(); err == nil {
			return creds, nil
		}
	}

	creds := &auth.Credentials{
		APIID:   cfg.Telegram.APIID,
		APIHash: cfg.Telegram.APIHash,
		Phone:   cfg.Telegram.Phone,
	}
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("no stored credentials and config is incomplete: %w (run 'tgharvest auth login')", err)
	}
	return creds, nil
}

// newTelegramClient builds a client from stored credentials and the
// configured rate limit.
func newTelegramClient() (*telegram.Client, error) {
	creds, err := loadCredentials()
	if err != nil {
		return nil, err
	}
	limiter := ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, time.Minute)
	return telegram.NewClient(creds, cfg.SessionPath(), limiter, logger.GetLogger()), nil
}
