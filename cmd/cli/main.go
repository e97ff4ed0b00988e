package main

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/cryptotax/internal/infrastructure/config"
	"github.com/iho/cryptotax/internal/infrastructure/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootOptions are the flags shared by every command.
type rootOptions struct {
	baseURL  string
	timeout  time.Duration
	envFile  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "cryptotax",
		Short:         "Crypto capital gains calculator",
		Long:          `Runs exchange operation logs through a FIFO ledger and reports capital gains per financial year.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the cryptotax API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Optional env file read before the environment")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level, overrides LOG_LEVEL")

	rootCmd.AddCommand(
		newCalcCmd(opts),
		newCoinspotCmd(opts),
		newReportCmd(opts),
		newMigrateCmd(opts),
	)

	return rootCmd
}

// loadConfig reads the configuration, registers the asset table and
// installs a console logger on stderr.
func (o *rootOptions) loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load configuration: %w", err)
	}

	level := cfg.LogLevel
	if o.logLevel != "" {
		level = o.logLevel
	}
	log := logger.New(logger.Config{Level: level, Format: "console", Output: os.Stderr})
	logger.Install(log)

	if err := cfg.RegisterAssets(); err != nil {
		return nil, log, err
	}

	return cfg, log, nil
}
