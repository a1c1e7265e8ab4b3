package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/albertobarberis/addesso-synth/cmd"
	"github.com/albertobarberis/addesso-synth/config"
	"github.com/albertobarberis/addesso-synth/version"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "addesso",
	Short: "Single-voice additive synthesizer with FM",
	Long: `addesso plays a bank of sine partials whose frequencies stretch with the
tension and whose amplitudes roll off with the tilt. Partials above Nyquist
are never created. A single modulator frequency-modulates every partial.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("addesso failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides the config)")
	rootCmd.AddCommand(playCmd, renderCmd, inspectCmd, sendCmd, configCmd, versionCmd)
}

// loadConfig reads the config file and sets up logging.
func loadConfig() (config.Config, *slog.Logger, error) {
	c, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if logLevel != "" {
		if err := c.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
			return config.Config{}, nil, err
		}
	}
	return c, cmd.NewLogger(c.LogLevel), nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(c *cobra.Command, args []string) {
		fmt.Fprintln(c.OutOrStdout(), version.Long())
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the configuration in effect, as YAML",
	Long: `Print the configuration in effect: the defaults, overridden by the file
given with --config. The output is a valid configuration file.`,
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = c.OutOrStdout().Write(data)
		return err
	},
}
