package commands

import (
	"fmt"
	"os"

	"github.com/Carmen-Shannon/colorchecker/internal/config"
	"github.com/Carmen-Shannon/colorchecker/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "colorchecker",
		Short: "ColorChecker - live color vision deficiency preview of any window",
		Long: `ColorChecker mirrors one application window into its own window and renders it
through a 3D lookup table that emulates protanopia, deuteranopia or tritanopia,
optionally applying a daltonization correction LUT first.

Hotkeys while running:
  F1..F3  emulate protanopia, deuteranopia, tritanopia
  F4      passthrough
  F5      toggle the correction LUT
  Esc     quit`,
		Example: `  # Pick a window interactively
  colorchecker

  # Preview window 0x3a00007 as deuteranopia with correction
  colorchecker --window 0x3a00007 --lut 1 --correct

  # Use LUT images exported earlier
  colorchecker --lut-dir ./luts`,
		SilenceUsage: true,
		RunE:         runViewer,
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/colorchecker/colorchecker.yaml)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.StringSlice("denylist", nil, "process names hidden from the window list (replaces the default list)")

	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("denylist", flags.Lookup("denylist"))
}

// loadConfig reads the config file and flags and initializes logging from the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogPretty)
	return cfg, nil
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
