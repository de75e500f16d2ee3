package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Present modes accepted by PresentMode.
const (
	PresentModeVSync    = "vsync"
	PresentModeUncapped = "uncapped"
)

type Config struct {
	LogLevel              string        `mapstructure:"log_level"`
	LogPretty             bool          `mapstructure:"log_pretty"`
	WindowTitle           string        `mapstructure:"window_title"`
	WindowWidth           int           `mapstructure:"window_width"`
	WindowHeight          int           `mapstructure:"window_height"`
	CaptureFPS            int           `mapstructure:"capture_fps"`
	PresentMode           string        `mapstructure:"present_mode"`
	ForceSoftwareRenderer bool          `mapstructure:"force_software_renderer"`
	Profiling             bool          `mapstructure:"profiling"`
	ProfileInterval       time.Duration `mapstructure:"profile_interval"`
	LutDir                string        `mapstructure:"lut_dir"`
	LutSize               int           `mapstructure:"lut_size"`
	DefaultLut            int           `mapstructure:"default_lut"`
	DefaultCorrection     bool          `mapstructure:"default_correction"`
	// Denylist replaces the picker's default process denylist when set.
	Denylist []string `mapstructure:"denylist"`
}

func Default() *Config {
	return &Config{
		LogLevel:        "info",
		LogPretty:       true,
		WindowTitle:     "Color Checker",
		WindowWidth:     800,
		WindowHeight:    600,
		CaptureFPS:      60,
		PresentMode:     PresentModeVSync,
		ProfileInterval: time.Second,
		LutSize:         32,
	}
}

// Load reads the config file (explicit path, or colorchecker.yaml in the user
// config dir or the working directory) and COLORCHECKER_* environment
// variables on top of Default. A missing file is not an error.
func Load(cfgFile string) (*Config, error) {
	return load(viper.GetViper(), cfgFile)
}

func load(v *viper.Viper, cfgFile string) (*Config, error) {
	cfg := Default()
	setDefaults(v, cfg)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("colorchecker")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir())
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("COLORCHECKER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every field so that env lookups and unchanged
// flag bindings fall back to Default instead of zero values.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_pretty", cfg.LogPretty)
	v.SetDefault("window_title", cfg.WindowTitle)
	v.SetDefault("window_width", cfg.WindowWidth)
	v.SetDefault("window_height", cfg.WindowHeight)
	v.SetDefault("capture_fps", cfg.CaptureFPS)
	v.SetDefault("present_mode", cfg.PresentMode)
	v.SetDefault("force_software_renderer", cfg.ForceSoftwareRenderer)
	v.SetDefault("profiling", cfg.Profiling)
	v.SetDefault("profile_interval", cfg.ProfileInterval)
	v.SetDefault("lut_dir", cfg.LutDir)
	v.SetDefault("lut_size", cfg.LutSize)
	v.SetDefault("default_lut", cfg.DefaultLut)
	v.SetDefault("default_correction", cfg.DefaultCorrection)
	v.SetDefault("denylist", cfg.Denylist)
}

// Validate rejects values the viewer cannot run with.
func (c *Config) Validate() error {
	if c.CaptureFPS <= 0 {
		return fmt.Errorf("capture_fps must be positive, got %d", c.CaptureFPS)
	}
	if c.ProfileInterval <= 0 {
		return fmt.Errorf("profile_interval must be positive, got %s", c.ProfileInterval)
	}
	if c.LutSize < 2 || c.LutSize > 256 {
		return fmt.Errorf("lut_size must be in [2, 256], got %d", c.LutSize)
	}
	if c.DefaultLut < 0 || c.DefaultLut > 3 {
		return fmt.Errorf("default_lut must be in [0, 3], got %d", c.DefaultLut)
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.WindowWidth, c.WindowHeight)
	}
	switch strings.ToLower(c.PresentMode) {
	case PresentModeVSync, PresentModeUncapped:
	default:
		return fmt.Errorf("unknown present_mode %q", c.PresentMode)
	}
	return nil
}

// VSync reports whether presentation should wait for vertical blank.
func (c *Config) VSync() bool {
	return strings.ToLower(c.PresentMode) != PresentModeUncapped
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "colorchecker")
}
