// Package config loads the application configuration from the standard
// config directory, with viper defaults for every setting so a missing
// file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Editor EditorConfig `mapstructure:"editor"`
	Theme  ThemeConfig  `mapstructure:"theme"`
	Render RenderConfig `mapstructure:"render"`
}

// EditorConfig holds the live-preview timings and behavior.
type EditorConfig struct {
	DebounceMs       int    `mapstructure:"debounce_ms"`        // content-change notification debounce
	RevealMs         int    `mapstructure:"reveal_ms"`          // syntax-marker reveal window
	Mode             string `mapstructure:"mode"`               // "full" (syntax tree) or "simple" (regex)
	CheckboxHitWidth int    `mapstructure:"checkbox_hit_width"` // extra columns counted as checkbox hits
	ReadOnly         bool   `mapstructure:"read_only"`
}

// Debounce returns the debounce as a duration.
func (e EditorConfig) Debounce() time.Duration { return time.Duration(e.DebounceMs) * time.Millisecond }

// Reveal returns the reveal window as a duration.
func (e EditorConfig) Reveal() time.Duration { return time.Duration(e.RevealMs) * time.Millisecond }

// ThemeConfig allows customization of document colors.
// Colors can be ANSI color numbers (0-255) or hex codes (#RRGGBB).
type ThemeConfig struct {
	Heading    string `mapstructure:"heading"`      // heading text
	Quote      string `mapstructure:"quote"`        // blockquote text
	Marker     string `mapstructure:"marker"`       // bullets, task brackets
	Link       string `mapstructure:"link"`         // link labels
	CodeBg     string `mapstructure:"code_bg"`      // fence background
	Muted      string `mapstructure:"muted"`        // separators, rules
	Text       string `mapstructure:"text"`         // plain text
	ReadOnlyBg string `mapstructure:"read_only_bg"` // read-only tint
}

// RenderConfig configures the HTML/terminal render command.
type RenderConfig struct {
	Width int  `mapstructure:"width"` // terminal render width, 0 = detect
	Page  bool `mapstructure:"page"`  // wrap HTML output in a full page
}

func Load() (*Config, error) {
	configPath, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config dir: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath(".")

	viper.SetDefault("editor.debounce_ms", 250)
	viper.SetDefault("editor.reveal_ms", 2000)
	viper.SetDefault("editor.mode", "full")
	viper.SetDefault("editor.checkbox_hit_width", 3)
	viper.SetDefault("render.width", 0)
	viper.SetDefault("render.page", false)

	// Config file is optional.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// ApplyOverrides applies command-line flag overrides.
func (c *Config) ApplyOverrides(mode string, readOnly bool) {
	if mode != "" {
		c.Editor.Mode = mode
	}
	if readOnly {
		c.Editor.ReadOnly = true
	}
}

// GetConfigDir returns the directory the config file is read from.
func GetConfigDir() (string, error) {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, "livemark"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "livemark"), nil
}

// GetConfigPath returns the path where the config file should live.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}
