// Package config loads application settings from an optional YAML file
// and VOICE_TUI_* environment variables, with working defaults for a
// machine that has nothing configured.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// AudioConfig mirrors the recording options.
type AudioConfig struct {
	SampleRate         int    `mapstructure:"sample_rate"`
	Channels           int    `mapstructure:"channels"`
	BitDepth           int    `mapstructure:"bit_depth"`
	MaxDurationSeconds int    `mapstructure:"max_duration_seconds"`
	Device             string `mapstructure:"device"`
	// Backend selects the capture implementation: "ffmpeg" or
	// "synthetic".
	Backend string `mapstructure:"backend"`
}

// ModelConfig selects the transcription model.
type ModelConfig struct {
	Name string `mapstructure:"name"`
	Dir  string `mapstructure:"dir"`
}

// WhisperConfig locates the inference binary.
type WhisperConfig struct {
	BinPath string `mapstructure:"bin_path"`
	// Backend selects the inference implementation: "whisper" or
	// "synthetic".
	Backend  string `mapstructure:"backend"`
	Language string `mapstructure:"language"`
}

// Config is the full application configuration.
type Config struct {
	Audio       AudioConfig   `mapstructure:"audio"`
	Model       ModelConfig   `mapstructure:"model"`
	Whisper     WhisperConfig `mapstructure:"whisper"`
	HistoryPath string        `mapstructure:"history_path"`
	ExportDir   string        `mapstructure:"export_dir"`
	LogPath     string        `mapstructure:"log_path"`
	Debug       bool          `mapstructure:"debug"`
}

// Root returns the application data directory.
func Root() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".voice-tui")
}

// Load reads the configuration. A missing config file is not an error;
// defaults and environment variables still apply.
func Load() (*Config, error) {
	v := viper.New()

	root := Root()
	v.SetDefault("audio.sample_rate", 16000)
	v.SetDefault("audio.channels", 1)
	v.SetDefault("audio.bit_depth", 16)
	v.SetDefault("audio.max_duration_seconds", 60)
	v.SetDefault("audio.backend", "ffmpeg")
	v.SetDefault("model.name", "base.en")
	v.SetDefault("model.dir", filepath.Join(root, "models"))
	v.SetDefault("whisper.backend", "whisper")
	v.SetDefault("history_path", filepath.Join(root, "history.sqlite"))
	v.SetDefault("export_dir", ".")
	v.SetDefault("log_path", filepath.Join(root, "voice-tui.log"))
	v.SetDefault("debug", false)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(root)
	v.AddConfigPath(".")
	v.SetEnvPrefix("VOICE_TUI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
