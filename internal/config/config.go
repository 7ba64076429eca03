package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the namespace prefix for all hearsay environment variables.
const EnvPrefix = "HEARSAY_"

// Config holds all application configuration.
type Config struct {
	ListenAddr    string  `yaml:"listen_addr"`
	DBPath        string  `yaml:"db_path"`
	SpeechCommand string  `yaml:"speech_command"`
	SpeechVoice   string  `yaml:"speech_voice"`
	SpeechRate    float64 `yaml:"speech_rate"`
	NoiseLevel    float64 `yaml:"noise_level"`
	WordGap       string  `yaml:"word_gap"`

	GDriveFolderID        string `yaml:"gdrive_folder_id"`
	GoogleCredentialsFile string `yaml:"google_credentials_file"`
	GDriveSyncInterval    string `yaml:"gdrive_sync_interval"`
}

func defaults() Config {
	return Config{
		ListenAddr:            "127.0.0.1:8080",
		DBPath:                "data/hearsay.db",
		SpeechCommand:         "espeak-ng",
		SpeechRate:            0.4,
		NoiseLevel:            0,
		WordGap:               "180ms",
		GoogleCredentialsFile: "./service-account.json",
		GDriveSyncInterval:    "5m",
	}
}

// Load reads configuration from a YAML file (if it exists), applies
// environment variable overrides, and validates the result. It returns the
// config, any validation warnings, and an error if the file exists but
// cannot be read or parsed.
func Load(path string) (Config, []string, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, nil, fmt.Errorf("read config file: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	applyEnvOverrides(&cfg)

	warnings := validate(&cfg)
	return cfg, warnings, nil
}

// ParsedWordGap returns WordGap as a time.Duration, falling back to 180ms
// if the value is invalid.
func (c *Config) ParsedWordGap() time.Duration {
	d, err := time.ParseDuration(c.WordGap)
	if err != nil || d < 0 {
		return 180 * time.Millisecond
	}
	return d
}

// ParsedSyncInterval returns GDriveSyncInterval as a time.Duration,
// falling back to 5m if the value is invalid.
func (c *Config) ParsedSyncInterval() time.Duration {
	d, err := time.ParseDuration(c.GDriveSyncInterval)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(EnvPrefix + "DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvPrefix + "SPEECH_COMMAND"); v != "" {
		cfg.SpeechCommand = v
	}
	if v := os.Getenv(EnvPrefix + "SPEECH_VOICE"); v != "" {
		cfg.SpeechVoice = v
	}
	if v := os.Getenv(EnvPrefix + "SPEECH_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			cfg.SpeechRate = rate
		}
	}
	if v := os.Getenv(EnvPrefix + "NOISE_LEVEL"); v != "" {
		if level, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			cfg.NoiseLevel = level
		}
	}
	if v := os.Getenv(EnvPrefix + "WORD_GAP"); v != "" {
		cfg.WordGap = v
	}
	if v := os.Getenv(EnvPrefix + "GDRIVE_FOLDER_ID"); v != "" {
		cfg.GDriveFolderID = v
	}
	if v := os.Getenv(EnvPrefix + "GOOGLE_CREDENTIALS_FILE"); v != "" {
		cfg.GoogleCredentialsFile = v
	}
	if v := os.Getenv(EnvPrefix + "GDRIVE_SYNC_INTERVAL"); v != "" {
		cfg.GDriveSyncInterval = v
	}
}

func validate(cfg *Config) []string {
	var warnings []string

	if cfg.SpeechRate < 0 || cfg.SpeechRate > 1 {
		warnings = append(warnings, fmt.Sprintf("speech_rate %v outside [0, 1] — using default 0.4.", cfg.SpeechRate))
		cfg.SpeechRate = 0.4
	}
	if cfg.NoiseLevel < 0 || cfg.NoiseLevel > 1 {
		warnings = append(warnings, fmt.Sprintf("noise_level %v outside [0, 1] — using default 0.", cfg.NoiseLevel))
		cfg.NoiseLevel = 0
	}
	if _, err := time.ParseDuration(cfg.WordGap); err != nil {
		warnings = append(warnings, fmt.Sprintf("Invalid word_gap %q — using default 180ms.", cfg.WordGap))
	}
	if _, err := time.ParseDuration(cfg.GDriveSyncInterval); err != nil {
		warnings = append(warnings, fmt.Sprintf("Invalid gdrive_sync_interval %q — using default 5m.", cfg.GDriveSyncInterval))
	}
	if cfg.GDriveFolderID != "" {
		if _, err := os.Stat(cfg.GoogleCredentialsFile); err != nil {
			warnings = append(warnings, fmt.Sprintf("Drive sync configured but credentials file %q is unreadable — sync is disabled.", cfg.GoogleCredentialsFile))
		}
	}

	return warnings
}
