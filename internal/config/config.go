// Package config loads the watchdog configuration file.
//
// The file is JSON at a fixed per-user path and is read once at daemon
// startup; there is no reload. A missing file is a setup error the user
// must fix, so Load surfaces it as ErrMissing rather than falling back
// to defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultWaitSeconds is used when wait_between_checks_in_seconds is
	// absent from the file.
	DefaultWaitSeconds = 5

	dirName  = "zwatch"
	fileName = "config.json"

	keyWaitSeconds     = "wait_between_checks_in_seconds"
	keyNotificationBin = "notification_bin"
)

var (
	// ErrMissing means the configuration file does not exist.
	ErrMissing = errors.New("configuration file not found")

	// ErrInvalid means the file exists but cannot be used.
	ErrInvalid = errors.New("invalid configuration")
)

// Config is the validated daemon configuration.
type Config struct {
	// WaitBetweenChecks is the pause between two status evaluations.
	WaitBetweenChecks time.Duration

	// NotificationBin is the absolute path of the notification command,
	// with any leading ~ already expanded.
	NotificationBin string
}

// fileConfig mirrors the JSON document.
type fileConfig struct {
	WaitSeconds     int    `mapstructure:"wait_between_checks_in_seconds"`
	NotificationBin string `mapstructure:"notification_bin"`
}

// Path returns the fixed location of the configuration file,
// e.g. ~/.config/zwatch/config.json.
func Path() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config dir: %w", err)
	}
	return filepath.Join(base, dirName, fileName), nil
}

// Load reads the configuration from its fixed path.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads and validates the configuration file at path.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, path)
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalid, path, err)
	}

	var raw fileConfig
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrInvalid, path, err)
	}

	if err := validate(raw); err != nil {
		return nil, err
	}

	return &Config{
		WaitBetweenChecks: time.Duration(raw.WaitSeconds) * time.Second,
		NotificationBin:   ExpandPath(raw.NotificationBin),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyWaitSeconds, DefaultWaitSeconds)
}

func validate(raw fileConfig) error {
	if raw.WaitSeconds <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalid, keyWaitSeconds, raw.WaitSeconds)
	}
	if raw.NotificationBin == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, keyNotificationBin)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path // Return unexpanded if home unavailable
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
