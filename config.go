package main

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	envInterval  = "VOLUMESYNCER_INTERVAL"
	envTolerance = "VOLUMESYNCER_TOLERANCE"
	envSettings  = "VOLUMESYNCER_SETTINGS"
	envLogPath   = "VOLUMESYNCER_LOG_PATH"
	envNotifier  = "VOLUMESYNCER_NOTIFIER"
	envListen    = "VOLUMESYNCER_LISTEN"

	minPollInterval = 500 * time.Millisecond
)

// Config holds the runtime options. Flags override environment variables,
// which override the defaults.
type Config struct {
	Interval     time.Duration
	Tolerance    float64
	SettingsPath string
	LogPath      string
	Notifier     string
	Listen       string
	Debug        bool
}

func DefaultConfig() Config {
	return Config{
		Interval:     defaultPollInterval,
		Tolerance:    defaultTolerance,
		SettingsPath: defaultSettingsFile,
		Notifier:     notifierBalloon,
	}
}

// LoadConfig returns the defaults with environment overrides applied.
func LoadConfig(getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := DefaultConfig()

	if v := getenv(envInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", envInterval, err)
		}
		cfg.Interval = d
	}
	if v := getenv(envTolerance); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", envTolerance, err)
		}
		cfg.Tolerance = f
	}
	if v := getenv(envSettings); v != "" {
		cfg.SettingsPath = v
	}
	if v := getenv(envLogPath); v != "" {
		cfg.LogPath = v
	}
	if v := getenv(envNotifier); v != "" {
		cfg.Notifier = v
	}
	if v := getenv(envListen); v != "" {
		cfg.Listen = v
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Interval < minPollInterval {
		return fmt.Errorf("interval %s is below the %s minimum", c.Interval, minPollInterval)
	}
	if c.Tolerance < 0 || c.Tolerance >= 1 {
		return fmt.Errorf("tolerance %g must be in [0, 1)", c.Tolerance)
	}
	switch c.Notifier {
	case notifierBalloon, notifierToast:
	default:
		return fmt.Errorf("unknown notifier %q (want %q or %q)", c.Notifier, notifierBalloon, notifierToast)
	}
	if c.SettingsPath == "" {
		return fmt.Errorf("settings path is empty")
	}
	return nil
}
