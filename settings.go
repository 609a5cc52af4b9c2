package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

const defaultSettingsFile = "volume_syncer_settings.txt"

// Settings is the persisted user preference set.
type Settings struct {
	NotificationsEnabled bool
}

func DefaultSettings() Settings {
	return Settings{NotificationsEnabled: true}
}

// SettingsStore keeps Settings in a one-line text file holding 1 or 0.
type SettingsStore struct {
	path string
	log  zerolog.Logger
	mu   sync.Mutex
}

func NewSettingsStore(path string, log zerolog.Logger) *SettingsStore {
	if path == "" {
		path = defaultSettingsFile
	}
	return &SettingsStore{path: path, log: log}
}

func (s *SettingsStore) Path() string {
	return s.path
}

// Load returns the stored settings. A missing or malformed file yields the
// defaults.
func (s *SettingsStore) Load() Settings {
	settings := DefaultSettings()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Debug().Err(err).Str("path", s.path).Msg("settings unreadable, using defaults")
		}
		return settings
	}

	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return settings
	}
	enabled, err := strconv.ParseBool(fields[0])
	if err != nil {
		s.log.Debug().Str("path", s.path).Str("value", fields[0]).Msg("malformed settings value, using defaults")
		return settings
	}
	settings.NotificationsEnabled = enabled
	return settings
}

// Save overwrites the settings file.
func (s *SettingsStore) Save(settings Settings) error {
	v := "0"
	if settings.NotificationsEnabled {
		v = "1"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, []byte(v+"\n"), 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
