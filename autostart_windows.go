//go:build windows
// +build windows

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows/registry"
)

const runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`

// registryAutostart registers the executable under the current user's Run
// key.
type registryAutostart struct {
	valueName  string
	executable func() (string, error)
}

func newRegistryAutostart(valueName string) *registryAutostart {
	return &registryAutostart{valueName: valueName, executable: os.Executable}
}

func (r *registryAutostart) IsEnabled() (bool, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("open Run key: %w", err)
	}
	defer key.Close()

	_, _, err = key.GetValue(r.valueName, nil)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("query %s: %w", r.valueName, err)
	}
	return true, nil
}

// Enable points the registration at the running executable, replacing any
// earlier value.
func (r *registryAutostart) Enable() error {
	exe, err := r.executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	exe, err = filepath.Abs(exe)
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	key, _, err := registry.CreateKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open Run key: %w", err)
	}
	defer key.Close()

	if err := key.SetStringValue(r.valueName, `"`+exe+`"`); err != nil {
		return fmt.Errorf("set %s: %w", r.valueName, err)
	}
	return nil
}

func (r *registryAutostart) Disable() error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open Run key: %w", err)
	}
	defer key.Close()

	if err := key.DeleteValue(r.valueName); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", r.valueName, err)
	}
	return nil
}
