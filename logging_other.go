//go:build !windows
// +build !windows

package main

import (
	"os"
	"path/filepath"
)

func defaultLogDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "volumesyncer", "logs"), nil
}
