//go:build windows
// +build windows

package main

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

const singleInstanceMutex = `Global\VolumeSyncerMutex`

// acquireSingleInstance creates the named mutex. The returned function
// releases it and must be called on exit.
func acquireSingleInstance(name string) (func(), error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("mutex name: %w", err)
	}

	handle, err := windows.CreateMutex(nil, false, namePtr)
	if handle == 0 {
		return nil, fmt.Errorf("CreateMutex: %w", err)
	}
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		windows.CloseHandle(handle)
		return nil, ErrAlreadyRunning
	}

	return func() { windows.CloseHandle(handle) }, nil
}
