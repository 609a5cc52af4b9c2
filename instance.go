package main

import (
	"errors"
	"fmt"
)

// claimInstance acquires the singleton and decides how startup continues.
// When another instance runs, alert is told and proceed is false with a nil
// error, so the process exits 0. Any other failure is returned.
func claimInstance(acquire func(string) (func(), error), name string, alert func(text string, fatal bool)) (release func(), proceed bool, err error) {
	release, err = acquire(name)
	if errors.Is(err, ErrAlreadyRunning) {
		alert(appName+" is already running.", false)
		return nil, false, nil
	}
	if err != nil {
		alert("Failed to start "+appName+": "+err.Error(), true)
		return nil, false, fmt.Errorf("single instance: %w", err)
	}
	return release, true, nil
}
