//go:build !windows
// +build !windows

package main

import (
	"fmt"
	"os"
)

func defaultPlatform() platform {
	return platform{
		mixer:     func() Mixer { return unsupportedMixer{} },
		autostart: func() Autostart { return unsupportedAutostart{} },
		acquire:   func(string) (func(), error) { return nil, ErrUnsupported },
		runTray: func(Config) error {
			fmt.Fprintln(os.Stderr, "VolumeSyncer is only supported on Windows")
			return ErrUnsupported
		},
	}
}

type unsupportedMixer struct{}

func (unsupportedMixer) DefaultEndpoint() (Endpoint, error) { return nil, ErrUnsupported }

type unsupportedAutostart struct{}

func (unsupportedAutostart) IsEnabled() (bool, error) { return false, ErrUnsupported }
func (unsupportedAutostart) Enable() error            { return ErrUnsupported }
func (unsupportedAutostart) Disable() error           { return ErrUnsupported }
