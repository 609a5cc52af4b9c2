package main

const appName = "VolumeSyncer"

// Autostart manages the run-at-login registration of this executable. The OS
// is the source of truth; implementations never cache the state.
type Autostart interface {
	IsEnabled() (bool, error)
	Enable() error
	Disable() error
}
