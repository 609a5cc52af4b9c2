//go:build windows && !amd64 && !386
// +build windows,!amd64,!386

package main

// The arm64 syscall trampoline does not load float registers, so
// SetChannelVolumeLevelScalar cannot receive its level argument.
type unsupportedMixer struct{}

func newWASAPIMixer() Mixer { return unsupportedMixer{} }

func (unsupportedMixer) DefaultEndpoint() (Endpoint, error) { return nil, ErrUnsupported }
