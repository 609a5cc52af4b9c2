//go:build windows
// +build windows

package main

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows/registry"
)

func TestRegistryAutostartRoundTrip(t *testing.T) {
	name := fmt.Sprintf("VolumeSyncerTest%d", os.Getpid())
	a := newRegistryAutostart(name)
	a.executable = func() (string, error) { return `C:\Program Files\VolumeSyncer\volumesyncer.exe`, nil }
	t.Cleanup(func() { _ = a.Disable() })

	on, err := a.IsEnabled()
	require.NoError(t, err)
	require.False(t, on)

	require.NoError(t, a.Enable())
	on, err = a.IsEnabled()
	require.NoError(t, err)
	assert.True(t, on)

	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	require.NoError(t, err)
	v, _, err := key.GetStringValue(name)
	key.Close()
	require.NoError(t, err)
	assert.Equal(t, `"C:\Program Files\VolumeSyncer\volumesyncer.exe"`, v)

	// Enabling again overwrites in place.
	require.NoError(t, a.Enable())

	require.NoError(t, a.Disable())
	on, err = a.IsEnabled()
	require.NoError(t, err)
	assert.False(t, on)

	// Disabling an absent value is not an error.
	assert.NoError(t, a.Disable())
}

func TestAcquireSingleInstance(t *testing.T) {
	name := fmt.Sprintf(`Local\VolumeSyncerTest%d`, os.Getpid())

	release, err := acquireSingleInstance(name)
	require.NoError(t, err)

	_, err = acquireSingleInstance(name)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	release()

	again, err := acquireSingleInstance(name)
	require.NoError(t, err)
	again()
}

func TestDefaultPlatform(t *testing.T) {
	p := defaultPlatform()
	require.NotNil(t, p.mixer)
	require.NotNil(t, p.autostart)
	require.NotNil(t, p.acquire)
	require.NotNil(t, p.runTray)
	_, ok := p.autostart().(*registryAutostart)
	assert.True(t, ok)
}

func TestClaimInstanceWithNamedMutex(t *testing.T) {
	name := fmt.Sprintf(`Local\VolumeSyncerClaim%d`, os.Getpid())
	silent := func(string, bool) {}

	release, proceed, err := claimInstance(acquireSingleInstance, name, silent)
	require.NoError(t, err)
	require.True(t, proceed)
	defer release()

	var alerted bool
	second, proceed, err := claimInstance(acquireSingleInstance, name, func(string, bool) { alerted = true })
	assert.NoError(t, err, "a running instance is not a failure")
	assert.False(t, proceed)
	assert.Nil(t, second)
	assert.True(t, alerted)
}
