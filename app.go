package main

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Menu command identifiers. They double as Win32 menu item IDs.
const (
	cmdExit                = 101
	cmdToggleNotifications = 102
	cmdToggleAutostart     = 103
)

// MenuItem is one entry of the tray context menu.
type MenuItem struct {
	ID        int
	Label     string
	Checked   bool
	Checkable bool
	Separator bool
}

// StatusDisplay shows passive state, such as the tray tooltip.
type StatusDisplay interface {
	SetTooltip(text string)
}

// App is the process state shared by the tray window and the balancer loop.
type App struct {
	settings  *SettingsStore
	autostart Autostart
	notifier  Notifier
	history   *History
	log       zerolog.Logger

	status StatusDisplay
	quit   func()

	notificationsEnabled atomic.Bool
}

func NewApp(settings *SettingsStore, autostart Autostart, notifier Notifier, log zerolog.Logger) *App {
	a := &App{
		settings:  settings,
		autostart: autostart,
		notifier:  notifier,
		history:   NewHistory(maxHistoryEvents),
		log:       log.With().Str("component", "app").Logger(),
	}
	s := settings.Load()
	a.notificationsEnabled.Store(s.NotificationsEnabled)
	a.log.Info().
		Bool("notifications", s.NotificationsEnabled).
		Str("settings", settings.Path()).
		Msg("settings loaded")
	return a
}

// SetStatusDisplay wires the tooltip sink. It must be called before the
// balancer loop starts.
func (a *App) SetStatusDisplay(s StatusDisplay) { a.status = s }

// OnQuit registers the action run by the Exit menu command.
func (a *App) OnQuit(fn func()) { a.quit = fn }

func (a *App) NotificationsEnabled() bool {
	return a.notificationsEnabled.Load()
}

func (a *App) History() *History { return a.history }

// AutostartEnabled queries the OS registration. Errors read as disabled.
func (a *App) AutostartEnabled() bool {
	on, err := a.autostart.IsEnabled()
	if err != nil {
		a.log.Warn().Err(err).Msg("autostart query failed")
		return false
	}
	return on
}

// HandleCorrection records a correction and tells the user about it when
// notifications are on. It runs on the polling goroutine.
func (a *App) HandleCorrection(c Correction) {
	a.history.Add(c)
	if a.status != nil {
		a.status.SetTooltip(formatTooltip(&c))
	}
	if a.NotificationsEnabled() {
		a.notifier.Notify(appName, correctionMessage(c.Level))
	}
}

// ToggleNotifications flips the notifications flag, persists it best-effort
// and confirms the new state.
func (a *App) ToggleNotifications() bool {
	var enabled bool
	for {
		old := a.notificationsEnabled.Load()
		if a.notificationsEnabled.CompareAndSwap(old, !old) {
			enabled = !old
			break
		}
	}

	if err := a.settings.Save(Settings{NotificationsEnabled: enabled}); err != nil {
		a.log.Warn().Err(err).Msg("settings not saved")
	}
	a.log.Info().Bool("enabled", enabled).Msg("notifications toggled")
	a.notifier.Notify(appName, notificationsToggledMessage(enabled))
	return enabled
}

// ToggleAutostart inverts the current OS registration. The returned value is
// the registration state after the attempt, re-read from the OS.
func (a *App) ToggleAutostart() (bool, error) {
	current, err := a.autostart.IsEnabled()
	if err != nil {
		a.log.Warn().Err(err).Msg("autostart query failed, assuming disabled")
		current = false
	}

	if current {
		err = a.autostart.Disable()
	} else {
		err = a.autostart.Enable()
	}
	if err != nil {
		a.log.Error().Err(err).Bool("enable", !current).Msg("autostart change failed")
		if a.NotificationsEnabled() {
			a.notifier.Notify(appName, "Could not change autostart")
		}
		return a.AutostartEnabled(), err
	}

	a.log.Info().Bool("enabled", !current).Msg("autostart toggled")
	return !current, nil
}

// Menu builds the context menu from live state. The autostart entry is
// queried from the OS every time.
func (a *App) Menu() []MenuItem {
	notifications := a.NotificationsEnabled()
	autostart := a.AutostartEnabled()
	return []MenuItem{
		{
			ID:        cmdToggleNotifications,
			Label:     enabledLabel("Notifications", notifications),
			Checked:   notifications,
			Checkable: true,
		},
		{
			ID:        cmdToggleAutostart,
			Label:     enabledLabel("Autostart", autostart),
			Checked:   autostart,
			Checkable: true,
		},
		{Separator: true},
		{ID: cmdExit, Label: "Exit"},
	}
}

// HandleCommand dispatches a menu selection. Unknown IDs are ignored.
func (a *App) HandleCommand(id int) {
	switch id {
	case cmdExit:
		a.log.Info().Msg("exit requested")
		if a.quit != nil {
			a.quit()
		}
	case cmdToggleNotifications:
		a.ToggleNotifications()
	case cmdToggleAutostart:
		_, _ = a.ToggleAutostart()
	}
}

func enabledLabel(name string, on bool) string {
	if on {
		return name + " Enabled"
	}
	return name + " Disabled"
}
