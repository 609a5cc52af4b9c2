//go:build windows
// +build windows

package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/lxn/win"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func defaultPlatform() platform {
	p := platform{
		mixer:     newWASAPIMixer,
		autostart: func() Autostart { return newRegistryAutostart(appName) },
		acquire:   acquireSingleInstance,
	}
	p.runTray = func(cfg Config) error { return runTray(p, cfg) }
	return p
}

func messageBox(text string, icon uint32) {
	t, _ := syscall.UTF16PtrFromString(text)
	c, _ := syscall.UTF16PtrFromString(appName)
	win.MessageBox(0, t, c, win.MB_OK|icon)
}

func instanceAlert(text string, fatal bool) {
	icon := uint32(win.MB_ICONINFORMATION)
	if fatal {
		icon = win.MB_ICONERROR
	}
	messageBox(text, icon)
}

// runTray is the long-running entry point: one instance, one tray icon, one
// polling goroutine. It returns when the user picks Exit or the process is
// interrupted.
func runTray(p platform, cfg Config) error {
	release, proceed, err := claimInstance(p.acquire, singleInstanceMutex, instanceAlert)
	if err != nil {
		logStartupFailure(cfg, err)
		return err
	}
	if !proceed {
		return nil
	}
	defer release()

	log, logCloser, err := setupLogging(cfg)
	if err != nil {
		log = consoleLogger(cfg.Debug)
		log.Warn().Err(err).Msg("file logging unavailable")
	}
	defer logCloser.Close()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	tray, err := newTrayWindow(log)
	if err != nil {
		log.Error().Err(err).Msg("tray setup failed")
		messageBox("Failed to create the tray icon: "+err.Error(), win.MB_ICONERROR)
		return err
	}
	defer tray.destroy()

	var notifier Notifier = tray
	if cfg.Notifier == notifierToast {
		notifier = newToastNotifier(func(err error) {
			log.Warn().Err(err).Msg("toast notification failed")
		})
	}

	app := NewApp(NewSettingsStore(cfg.SettingsPath, log), p.autostart(), notifier, log)
	app.SetStatusDisplay(tray)
	app.OnQuit(func() { win.PostQuitMessage(0) })
	tray.attach(app)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	go func() {
		<-ctx.Done()
		tray.close()
	}()

	reg := prometheus.NewRegistry()
	balancer := NewBalancer(p.mixer(), float32(cfg.Tolerance), NewMetrics(reg), log)
	balancer.OnCorrection = app.HandleCorrection
	loopDone := NewBalancerLoop(balancer, cfg.Interval, log).Start(ctx)

	var serverDone <-chan struct{}
	if cfg.Listen != "" {
		serverDone, err = newStatusServer(app, reg, log).serve(ctx, cfg.Listen)
		if err != nil {
			log.Error().Err(err).Str("addr", cfg.Listen).Msg("status server not started")
		}
	}

	log.Info().
		Dur("interval", cfg.Interval).
		Float64("tolerance", cfg.Tolerance).
		Str("notifier", cfg.Notifier).
		Msg("running")
	tray.run()

	shutdown(log, cancel, loopDone, serverDone)
	return nil
}

func shutdown(log zerolog.Logger, cancel context.CancelFunc, waits ...<-chan struct{}) {
	log.Info().Msg("shutting down")
	cancel()
	for _, ch := range waits {
		if ch != nil {
			<-ch
		}
	}
	log.Info().Msg("=== VolumeSyncer stopped ===")
}
