// VolumeSyncer keeps the left and right channels of the default Windows audio
// output at the same level. It lives in the notification area and polls the
// endpoint every few seconds.
//
// Build for Windows:
//
//	GOOS=windows go build -ldflags "-H=windowsgui" .
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

// platform bundles the OS-specific entry points so commands can be exercised
// with fakes.
type platform struct {
	mixer     func() Mixer
	autostart func() Autostart
	acquire   func(name string) (release func(), err error)
	runTray   func(Config) error
}

func main() {
	if err := newRootCmd(defaultPlatform()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(p platform) *cobra.Command {
	cfg, envErr := LoadConfig(os.Getenv)

	root := &cobra.Command{
		Use:           "volumesyncer",
		Short:         "Keep stereo channels of the default audio output balanced",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return envErr
			}
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return p.runTray(cfg)
		},
	}

	pf := root.PersistentFlags()
	pf.DurationVar(&cfg.Interval, "interval", cfg.Interval, "Polling interval")
	pf.Float64Var(&cfg.Tolerance, "tolerance", cfg.Tolerance, "Maximum left/right difference left untouched")
	pf.StringVar(&cfg.SettingsPath, "settings", cfg.SettingsPath, "Settings file path")
	pf.StringVar(&cfg.LogPath, "log-path", cfg.LogPath, "Log directory (default: per-user app data)")
	pf.StringVar(&cfg.Notifier, "notifier", cfg.Notifier, "Notification backend: balloon or toast")
	pf.StringVar(&cfg.Listen, "listen", cfg.Listen, "Serve /status and /metrics on this loopback address (disabled when empty)")
	pf.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable debug logging")

	root.AddCommand(newBalanceCmd(p, &cfg), newAutostartCmd(p))
	return root
}

func newBalanceCmd(p platform, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Run a single balancing pass and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := NewBalancer(p.mixer(), float32(cfg.Tolerance), nil, consoleLogger(cfg.Debug))
			var applied Correction
			b.OnCorrection = func(c Correction) { applied = c }

			out := cmd.OutOrStdout()
			if !b.ReadAndBalance() {
				fmt.Fprintln(out, "no correction applied")
				return nil
			}
			fmt.Fprintf(out, "balanced: left %s, right %s -> %s\n",
				levelPercent(applied.Left), levelPercent(applied.Right), levelPercent(applied.Level))
			return nil
		},
	}
}

func newAutostartCmd(p platform) *cobra.Command {
	status := func(cmd *cobra.Command, a Autostart) error {
		on, err := a.IsEnabled()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), enabledLabel("Autostart", on))
		return nil
	}

	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Show or change the run-at-login registration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return status(cmd, p.autostart())
		},
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show whether autostart is registered",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return status(cmd, p.autostart())
			},
		},
		&cobra.Command{
			Use:   "enable",
			Short: "Start VolumeSyncer at login",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a := p.autostart()
				if err := a.Enable(); err != nil {
					return fmt.Errorf("enable autostart: %w", err)
				}
				return status(cmd, a)
			},
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Stop starting VolumeSyncer at login",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a := p.autostart()
				if err := a.Disable(); err != nil {
					return fmt.Errorf("disable autostart: %w", err)
				}
				return status(cmd, a)
			},
		},
	)
	return cmd
}
