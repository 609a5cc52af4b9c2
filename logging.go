package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

const logFileName = "volumesyncer.log"

// resolveLogDir picks the log directory: flag, then environment (already
// folded into cfg.LogPath), then the per-OS default.
func resolveLogDir(cfgPath string) (string, error) {
	if cfgPath != "" {
		if filepath.IsAbs(cfgPath) {
			return cfgPath, nil
		}
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return filepath.Join(wd, cfgPath), nil
	}
	return defaultLogDir()
}

// setupLogging opens a fresh log file and returns a logger writing to it.
// In debug mode output is also written to stderr. The returned closer must
// be called on exit.
func setupLogging(cfg Config) (zerolog.Logger, io.Closer, error) {
	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	dir, err := resolveLogDir(cfg.LogPath)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("resolve log dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("create log dir: %w", err)
	}

	path := filepath.Join(dir, logFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("open log file: %w", err)
	}

	var out io.Writer = zerolog.ConsoleWriter{
		Out:        f,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	if cfg.Debug {
		out = zerolog.MultiLevelWriter(out, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "15:04:05",
		})
	}

	log := zerolog.New(out).With().Timestamp().Int("pid", os.Getpid()).Logger()
	log.Info().Str("version", version).Str("path", path).Msg("=== VolumeSyncer started ===")
	return log, f, nil
}

// logStartupFailure records an error that stops the process before the
// regular logger exists. It falls back to stderr when the file cannot be
// opened.
func logStartupFailure(cfg Config, err error) {
	log, closer, logErr := setupLogging(cfg)
	if logErr != nil {
		log = consoleLogger(cfg.Debug)
		log.Warn().Err(logErr).Msg("file logging unavailable")
	}
	defer closer.Close()
	log.Error().Err(err).Msg("startup failed")
}

// consoleLogger is used by the one-shot commands, which have no log file.
func consoleLogger(debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		Level(level).
		With().Timestamp().Logger()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
