package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	leftChannel  uint32 = 0
	rightChannel uint32 = 1

	defaultTolerance = 0.01
)

// ErrNoStereo is returned when the default endpoint exposes fewer than two
// channels.
var ErrNoStereo = errors.New("endpoint is not stereo")

// Mixer resolves the current default render endpoint. Every call returns a
// fresh handle so a device swap between polls is picked up without restart.
type Mixer interface {
	DefaultEndpoint() (Endpoint, error)
}

// Endpoint is the volume control of a single render device. It is only valid
// until Close.
type Endpoint interface {
	ChannelCount() (uint32, error)
	ChannelLevel(channel uint32) (float32, error)
	SetChannelLevel(channel uint32, level float32) error
	Close() error
}

// Correction describes one balancing pass that changed the device.
type Correction struct {
	Timestamp time.Time `json:"timestamp"`
	Left      float32   `json:"left"`
	Right     float32   `json:"right"`
	Level     float32   `json:"level"`
}

// BalanceChannels applies the balancing rule: when the channels differ by
// more than tolerance both are raised to the louder one.
func BalanceChannels(left, right, tolerance float32) (float32, bool) {
	diff := left - right
	if diff < 0 {
		diff = -diff
	}
	if diff <= tolerance {
		return left, false
	}
	return max(left, right), true
}

// Balancer reads the default endpoint once per call and corrects drift.
type Balancer struct {
	mixer     Mixer
	tolerance float32
	log       zerolog.Logger
	metrics   *Metrics

	// OnCorrection is called after both channels were written.
	OnCorrection func(Correction)

	now func() time.Time
}

func NewBalancer(mixer Mixer, tolerance float32, metrics *Metrics, log zerolog.Logger) *Balancer {
	return &Balancer{
		mixer:     mixer,
		tolerance: tolerance,
		log:       log.With().Str("component", "balancer").Logger(),
		metrics:   metrics,
		now:       time.Now,
	}
}

// ReadAndBalance performs one poll. It reports whether a correction was
// applied; device failures are logged and count as no correction.
func (b *Balancer) ReadAndBalance() bool {
	b.metrics.observePoll()

	ep, err := b.mixer.DefaultEndpoint()
	if err != nil {
		b.metrics.observeDeviceError()
		b.log.Warn().Err(err).Msg("default endpoint unavailable, skipping cycle")
		return false
	}
	defer func() {
		if err := ep.Close(); err != nil {
			b.log.Debug().Err(err).Msg("endpoint release failed")
		}
	}()

	left, right, err := readStereo(ep)
	if err != nil {
		if errors.Is(err, ErrNoStereo) {
			b.log.Debug().Err(err).Msg("skipping non-stereo endpoint")
			return false
		}
		b.metrics.observeDeviceError()
		b.log.Warn().Err(err).Msg("channel read failed")
		return false
	}
	b.metrics.observeLevels(left, right)

	level, needed := BalanceChannels(left, right, b.tolerance)
	if !needed {
		return false
	}

	for _, ch := range []uint32{leftChannel, rightChannel} {
		if err := ep.SetChannelLevel(ch, level); err != nil {
			b.metrics.observeDeviceError()
			b.log.Error().Err(err).Uint32("channel", ch).Msg("failed to set channel level")
			return false
		}
	}

	b.metrics.observeCorrection()
	b.log.Info().
		Float32("left", left).
		Float32("right", right).
		Float32("level", level).
		Msg("channels balanced")

	if b.OnCorrection != nil {
		b.OnCorrection(Correction{
			Timestamp: b.now(),
			Left:      left,
			Right:     right,
			Level:     level,
		})
	}
	return true
}

func readStereo(ep Endpoint) (float32, float32, error) {
	n, err := ep.ChannelCount()
	if err != nil {
		return 0, 0, fmt.Errorf("channel count: %w", err)
	}
	if n < 2 {
		return 0, 0, fmt.Errorf("%w: %d channel(s)", ErrNoStereo, n)
	}
	left, err := ep.ChannelLevel(leftChannel)
	if err != nil {
		return 0, 0, fmt.Errorf("read left channel: %w", err)
	}
	right, err := ep.ChannelLevel(rightChannel)
	if err != nil {
		return 0, 0, fmt.Errorf("read right channel: %w", err)
	}
	return left, right, nil
}

// levelPercent renders a channel scalar the way notifications show it.
func levelPercent(level float32) string {
	return fmt.Sprintf("%d%%", int(level*100+0.5))
}
