package main

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceChannels(t *testing.T) {
	tests := []struct {
		name        string
		left, right float32
		tolerance   float32
		wantLevel   float32
		wantChange  bool
	}{
		{"equal", 0.5, 0.5, 0.01, 0.5, false},
		{"right louder", 0.5, 0.7, 0.01, 0.7, true},
		{"left louder", 0.9, 0.2, 0.01, 0.9, true},
		{"within tolerance", 0.30, 0.305, 0.01, 0.30, false},
		{"exactly at tolerance", 0.5, 0.5625, 0.0625, 0.5, false},
		{"just over tolerance", 0.5, 0.5625, 0.03125, 0.5625, true},
		{"silent and full", 0, 1, 0.01, 1, true},
		{"zero tolerance equal", 0.25, 0.25, 0, 0.25, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, changed := BalanceChannels(tt.left, tt.right, tt.tolerance)
			assert.Equal(t, tt.wantChange, changed)
			assert.Equal(t, tt.wantLevel, level)
		})
	}
}

func newTestBalancer(m Mixer, metrics *Metrics) *Balancer {
	b := NewBalancer(m, defaultTolerance, metrics, zerolog.Nop())
	b.now = func() time.Time { return time.Date(2024, 5, 1, 15, 4, 0, 0, time.UTC) }
	return b
}

func TestReadAndBalanceRaisesQuieterChannel(t *testing.T) {
	ep := newFakeEndpoint(0.50, 0.70)
	b := newTestBalancer(&fakeMixer{ep: ep}, nil)

	var got []Correction
	b.OnCorrection = func(c Correction) { got = append(got, c) }

	require.True(t, b.ReadAndBalance())
	assert.Equal(t, float32(0.70), ep.level(leftChannel))
	assert.Equal(t, float32(0.70), ep.level(rightChannel))
	assert.Equal(t, 2, ep.writes)
	assert.Equal(t, 1, ep.closed)

	require.Len(t, got, 1)
	assert.Equal(t, float32(0.50), got[0].Left)
	assert.Equal(t, float32(0.70), got[0].Right)
	assert.Equal(t, float32(0.70), got[0].Level)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestReadAndBalanceIsIdempotent(t *testing.T) {
	ep := newFakeEndpoint(0.40, 0.10)
	b := newTestBalancer(&fakeMixer{ep: ep}, nil)

	require.True(t, b.ReadAndBalance())
	writes := ep.writes
	assert.False(t, b.ReadAndBalance())
	assert.Equal(t, writes, ep.writes, "second pass must not touch the device")
	assert.Equal(t, 2, ep.closed)
}

func TestReadAndBalanceWithinTolerance(t *testing.T) {
	ep := newFakeEndpoint(0.30, 0.305)
	b := newTestBalancer(&fakeMixer{ep: ep}, nil)
	b.OnCorrection = func(Correction) { t.Fatal("unexpected correction") }

	assert.False(t, b.ReadAndBalance())
	assert.Zero(t, ep.writes)
	assert.Equal(t, 1, ep.closed)
}

func TestReadAndBalanceDeviceFailures(t *testing.T) {
	tests := []struct {
		name      string
		mixer     *fakeMixer
		wantClose int
	}{
		{"no default device", &fakeMixer{err: errDevice}, 0},
		{"mono endpoint", &fakeMixer{ep: newFakeEndpoint(0.5)}, 1},
		{"channel count fails", &fakeMixer{ep: &fakeEndpoint{levels: []float32{0.1, 0.9}, countErr: errDevice}}, 1},
		{"read fails", &fakeMixer{ep: &fakeEndpoint{levels: []float32{0.1, 0.9}, readErr: errDevice}}, 1},
		{"write fails", &fakeMixer{ep: &fakeEndpoint{levels: []float32{0.1, 0.9}, setErr: errDevice}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBalancer(tt.mixer, nil)
			b.OnCorrection = func(Correction) { t.Fatal("unexpected correction") }

			assert.False(t, b.ReadAndBalance())
			assert.Equal(t, 1, tt.mixer.opens)
			if tt.mixer.ep != nil {
				assert.Equal(t, tt.wantClose, tt.mixer.ep.closed)
			}
		})
	}
}

func TestReadAndBalanceMultichannelTouchesOnlyFrontPair(t *testing.T) {
	ep := newFakeEndpoint(0.2, 0.6, 0.3, 0.3, 0.1, 0.1)
	b := newTestBalancer(&fakeMixer{ep: ep}, nil)

	require.True(t, b.ReadAndBalance())
	assert.Equal(t, []float32{0.6, 0.6, 0.3, 0.3, 0.1, 0.1}, ep.levels)
}

func TestReadAndBalanceMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	ok := newTestBalancer(&fakeMixer{ep: newFakeEndpoint(0.2, 0.8)}, m)
	ok.ReadAndBalance()
	ok.ReadAndBalance()

	broken := newTestBalancer(&fakeMixer{err: errDevice}, m)
	broken.ReadAndBalance()

	assert.Equal(t, 3.0, testutil.ToFloat64(m.polls))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.corrections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.deviceErrors))
	assert.InDelta(t, 0.8, testutil.ToFloat64(m.channelLevel.WithLabelValues("left")), 1e-6)
}

func TestLevelPercent(t *testing.T) {
	assert.Equal(t, "70%", levelPercent(0.70))
	assert.Equal(t, "0%", levelPercent(0))
	assert.Equal(t, "100%", levelPercent(1))
	assert.Equal(t, "33%", levelPercent(0.334))
}
