package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts balancer activity. A nil *Metrics records nothing.
type Metrics struct {
	polls        prometheus.Counter
	corrections  prometheus.Counter
	deviceErrors prometheus.Counter
	channelLevel *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		polls: f.NewCounter(prometheus.CounterOpts{
			Namespace: "volumesyncer",
			Name:      "polls_total",
			Help:      "Number of balancing cycles run.",
		}),
		corrections: f.NewCounter(prometheus.CounterOpts{
			Namespace: "volumesyncer",
			Name:      "corrections_total",
			Help:      "Number of cycles that rewrote the channel levels.",
		}),
		deviceErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: "volumesyncer",
			Name:      "device_errors_total",
			Help:      "Number of cycles skipped because the endpoint could not be used.",
		}),
		channelLevel: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "volumesyncer",
			Name:      "channel_level",
			Help:      "Last channel volume scalar read from the default endpoint.",
		}, []string{"channel"}),
	}
}

func (m *Metrics) observePoll() {
	if m == nil {
		return
	}
	m.polls.Inc()
}

func (m *Metrics) observeCorrection() {
	if m == nil {
		return
	}
	m.corrections.Inc()
}

func (m *Metrics) observeDeviceError() {
	if m == nil {
		return
	}
	m.deviceErrors.Inc()
}

func (m *Metrics) observeLevels(left, right float32) {
	if m == nil {
		return
	}
	m.channelLevel.WithLabelValues("left").Set(float64(left))
	m.channelLevel.WithLabelValues("right").Set(float64(right))
}
