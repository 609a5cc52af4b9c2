package main

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
)

const defaultPollInterval = 3 * time.Second

type balancer interface {
	ReadAndBalance() bool
}

// BalancerLoop polls the balancer on a fixed interval until its context is
// cancelled.
type BalancerLoop struct {
	balancer balancer
	interval time.Duration
	log      zerolog.Logger
}

func NewBalancerLoop(b balancer, interval time.Duration, log zerolog.Logger) *BalancerLoop {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &BalancerLoop{
		balancer: b,
		interval: interval,
		log:      log.With().Str("component", "loop").Logger(),
	}
}

// Start runs the loop on its own goroutine. The returned channel is closed
// once the loop has observed cancellation and returned.
func (l *BalancerLoop) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(ctx)
	}()
	return done
}

// Run blocks until ctx is done. The first cycle runs immediately.
func (l *BalancerLoop) Run(ctx context.Context) {
	l.log.Info().Dur("interval", l.interval).Msg("polling started")
	defer l.log.Info().Msg("polling stopped")

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return
		}
		l.cycle()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (l *BalancerLoop) cycle() {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("balancing cycle recovered")
		}
	}()
	l.balancer.ReadAndBalance()
}
