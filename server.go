package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type statusResponse struct {
	Version              string       `json:"version"`
	NotificationsEnabled bool         `json:"notificationsEnabled"`
	AutostartEnabled     bool         `json:"autostartEnabled"`
	LastCorrection       *Correction  `json:"lastCorrection,omitempty"`
	Corrections          []Correction `json:"corrections"`
}

// statusServer exposes /status and /metrics on a loopback address.
type statusServer struct {
	app    *App
	gather prometheus.Gatherer
	log    zerolog.Logger
}

func newStatusServer(app *App, gather prometheus.Gatherer, log zerolog.Logger) *statusServer {
	return &statusServer{
		app:    app,
		gather: gather,
		log:    log.With().Str("component", "status").Logger(),
	}
}

func (s *statusServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.handleStatus)
	mux.Handle("/metrics", promhttp.HandlerFor(s.gather, promhttp.HandlerOpts{}))
	return mux
}

func (s *statusServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	resp := statusResponse{
		Version:              version,
		NotificationsEnabled: s.app.NotificationsEnabled(),
		AutostartEnabled:     s.app.AutostartEnabled(),
		Corrections:          s.app.History().Snapshot(),
	}
	if last, ok := s.app.History().Latest(); ok {
		resp.LastCorrection = &last
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Debug().Err(err).Msg("status write failed")
	}
}

// serve listens on addr until ctx is cancelled. The returned channel is
// closed after the server has shut down.
func (s *statusServer) serve(ctx context.Context, addr string) (<-chan struct{}, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{
		Handler:           s.handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.log.Info().Str("addr", ln.Addr().String()).Msg("status server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("status server stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return done, nil
}
