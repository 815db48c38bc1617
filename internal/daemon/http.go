package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rronkkeli/md2htm/internal/logfields"
	"github.com/rronkkeli/md2htm/internal/metrics"
)

// httpServer exposes Prometheus metrics and health over plain HTTP,
// separate from the conversion socket.
type httpServer struct {
	srv *http.Server
}

func newHTTPServer(d *Daemon, addr string, registry *prom.Registry) *httpServer {
	registry.MustRegister(
		promcollect.NewGoCollector(),
		promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(registry))
	mux.HandleFunc("/healthz", d.handleHealth)

	return &httpServer{srv: &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

func (s *httpServer) Start() {
	go func() {
		slog.Info("metrics server listening", logfields.Addr(s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", logfields.Error(err))
		}
	}()
}

func (s *httpServer) Stop(ctx context.Context) {
	if err := s.srv.Shutdown(ctx); err != nil {
		slog.Warn("metrics server shutdown failed", logfields.Error(err))
	}
}

func (d *Daemon) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := d.healthResponse(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if resp.Status == HealthUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Warn("write health response failed", logfields.Error(err))
	}
}
