// Package daemon serves conversion requests over a unix domain socket.
// Each connection carries exactly one length-prefixed request and receives
// exactly one length-prefixed response; rendering goes through the shared
// render pipeline with its cache, metrics and event hooks attached.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/rronkkeli/md2htm/internal/config"
	"github.com/rronkkeli/md2htm/internal/events"
	"github.com/rronkkeli/md2htm/internal/logfields"
	"github.com/rronkkeli/md2htm/internal/metrics"
	"github.com/rronkkeli/md2htm/internal/render"
	"github.com/rronkkeli/md2htm/internal/rendercache"
	"github.com/rronkkeli/md2htm/internal/wire"
)

type status int32

const (
	statusStopped status = iota
	statusStarting
	statusRunning
	statusStopping
)

func (s status) String() string {
	switch s {
	case statusStarting:
		return "starting"
	case statusRunning:
		return "running"
	case statusStopping:
		return "stopping"
	default:
		return "stopped"
	}
}

// Daemon owns the socket listener, the render pipeline and the optional
// sidecars (cache pruning, metrics endpoint, event publishing).
type Daemon struct {
	cfg     *config.Config
	service *render.Service
	cache   rendercache.Store
	events  events.Publisher

	recorder metrics.Recorder
	registry *prom.Registry

	listener net.Listener
	workers  workerGroup
	pruner   *pruneScheduler
	http     *httpServer

	status      atomic.Int32
	startTime   time.Time
	activeConns atomic.Int64
}

// New assembles a daemon from configuration. Optional subsystems that
// fail to come up are logged and disabled rather than failing startup;
// only the essentials (cache store when enabled) are fatal.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	d := &Daemon{
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
		events:   events.NoopPublisher{},
	}

	if cfg.Metrics.Enabled {
		d.registry = prom.NewRegistry()
		d.recorder = metrics.NewPrometheusRecorder(d.registry)
	}

	if cfg.Cache.Enabled {
		store, err := rendercache.NewSQLiteStore(cfg.Cache.Path)
		if err != nil {
			return nil, fmt.Errorf("open render cache: %w", err)
		}
		d.cache = store
	}

	if cfg.Events.Enabled {
		pub, err := events.NewNATSPublisher(&cfg.Events)
		if err != nil {
			slog.Warn("event publishing disabled", logfields.Error(err))
		} else {
			d.events = pub
		}
	}

	opts := []render.Option{render.WithRecorder(d.recorder)}
	if d.cache != nil {
		opts = append(opts, render.WithCache(d.cache))
	}
	d.service = render.New(cfg.Render, opts...)

	if cfg.Metrics.Enabled {
		d.http = newHTTPServer(d, cfg.Metrics.Addr, d.registry)
	}
	if d.cache != nil {
		pruner, err := newPruneScheduler(d.cache, cfg.Cache.TTLDuration(), cfg.Cache.PruneIntervalDuration())
		if err != nil {
			slog.Warn("cache pruning disabled", logfields.Error(err))
		} else {
			d.pruner = pruner
		}
	}

	return d, nil
}

// Start binds the socket and begins serving. It returns once the daemon
// is accepting connections.
func (d *Daemon) Start(ctx context.Context) error {
	if !d.status.CompareAndSwap(int32(statusStopped), int32(statusStarting)) {
		return fmt.Errorf("daemon is not stopped: %s", status(d.status.Load()))
	}
	d.startTime = time.Now()

	listener, err := d.listen()
	if err != nil {
		d.status.Store(int32(statusStopped))
		return err
	}
	d.listener = listener

	if d.http != nil {
		d.http.Start()
	}
	if d.pruner != nil {
		d.pruner.Start()
	}
	d.workers.Go(d.acceptLoop)

	d.status.Store(int32(statusRunning))
	slog.Info("daemon started",
		logfields.Socket(d.cfg.Daemon.SocketPath),
		slog.Bool("cache", d.cache != nil),
		slog.Bool("metrics", d.http != nil))
	return nil
}

// listen binds the unix socket, clearing a stale socket file left by an
// unclean shutdown. A socket another daemon still answers on is an error.
func (d *Daemon) listen() (net.Listener, error) {
	path := d.cfg.Daemon.SocketPath
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create socket directory: %w", err)
		}
	}

	if _, err := os.Stat(path); err == nil {
		if conn, err := net.Dial("unix", path); err == nil {
			conn.Close()
			return nil, fmt.Errorf("socket %s is served by a running daemon", path)
		}
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("remove stale socket: %w", err)
		}
		slog.Warn("removed stale socket", logfields.Socket(path))
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", path, err)
	}
	return listener, nil
}

func (d *Daemon) acceptLoop() {
	for {
		conn, err := d.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Warn("accept failed", logfields.Error(err))
			continue
		}
		if !d.workers.Go(func() { d.handleConn(conn) }) {
			_ = wire.WriteError(conn, "daemon is shutting down")
			conn.Close()
			return
		}
	}
}

// Stop closes the listener, waits for in-flight requests bounded by the
// configured stop timeout, and releases every subsystem.
func (d *Daemon) Stop(ctx context.Context) error {
	if !d.status.CompareAndSwap(int32(statusRunning), int32(statusStopping)) {
		return nil
	}
	slog.Info("stopping daemon")

	if d.listener != nil {
		_ = d.listener.Close()
	}
	if d.pruner != nil {
		if err := d.pruner.Stop(); err != nil {
			slog.Warn("scheduler shutdown failed", logfields.Error(err))
		}
	}

	stopCtx := ctx
	if timeout := d.cfg.Daemon.StopTimeoutDuration(); timeout > 0 {
		var cancel context.CancelFunc
		stopCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := d.workers.StopAndWait(stopCtx); err != nil {
		slog.Warn("gave up waiting for active connections", logfields.Error(err))
	}

	if d.http != nil {
		d.http.Stop(stopCtx)
	}
	if d.cache != nil {
		if err := d.cache.Close(); err != nil {
			slog.Warn("render cache close failed", logfields.Error(err))
		}
	}
	if err := d.events.Close(); err != nil {
		slog.Warn("event publisher close failed", logfields.Error(err))
	}
	if err := os.Remove(d.cfg.Daemon.SocketPath); err != nil && !os.IsNotExist(err) {
		slog.Warn("remove socket failed", logfields.Error(err))
	}

	d.status.Store(int32(statusStopped))
	slog.Info("daemon stopped", slog.Duration("uptime", time.Since(d.startTime)))
	return nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return d.Stop(context.Background())
}
