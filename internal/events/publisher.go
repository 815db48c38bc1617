// Package events publishes render notifications to NATS so downstream
// consumers (site rebuilders, cache invalidators) can react to conversions
// without polling the daemon.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/rronkkeli/md2htm/internal/config"
)

// RenderEvent describes one completed conversion.
type RenderEvent struct {
	RequestID  string    `json:"request_id"`
	Source     string    `json:"source"`
	Outcome    string    `json:"outcome"`
	Cache      string    `json:"cache,omitempty"`
	BytesIn    int       `json:"bytes_in"`
	BytesOut   int       `json:"bytes_out"`
	DurationMS int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher emits render events for downstream processing.
type Publisher interface {
	PublishRender(ctx context.Context, event *RenderEvent) error
	Close() error
}

// NoopPublisher discards all events. Used when event publishing is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishRender(context.Context, *RenderEvent) error { return nil }
func (NoopPublisher) Close() error                                      { return nil }

// NATSPublisher publishes render events to a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to NATS and returns a publisher for the
// configured subject.
func NewNATSPublisher(cfg *config.EventsConfig) (*NATSPublisher, error) {
	if cfg == nil {
		return nil, errors.New("events config is required")
	}
	if !cfg.Enabled {
		return nil, errors.New("event publishing is disabled")
	}

	conn, err := nats.Connect(cfg.URL, nats.Name("md2htm"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Info("NATS publisher initialized", "url", cfg.URL, "subject", cfg.Subject)

	return &NATSPublisher{conn: conn, subject: cfg.Subject}, nil
}

// PublishRender publishes a render event. The timestamp is stamped here so
// callers only fill in the render facts. Publishing is buffered; delivery is
// best effort and never blocks a render.
func (p *NATSPublisher) PublishRender(_ context.Context, event *RenderEvent) error {
	event.Timestamp = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	slog.Debug("published render event",
		"request_id", event.RequestID,
		"source", event.Source,
		"outcome", event.Outcome)

	return nil
}

// Close flushes buffered events and drops the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	if err := p.conn.Flush(); err != nil {
		p.conn.Close()
		return fmt.Errorf("failed to flush NATS connection: %w", err)
	}
	p.conn.Close()
	return nil
}
