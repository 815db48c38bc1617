package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once           sync.Once
	renderDuration prom.Histogram
	renderOutcomes *prom.CounterVec
	requestBytes   *prom.HistogramVec
	cacheEvents    *prom.CounterVec
	connections    prom.Counter
	activeConns    prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.renderDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "md2htm",
			Name:      "render_duration_seconds",
			Help:      "Duration of Markdown to HTML conversions",
			Buckets:   prom.DefBuckets,
		})
		pr.renderOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "md2htm",
			Name:      "render_outcomes_total",
			Help:      "Render outcomes by final status",
		}, []string{"outcome"})
		pr.requestBytes = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "md2htm",
			Name:      "request_bytes",
			Help:      "Payload sizes by direction",
			Buckets:   prom.ExponentialBuckets(64, 4, 10),
		}, []string{"direction"})
		pr.cacheEvents = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "md2htm",
			Name:      "cache_events_total",
			Help:      "Render cache lookups by result",
		}, []string{"event"})
		pr.connections = prom.NewCounter(prom.CounterOpts{
			Namespace: "md2htm",
			Name:      "connections_total",
			Help:      "Accepted daemon connections",
		})
		pr.activeConns = prom.NewGauge(prom.GaugeOpts{
			Namespace: "md2htm",
			Name:      "active_connections",
			Help:      "Connections currently being served",
		})
		reg.MustRegister(pr.renderDuration, pr.renderOutcomes, pr.requestBytes, pr.cacheEvents, pr.connections, pr.activeConns)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveRenderDuration(d time.Duration) {
	if p == nil || p.renderDuration == nil {
		return
	}
	p.renderDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRenderOutcome(outcome OutcomeLabel) {
	if p == nil || p.renderOutcomes == nil {
		return
	}
	p.renderOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveRequestBytes(in, out int) {
	if p == nil || p.requestBytes == nil {
		return
	}
	p.requestBytes.WithLabelValues("in").Observe(float64(in))
	p.requestBytes.WithLabelValues("out").Observe(float64(out))
}

func (p *PrometheusRecorder) IncCacheEvent(event CacheLabel) {
	if p == nil || p.cacheEvents == nil {
		return
	}
	p.cacheEvents.WithLabelValues(string(event)).Inc()
}

func (p *PrometheusRecorder) IncConnection() {
	if p == nil || p.connections == nil {
		return
	}
	p.connections.Inc()
}

func (p *PrometheusRecorder) SetActiveConnections(n int) {
	if p == nil || p.activeConns == nil {
		return
	}
	p.activeConns.Set(float64(n))
}
