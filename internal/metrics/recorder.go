package metrics

import "time"

// OutcomeLabel enumerates render result categories for counters.
type OutcomeLabel string

const (
	OutcomeSuccess  OutcomeLabel = "success"
	OutcomeDepth    OutcomeLabel = "depth_exceeded"
	OutcomeTooLarge OutcomeLabel = "too_large"
	OutcomeIOError  OutcomeLabel = "io_error"
)

// CacheLabel enumerates render cache lookup results.
type CacheLabel string

const (
	CacheHit    CacheLabel = "hit"
	CacheMiss   CacheLabel = "miss"
	CacheBypass CacheLabel = "bypass"
	CacheError  CacheLabel = "error"
)

// Recorder defines observability hooks for render and daemon metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. The
// NoopRecorder makes injection optional without nil checks at call sites.
type Recorder interface {
	ObserveRenderDuration(d time.Duration)
	IncRenderOutcome(outcome OutcomeLabel)
	ObserveRequestBytes(in, out int)
	IncCacheEvent(event CacheLabel)
	IncConnection()
	SetActiveConnections(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRenderDuration(time.Duration) {}
func (NoopRecorder) IncRenderOutcome(OutcomeLabel)       {}
func (NoopRecorder) ObserveRequestBytes(int, int)        {}
func (NoopRecorder) IncCacheEvent(CacheLabel)            {}
func (NoopRecorder) IncConnection()                      {}
func (NoopRecorder) SetActiveConnections(int)            {}
