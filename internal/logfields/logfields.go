package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRequestID  = "request_id"
	KeySocket     = "socket"
	KeySource     = "source"
	KeyTarget     = "target"
	KeyBytesIn    = "bytes_in"
	KeyBytesOut   = "bytes_out"
	KeyDurationMS = "duration_ms"
	KeyCache      = "cache"
	KeyOutcome    = "outcome"
	KeyComponent  = "component"
	KeyAddr       = "addr"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RequestID(id string) slog.Attr   { return slog.String(KeyRequestID, id) }
func Socket(path string) slog.Attr    { return slog.String(KeySocket, path) }
func Source(path string) slog.Attr    { return slog.String(KeySource, path) }
func Target(path string) slog.Attr    { return slog.String(KeyTarget, path) }
func BytesIn(n int) slog.Attr         { return slog.Int(KeyBytesIn, n) }
func BytesOut(n int) slog.Attr        { return slog.Int(KeyBytesOut, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Cache(state string) slog.Attr    { return slog.String(KeyCache, state) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Component(c string) slog.Attr    { return slog.String(KeyComponent, c) }
func Addr(a string) slog.Attr         { return slog.String(KeyAddr, a) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
