package daemon

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/rronkkeli/md2htm/internal/events"
	"github.com/rronkkeli/md2htm/internal/logfields"
	"github.com/rronkkeli/md2htm/internal/markdown"
	"github.com/rronkkeli/md2htm/internal/metrics"
	"github.com/rronkkeli/md2htm/internal/wire"
)

// handleConn serves one request/response exchange and closes the
// connection. Conversion failures go back to the client as error frames;
// transport failures are only logged, the peer is already gone.
func (d *Daemon) handleConn(conn net.Conn) {
	defer conn.Close()

	d.recorder.IncConnection()
	d.recorder.SetActiveConnections(int(d.activeConns.Add(1)))
	defer func() {
		d.recorder.SetActiveConnections(int(d.activeConns.Add(-1)))
	}()

	requestID := uuid.NewString()
	start := time.Now()

	if timeout := d.cfg.Daemon.RequestTimeoutDuration(); timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			slog.Warn("set deadline failed", logfields.RequestID(requestID), logfields.Error(err))
		}
	}

	src, err := wire.ReadPayload(conn, uint64(d.cfg.Daemon.MaxRequestBytes))
	if err != nil {
		d.rejectRequest(conn, requestID, err)
		return
	}

	result, err := d.service.Render(context.Background(), src)
	if err != nil {
		outcome := renderOutcome(err)
		slog.Warn("conversion failed",
			logfields.RequestID(requestID),
			logfields.BytesIn(len(src)),
			logfields.Outcome(string(outcome)),
			logfields.Error(err))
		if werr := wire.WriteError(conn, err.Error()); werr != nil {
			slog.Warn("write error frame failed", logfields.RequestID(requestID), logfields.Error(werr))
		}
		d.publishEvent(requestID, len(src), 0, string(outcome), "", time.Since(start))
		return
	}

	if err := wire.WritePayload(conn, result.HTML); err != nil {
		slog.Warn("write response failed", logfields.RequestID(requestID), logfields.Error(err))
		return
	}

	duration := time.Since(start)
	d.recorder.ObserveRequestBytes(len(src), len(result.HTML))
	slog.Info("request served",
		logfields.RequestID(requestID),
		logfields.BytesIn(len(src)),
		logfields.BytesOut(len(result.HTML)),
		logfields.Cache(string(result.Cache)),
		logfields.DurationMS(float64(duration.Microseconds())/1000))
	d.publishEvent(requestID, len(src), len(result.HTML), string(metrics.OutcomeSuccess), string(result.Cache), duration)
}

// rejectRequest handles requests that never reached the render pipeline.
// Oversize frames get an error frame back; on read failures the peer is
// not answerable.
func (d *Daemon) rejectRequest(conn net.Conn, requestID string, err error) {
	var tooLarge *wire.TooLargeError
	if errors.As(err, &tooLarge) {
		d.recorder.IncRenderOutcome(metrics.OutcomeTooLarge)
		slog.Warn("request rejected",
			logfields.RequestID(requestID),
			logfields.Outcome(string(metrics.OutcomeTooLarge)),
			logfields.Error(err))
		if werr := wire.WriteError(conn, err.Error()); werr != nil {
			slog.Warn("write error frame failed", logfields.RequestID(requestID), logfields.Error(werr))
		}
		return
	}

	d.recorder.IncRenderOutcome(metrics.OutcomeIOError)
	slog.Warn("request read failed", logfields.RequestID(requestID), logfields.Error(err))
}

func renderOutcome(err error) metrics.OutcomeLabel {
	var depthErr *markdown.DepthError
	if errors.As(err, &depthErr) {
		return metrics.OutcomeDepth
	}
	return metrics.OutcomeIOError
}

func (d *Daemon) publishEvent(requestID string, bytesIn, bytesOut int, outcome, cache string, duration time.Duration) {
	event := &events.RenderEvent{
		RequestID:  requestID,
		Source:     "socket",
		Outcome:    outcome,
		Cache:      cache,
		BytesIn:    bytesIn,
		BytesOut:   bytesOut,
		DurationMS: duration.Milliseconds(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.events.PublishRender(ctx, event); err != nil {
		slog.Warn("publish render event failed", logfields.RequestID(requestID), logfields.Error(err))
	}
}
