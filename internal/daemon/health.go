package daemon

import (
	"context"
	"time"

	"github.com/rronkkeli/md2htm/internal/version"
)

// HealthStatus grades the daemon's ability to serve requests.
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck is one subsystem's verdict.
type HealthCheck struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// HealthResponse is the payload of the health endpoint.
type HealthResponse struct {
	Status            HealthStatus  `json:"status"`
	Timestamp         time.Time     `json:"timestamp"`
	Uptime            string        `json:"uptime"`
	Version           string        `json:"version"`
	ActiveConnections int64         `json:"active_connections"`
	Checks            []HealthCheck `json:"checks"`
}

// healthResponse inspects the daemon's subsystems. A failing cache
// degrades health (renders still work, uncached); a daemon that is not
// running is unhealthy.
func (d *Daemon) healthResponse(ctx context.Context) *HealthResponse {
	resp := &HealthResponse{
		Status:            HealthHealthy,
		Timestamp:         time.Now(),
		Uptime:            time.Since(d.startTime).Round(time.Second).String(),
		Version:           version.Version,
		ActiveConnections: d.activeConns.Load(),
	}

	if status(d.status.Load()) != statusRunning {
		resp.Status = HealthUnhealthy
		resp.Checks = append(resp.Checks, HealthCheck{
			Name:    "listener",
			Status:  HealthUnhealthy,
			Message: status(d.status.Load()).String(),
		})
		return resp
	}
	resp.Checks = append(resp.Checks, HealthCheck{Name: "listener", Status: HealthHealthy})

	if d.cache != nil {
		check := HealthCheck{Name: "render_cache", Status: HealthHealthy}
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := d.cache.Ping(pingCtx); err != nil {
			check.Status = HealthDegraded
			check.Message = err.Error()
			resp.Status = HealthDegraded
		}
		cancel()
		resp.Checks = append(resp.Checks, check)
	}

	return resp
}
