// Package metrics provides observability hooks for renders and daemon
// connections.
//
// The package implements the Null Object pattern so components never nil
// check their recorder: everything defaults to NoopRecorder, and enabling
// metrics means injecting PrometheusRecorder instead. Components receive a
// Recorder through dependency injection:
//
//	svc := render.New(cfg, render.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// The noop methods inline to nothing, so disabled metrics cost nothing on
// the render path.
package metrics
