// Package render composes the full conversion pipeline shared by the CLI
// and the daemon: optional frontmatter stripping, render cache lookup,
// markdown conversion, and optional HTML sanitization.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rronkkeli/md2htm/internal/config"
	"github.com/rronkkeli/md2htm/internal/frontmatter"
	"github.com/rronkkeli/md2htm/internal/logfields"
	"github.com/rronkkeli/md2htm/internal/markdown"
	"github.com/rronkkeli/md2htm/internal/metrics"
	"github.com/rronkkeli/md2htm/internal/rendercache"
	"github.com/rronkkeli/md2htm/internal/sanitize"
)

// Result carries the rendered fragment together with what the pipeline
// learned about the source along the way.
type Result struct {
	HTML           []byte
	Meta           frontmatter.Meta
	HadFrontmatter bool
	Cache          metrics.CacheLabel
}

// Service runs conversions under a fixed configuration. It is safe for
// concurrent use.
type Service struct {
	cfg      config.RenderConfig
	policy   *sanitize.Policy
	cache    rendercache.Store
	recorder metrics.Recorder
	variant  string
}

// Option customizes a Service.
type Option func(*Service)

// WithCache attaches a render cache. Without one every conversion is a
// cache bypass.
func WithCache(store rendercache.Store) Option {
	return func(s *Service) { s.cache = store }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(s *Service) {
		if rec != nil {
			s.recorder = rec
		}
	}
}

// New creates a Service for the given render configuration.
func New(cfg config.RenderConfig, opts ...Option) *Service {
	s := &Service{cfg: cfg, recorder: metrics.NoopRecorder{}}
	if cfg.Sanitize {
		s.policy = sanitize.NewPolicy()
	}

	depth := cfg.MaxDepth
	if depth <= 0 {
		depth = markdown.DefaultMaxDepth
	}
	// The variant folds every output-affecting option into the cache key.
	s.variant = fmt.Sprintf("depth=%d;sanitize=%t", depth, cfg.Sanitize)

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Render converts one source buffer. Depth violations surface as
// *markdown.DepthError; cache failures are logged and never fail a
// conversion.
func (s *Service) Render(ctx context.Context, src []byte) (*Result, error) {
	start := time.Now()
	result, err := s.render(ctx, src)
	s.recorder.ObserveRenderDuration(time.Since(start))

	if err != nil {
		var depthErr *markdown.DepthError
		if errors.As(err, &depthErr) {
			s.recorder.IncRenderOutcome(metrics.OutcomeDepth)
		} else {
			s.recorder.IncRenderOutcome(metrics.OutcomeIOError)
		}
		return nil, err
	}
	s.recorder.IncRenderOutcome(metrics.OutcomeSuccess)
	return result, nil
}

func (s *Service) render(ctx context.Context, src []byte) (*Result, error) {
	result := &Result{Cache: metrics.CacheBypass}

	body := src
	if s.cfg.StripFrontmatter {
		stripped, meta, had, err := frontmatter.Strip(src)
		switch {
		case err != nil:
			// A block that fails to parse is rendered as ordinary
			// content rather than failing the conversion.
			slog.Warn("frontmatter parse failed, rendering as content", logfields.Error(err))
		case had:
			body = stripped
			result.Meta = meta
			result.HadFrontmatter = true
		}
	}

	var key string
	if s.cache != nil {
		key = rendercache.Key(body, s.variant)
		cached, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			result.Cache = metrics.CacheError
			slog.Warn("render cache lookup failed", logfields.Error(err))
		case ok:
			result.Cache = metrics.CacheHit
			result.HTML = cached
		default:
			result.Cache = metrics.CacheMiss
		}
	}
	s.recorder.IncCacheEvent(result.Cache)
	if result.Cache == metrics.CacheHit {
		return result, nil
	}

	html, err := markdown.Parse(body, markdown.Options{MaxDepth: s.cfg.MaxDepth})
	if err != nil {
		return nil, err
	}
	if s.policy != nil {
		html = s.policy.Sanitize(html)
	}
	result.HTML = html

	if key != "" {
		if err := s.cache.Put(ctx, key, html); err != nil {
			slog.Warn("render cache store failed", logfields.Error(err))
		}
	}
	return result, nil
}
