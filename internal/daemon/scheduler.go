package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/rronkkeli/md2htm/internal/logfields"
	"github.com/rronkkeli/md2htm/internal/rendercache"
)

// pruneScheduler ages out old render cache entries on a fixed interval.
type pruneScheduler struct {
	scheduler gocron.Scheduler
}

func newPruneScheduler(store rendercache.Store, retention, interval time.Duration) (*pruneScheduler, error) {
	if retention <= 0 || interval <= 0 {
		return nil, fmt.Errorf("prune needs positive retention and interval, got %s and %s", retention, interval)
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { pruneCache(store, retention) }),
		gocron.WithName("cache-prune"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prune job: %w", err)
	}

	return &pruneScheduler{scheduler: s}, nil
}

func (p *pruneScheduler) Start() {
	slog.Info("cache prune scheduler started")
	p.scheduler.Start()
}

func (p *pruneScheduler) Stop() error {
	return p.scheduler.Shutdown()
}

func pruneCache(store rendercache.Store, retention time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := store.Prune(ctx, retention)
	if err != nil {
		slog.Error("render cache prune failed", logfields.Error(err))
		return
	}
	if removed > 0 {
		slog.Info("render cache pruned", slog.Int64("removed", removed))
	}
}
