package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rronkkeli/md2htm/internal/config"
	"github.com/rronkkeli/md2htm/internal/render"
	"github.com/rronkkeli/md2htm/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Dir      string `arg:"" help:"Directory whose Markdown files to convert on change"`
	Debounce string `help:"Delay between a change and its conversion" default:"500ms"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configureLogging(cfg, root.Verbose)

	debounce, err := time.ParseDuration(w.Debounce)
	if err != nil {
		return fmt.Errorf("invalid debounce: %w", err)
	}

	opts, closeCache, err := renderOptions(cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	watcher, err := watch.New(render.New(cfg.Render, opts...), w.Dir, debounce)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return watcher.Run(ctx)
}
