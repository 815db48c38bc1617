package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/rronkkeli/md2htm/internal/config"
	"github.com/rronkkeli/md2htm/internal/daemon"
)

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct {
	Socket string `short:"s" help:"Unix socket path (overrides config)"`
}

func (d *DaemonCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if d.Socket != "" {
		cfg.Daemon.SocketPath = d.Socket
	}
	configureLogging(cfg, root.Verbose)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv, err := daemon.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	slog.Info("daemon starting, waiting for shutdown signal")
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("daemon error: %w", err)
	}
	return nil
}
