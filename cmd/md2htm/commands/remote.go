package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rronkkeli/md2htm/internal/config"
	"github.com/rronkkeli/md2htm/internal/wire"
)

// RemoteCmd implements the 'remote' command: conversion through a daemon
// instead of in-process, so callers share its cache and limits.
type RemoteCmd struct {
	Source  string `arg:"" help:"Markdown source file"`
	Output  string `short:"o" help:"Output file (default: source with .html suffix)"`
	Stdout  bool   `help:"Write the fragment to stdout instead of a file"`
	Socket  string `short:"s" help:"Daemon socket path (overrides config)"`
	Timeout string `help:"Round-trip timeout" default:"30s"`
}

func (r *RemoteCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configureLogging(cfg, root.Verbose)

	timeout, err := time.ParseDuration(r.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	socket := r.Socket
	if socket == "" {
		socket = cfg.Daemon.SocketPath
	}

	src, err := os.ReadFile(r.Source)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	html, err := wire.NewClient(socket).Render(ctx, src)
	if err != nil {
		return fmt.Errorf("remote conversion: %w", err)
	}

	return writeFragment(r.Source, r.Output, r.Stdout, html)
}
