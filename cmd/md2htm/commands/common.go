package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/rronkkeli/md2htm/internal/config"
	"github.com/rronkkeli/md2htm/internal/logfields"
	"github.com/rronkkeli/md2htm/internal/render"
	"github.com/rronkkeli/md2htm/internal/rendercache"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags shared by all subcommands.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default /etc/md2htm/config.yaml)"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Convert ConvertCmd `cmd:"" help:"Convert a Markdown file to an HTML fragment"`
	Daemon  DaemonCmd  `cmd:"" help:"Serve conversions over a unix domain socket"`
	Watch   WatchCmd   `cmd:"" help:"Watch a directory and reconvert Markdown files on change"`
	Remote  RemoteCmd  `cmd:"" help:"Convert a file through a running daemon"`
}

// AfterApply runs after flag parsing; set up logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// configureLogging re-applies level and format once the configuration is
// loaded. --verbose wins over the configured level.
func configureLogging(cfg *config.Config, verbose bool) {
	level := cfg.Logging.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Logging.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// renderOptions wires the configured render cache into CLI conversions.
// The returned closer is a no-op when the cache is disabled.
func renderOptions(cfg *config.Config) ([]render.Option, func(), error) {
	if !cfg.Cache.Enabled {
		return nil, func() {}, nil
	}

	store, err := rendercache.NewSQLiteStore(cfg.Cache.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open render cache: %w", err)
	}
	closer := func() {
		if err := store.Close(); err != nil {
			slog.Warn("render cache close failed", logfields.Error(err))
		}
	}
	return []render.Option{render.WithCache(store)}, closer, nil
}

// writeFragment delivers a rendered fragment to stdout or to the target
// file, deriving the target from the source name when not given.
func writeFragment(source, output string, toStdout bool, html []byte) error {
	if toStdout {
		_, err := os.Stdout.Write(html)
		return err
	}

	target := output
	if target == "" {
		target = render.OutputPath(source)
	}
	if err := os.WriteFile(target, html, 0o644); err != nil {
		return fmt.Errorf("write fragment: %w", err)
	}
	slog.Info("wrote fragment",
		logfields.Source(source),
		logfields.Target(target),
		logfields.BytesOut(len(html)))
	return nil
}
