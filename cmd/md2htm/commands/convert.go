package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rronkkeli/md2htm/internal/config"
	"github.com/rronkkeli/md2htm/internal/render"
)

// ConvertCmd implements the 'convert' command.
type ConvertCmd struct {
	Source string `arg:"" help:"Markdown source file"`
	Output string `short:"o" help:"Output file (default: source with .html suffix)"`
	Stdout bool   `help:"Write the fragment to stdout instead of a file"`
}

func (c *ConvertCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configureLogging(cfg, root.Verbose)

	src, err := os.ReadFile(c.Source)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	opts, closeCache, err := renderOptions(cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	svc := render.New(cfg.Render, opts...)
	result, err := svc.Render(context.Background(), src)
	if err != nil {
		return fmt.Errorf("convert %s: %w", c.Source, err)
	}

	return writeFragment(c.Source, c.Output, c.Stdout, result.HTML)
}
