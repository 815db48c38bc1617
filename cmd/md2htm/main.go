package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/rronkkeli/md2htm/cmd/md2htm/commands"
	"github.com/rronkkeli/md2htm/internal/version"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("md2htm"),
		kong.Description("Convert Markdown files to HTML fragments, directly or through a unix socket daemon."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	err := ctx.Run(&commands.Global{Logger: slog.Default()}, cli)
	ctx.FatalIfErrorf(err)
}
