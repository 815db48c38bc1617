package commands

import (
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"
)

func parseCLI(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	cli := &CLI{}
	parser, err := kong.New(cli, kong.Vars{"version": "test"})
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return cli, ctx
}

func TestCLI_ConvertGrammar(t *testing.T) {
	cli, ctx := parseCLI(t, "convert", "doc.md", "--stdout")
	require.Equal(t, "convert <source>", ctx.Command())
	require.Equal(t, "doc.md", cli.Convert.Source)
	require.True(t, cli.Convert.Stdout)
	require.Empty(t, cli.Convert.Output)
}

func TestCLI_DaemonGrammar(t *testing.T) {
	cli, ctx := parseCLI(t, "daemon", "-s", "/tmp/custom.sock")
	require.Equal(t, "daemon", ctx.Command())
	require.Equal(t, "/tmp/custom.sock", cli.Daemon.Socket)
}

func TestCLI_WatchGrammar(t *testing.T) {
	cli, ctx := parseCLI(t, "watch", "docs", "--debounce", "1s")
	require.Equal(t, "watch <dir>", ctx.Command())
	require.Equal(t, "docs", cli.Watch.Dir)
	require.Equal(t, "1s", cli.Watch.Debounce)
}

func TestCLI_RemoteGrammar(t *testing.T) {
	cli, ctx := parseCLI(t, "-c", "alt.yaml", "remote", "doc.md", "-o", "out.html")
	require.Equal(t, "remote <source>", ctx.Command())
	require.Equal(t, "alt.yaml", cli.Config)
	require.Equal(t, "doc.md", cli.Remote.Source)
	require.Equal(t, "out.html", cli.Remote.Output)
	require.Equal(t, "30s", cli.Remote.Timeout)
}
