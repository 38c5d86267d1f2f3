package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	clog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "htmlpipe/internal/config"
	"htmlpipe/internal/render"
	tu "htmlpipe/internal/testutil"
	appver "htmlpipe/internal/version"
)

// execute runs the root command with args against an isolated config dir.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	tmp := t.TempDir()
	defer tu.WithEnv(t, "XDG_CONFIG_HOME", tmp)()
	defer tu.WithEnv(t, "HOME", tmp)()

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags puts every flag back to its default; cobra keeps parsed values
// on the package-level commands between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, appver.AppVersion+"\n", out)
}

func TestRenderCommand_NativeFromFile(t *testing.T) {
	p := tu.WriteFile(t, t.TempDir(), "unit.html", "<table><tr><th>N</th></tr><tr><td>4</td></tr></table>\n")
	out, err := execute(t, "", "render", "--backend", "native", "--width", "60", p)
	require.NoError(t, err)
	assert.Contains(t, out, "N")
	assert.Contains(t, out, "4")
	assert.NotContains(t, out, "<td>")
}

func TestRenderCommand_Stdin(t *testing.T) {
	out, err := execute(t, "<p>hello <b>world</b></p>SQL> ", "render", "--backend", "native")
	require.NoError(t, err)
	assert.Equal(t, "hello world\nSQL> \n", out)
}

func TestRenderCommand_NoBackend(t *testing.T) {
	_, err := execute(t, "<p>x</p>", "render", "--backend", "no-such-backend")
	assert.ErrorIs(t, err, render.ErrBackendUnavailable)
}

func TestConfigCommands(t *testing.T) {
	p := filepath.Join(t.TempDir(), "htmlpipe.yaml")
	out, err := execute(t, "", "config", "--config", p)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote default config")

	out, err = execute(t, "", "config", "--config", p)
	require.NoError(t, err)
	assert.Contains(t, out, "keeping existing config")

	cfg, err := cfgpkg.Load(p)
	require.NoError(t, err)
	assert.Equal(t, cfgpkg.Default().Backends, cfg.Backends)

	out, err = execute(t, "", "config", "show", "--config", p)
	require.NoError(t, err)
	assert.Contains(t, out, "prompt:")
	assert.Contains(t, out, "SQL>")

	out, err = execute(t, "", "config", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"backends"`)
}

func TestBackendsCommand(t *testing.T) {
	out, err := execute(t, "", "backends", "--backend", "no-such-tool,native")
	require.NoError(t, err)
	assert.Contains(t, out, "* native")
	assert.Contains(t, out, "w3m")
}

func TestBackendOrder(t *testing.T) {
	reg := render.NewRegistry()
	got := backendOrder(reg, []string{"native", "lynx", "bogus", "lynx"})
	assert.Equal(t, []string{"native", "lynx", "links", "pandoc", "w3m"}, got)
}

func TestRenderOnce_FlushAndBoundary(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Backends = []string{"native"}
	factory, err := newSessionFactory(cfg, nil)
	require.NoError(t, err)

	text, err := renderOnce(context.Background(), factory, []byte("<p>a</p>"))
	require.NoError(t, err)
	assert.Equal(t, "a\n", text)

	text, err = renderOnce(context.Background(), factory, []byte("SQL> "))
	require.NoError(t, err)
	assert.Equal(t, "SQL> ", text)

	text, err = renderOnce(context.Background(), factory, nil)
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestSessionFactory_ProgressGoesToLogger(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Backends = []string{"native"}
	cfg.Progress = cfgpkg.Progress{Enabled: true, Step: 4}
	var logs bytes.Buffer
	factory, err := newSessionFactory(cfg, clog.New(&logs))
	require.NoError(t, err)

	e, err := factory()
	require.NoError(t, err)
	_, ok, err := e.Accept(context.Background(), []byte("0123456789"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, logs.String(), "received 10 B")
}
