package render

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireTool(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available", name)
	}
}

// isolateTemp points os.TempDir at a fresh directory and returns it.
func isolateTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("TMPDIR", dir)
	return dir
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary files left behind")
}

func TestPipeBackend_Convert(t *testing.T) {
	requireTool(t, "cat")
	b, err := New(Spec{Name: "cat", Mode: ModePipe, Command: "cat"}, Options{}, nil)
	require.NoError(t, err)

	out, err := b.Convert(context.Background(), []byte("\n\n\n<p>x</p>\n\n"))
	require.NoError(t, err)
	assert.Equal(t, "\n<p>x</p>", out)
	assert.Equal(t, "cat", b.Name())
}

func TestPipeBackend_Failure(t *testing.T) {
	requireTool(t, "false")
	b, err := New(Spec{Name: "broken", Mode: ModePipe, Command: "false"}, Options{}, nil)
	require.NoError(t, err)

	_, err = b.Convert(context.Background(), []byte("<p>x</p>"))
	var rerr *RenderError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "broken", rerr.Backend)
}

func TestPipeBackend_Timeout(t *testing.T) {
	requireTool(t, "sleep")
	b, err := New(Spec{Name: "slow", Mode: ModePipe, Command: "sleep", Args: []string{"10"}}, Options{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err = b.Convert(ctx, []byte("<p>x</p>"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestFileBackend_ConvertRemovesTempFile(t *testing.T) {
	requireTool(t, "cat")
	tmp := isolateTemp(t)
	b, err := New(Spec{Name: "catfile", Mode: ModeFile, Command: "cat", Args: []string{"{file}"}, Indent: 2}, Options{}, nil)
	require.NoError(t, err)

	out, err := b.Convert(context.Background(), []byte("  <b>bold</b>\n    two\n"))
	require.NoError(t, err)
	assert.Equal(t, "<b>bold</b>\n  two", out)
	assertEmptyDir(t, tmp)
}

func TestFileBackend_AppendsPathWithoutPlaceholder(t *testing.T) {
	requireTool(t, "cat")
	isolateTemp(t)
	b, err := New(Spec{Name: "catfile", Mode: ModeFile, Command: "cat"}, Options{}, nil)
	require.NoError(t, err)

	out, err := b.Convert(context.Background(), []byte("<i>x</i>"))
	require.NoError(t, err)
	assert.Equal(t, "<i>x</i>", out)
}

func TestFileBackend_FailureStillCleansUp(t *testing.T) {
	requireTool(t, "false")
	tmp := isolateTemp(t)
	b, err := New(Spec{Name: "broken", Mode: ModeFile, Command: "false", Args: []string{"{file}"}}, Options{}, nil)
	require.NoError(t, err)

	_, err = b.Convert(context.Background(), []byte("<p>x</p>"))
	require.Error(t, err)
	assertEmptyDir(t, tmp)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Spec{Name: "x", Mode: "telepathy"}, Options{}, nil)
	assert.ErrorIs(t, err, ErrUnknownMode)

	_, err = New(Spec{Name: "x", Mode: ModePipe}, Options{}, nil)
	assert.Error(t, err)
}

func TestExpandArgs(t *testing.T) {
	got := expandArgs([]string{"-cols", "{width}", "--in={file}"}, 120, "/tmp/u.html")
	assert.Equal(t, []string{"-cols", "120", "--in=/tmp/u.html"}, got)
}

func TestRenderError_Message(t *testing.T) {
	err := &RenderError{Backend: "w3m", Stderr: "w3m: bad\nmore", Cause: errors.New("exit status 1")}
	assert.Equal(t, "render w3m: exit status 1: w3m: bad", err.Error())
	assert.True(t, strings.HasPrefix((&RenderError{Backend: "n", Cause: errors.New("x")}).Error(), "render n"))
}
