package render

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"time"
)

// waitDelay bounds how long Wait blocks on the tool's pipes after it was killed.
const waitDelay = 2 * time.Second

// pipeBackend streams markup to the tool's stdin and reads text from stdout.
type pipeBackend struct {
	spec Spec
	opts Options
}

func newPipeBackend(spec Spec, opts Options) Backend {
	return &pipeBackend{spec: spec, opts: opts}
}

func (b *pipeBackend) Name() string { return b.spec.Name }

func (b *pipeBackend) Convert(ctx context.Context, markup []byte) (string, error) {
	args := expandArgs(b.spec.Args, b.opts.width(), "")
	out, err := runTool(ctx, b.spec.Command, args, bytes.NewReader(markup))
	if err != nil {
		return "", &RenderError{Backend: b.spec.Name, Stderr: out.stderr, Cause: err}
	}
	return finish(out.stdout, b.spec.Indent), nil
}

type toolOutput struct {
	stdout string
	stderr string
}

// runTool runs an external renderer with optional stdin.
func runTool(ctx context.Context, name string, args []string, stdin *bytes.Reader) (toolOutput, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	// Keep renderers from emitting colors or paging.
	cmd.Env = append(os.Environ(), "NO_COLOR=1", "TERM=dumb")
	if stdin != nil {
		cmd.Stdin = stdin
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return toolOutput{stdout: stdout.String(), stderr: stderr.String()}, err
}
