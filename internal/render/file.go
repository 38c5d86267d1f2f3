package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	clog "github.com/charmbracelet/log"
)

// fileBackend writes markup to a temporary file and passes its path to the
// tool, for renderers that cannot read HTML from a pipe.
type fileBackend struct {
	spec   Spec
	opts   Options
	logger *clog.Logger
}

func newFileBackend(spec Spec, opts Options, logger *clog.Logger) Backend {
	return &fileBackend{spec: spec, opts: opts, logger: logger}
}

func (b *fileBackend) Name() string { return b.spec.Name }

func (b *fileBackend) Convert(ctx context.Context, markup []byte) (out string, err error) {
	dir, err := os.MkdirTemp("", "htmlpipe-*")
	if err != nil {
		return "", &RenderError{Backend: b.spec.Name, Cause: err}
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			b.logger.Warn("temporary file cleanup failed", "backend", b.spec.Name, "dir", dir, "err", rmErr)
		}
	}()

	path := filepath.Join(dir, "unit.html")
	if err := os.WriteFile(path, markup, 0o600); err != nil {
		return "", &RenderError{Backend: b.spec.Name, Cause: err}
	}
	args := expandArgs(b.spec.Args, b.opts.width(), path)
	if !hasFilePlaceholder(b.spec.Args) {
		args = append(args, path)
	}
	res, err := runTool(ctx, b.spec.Command, args, nil)
	if err != nil {
		return "", &RenderError{Backend: b.spec.Name, Stderr: res.stderr, Cause: err}
	}
	return finish(res.stdout, b.spec.Indent), nil
}

func hasFilePlaceholder(args []string) bool {
	for _, a := range args {
		if strings.Contains(a, "{file}") {
			return true
		}
	}
	return false
}
