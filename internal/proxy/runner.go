package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"

	clog "github.com/charmbracelet/log"
	"github.com/creack/pty"
	"golang.org/x/term"

	"htmlpipe/internal/system"
)

// Runner starts the interactive subprocess and streams its output into a
// Filter in arrival order.
type Runner struct {
	Command string
	Args    []string
	Dir     string
	// PTY runs the subprocess on a pseudo-terminal instead of pipes, for
	// programs that only prompt when attached to a terminal.
	PTY bool
	// InitCommands are written to the subprocess right after start, one per line.
	InitCommands []string
	// Stdin is copied to the subprocess by a goroutine. Run does not wait for
	// it: a read from Stdin that is still blocked when the subprocess exits
	// ends with the next input, whose write then fails on the closed pipe or
	// pty. Callers reusing a Runner should pass a Stdin they can close.
	Stdin io.Reader
	// Stderr receives the subprocess's stderr in pipe mode; it is not filtered.
	Stderr io.Writer
	Logger *clog.Logger
}

// WantsCRLF reports whether the local terminal will be in raw mode, where
// rendered text needs "\r\n" line endings.
func (r *Runner) WantsCRLF() bool {
	_, ok := r.terminal()
	return r.PTY && ok
}

func (r *Runner) terminal() (*os.File, bool) {
	f, ok := r.Stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil, false
	}
	return f, true
}

func (r *Runner) logger() *clog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return system.Logger
}

// Run executes the subprocess until it exits or ctx is cancelled. out is
// closed afterwards, which flushes any partial unit. The subprocess's exit
// error is returned.
func (r *Runner) Run(ctx context.Context, out io.WriteCloser) error {
	if strings.TrimSpace(r.Command) == "" {
		return errors.New("proxy: empty command")
	}
	cmd := exec.CommandContext(ctx, r.Command, r.Args...) //nolint:gosec
	cmd.Dir = r.Dir
	var err error
	if r.PTY {
		err = r.runPTY(ctx, cmd, out)
	} else {
		err = r.runPipes(cmd, out)
	}
	if cerr := out.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (r *Runner) runPipes(cmd *exec.Cmd, out io.Writer) error {
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	cmd.Stdout = out
	cmd.Stderr = r.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", r.Command, err)
	}
	r.logger().Debug("subprocess started", "cmd", r.Command, "pid", cmd.Process.Pid, "pty", false)

	if err := r.writeInit(stdin); err != nil {
		r.logger().Warn("init commands not sent", "err", err)
	}
	if r.Stdin != nil {
		go func() {
			r.copyInput(stdin, r.Stdin)
			_ = stdin.Close()
		}()
	} else {
		_ = stdin.Close()
	}
	return cmd.Wait()
}

func (r *Runner) runPTY(ctx context.Context, cmd *exec.Cmd, out io.Writer) error {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("start %s on pty: %w", r.Command, err)
	}
	defer func() { _ = ptmx.Close() }()
	r.logger().Debug("subprocess started", "cmd", r.Command, "pid", cmd.Process.Pid, "pty", true)

	if tty, ok := r.terminal(); ok {
		if err := pty.InheritSize(tty, ptmx); err != nil {
			r.logger().Debug("inherit terminal size", "err", err)
		}
		stop := watchResize(ctx, tty, ptmx, r.logger())
		defer stop()
		state, err := term.MakeRaw(int(tty.Fd()))
		if err != nil {
			return fmt.Errorf("raw mode: %w", err)
		}
		defer func() { _ = term.Restore(int(tty.Fd()), state) }()
	}

	if err := r.writeInit(ptmx); err != nil {
		r.logger().Warn("init commands not sent", "err", err)
	}
	if r.Stdin != nil {
		go r.copyInput(ptmx, r.Stdin)
	}

	buf := make([]byte, 4096)
	for {
		n, readErr := ptmx.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				r.logger().Warn("output write failed", "err", err)
			}
		}
		if readErr != nil {
			// Linux reports EIO once the child side of the pty is gone.
			if !errors.Is(readErr, io.EOF) && !errors.Is(readErr, syscall.EIO) {
				r.logger().Debug("pty read", "err", readErr)
			}
			break
		}
	}
	return cmd.Wait()
}

// copyInput forwards src to the subprocess until either side is done.
func (r *Runner) copyInput(dst io.Writer, src io.Reader) {
	_, err := io.Copy(dst, src)
	if err != nil && !errors.Is(err, os.ErrClosed) && !errors.Is(err, io.ErrClosedPipe) && !errors.Is(err, syscall.EPIPE) && !errors.Is(err, syscall.EIO) {
		r.logger().Debug("stdin copy stopped", "err", err)
	}
}

func (r *Runner) writeInit(w io.Writer) error {
	for _, c := range r.InitCommands {
		if _, err := io.WriteString(w, c+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// CRLFWriter rewrites bare "\n" as "\r\n" for terminals in raw mode.
type CRLFWriter struct {
	w      io.Writer
	lastCR bool
}

func NewCRLFWriter(w io.Writer) *CRLFWriter {
	return &CRLFWriter{w: w}
}

func (c *CRLFWriter) Write(p []byte) (int, error) {
	out := make([]byte, 0, len(p)+8)
	for _, b := range p {
		if b == '\n' && !c.lastCR {
			out = append(out, '\r')
		}
		out = append(out, b)
		c.lastCR = b == '\r'
	}
	if _, err := c.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}
