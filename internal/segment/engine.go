// Package segment turns an arbitrarily chunked subprocess output stream into
// complete response units and hands each unit to a render.Backend.
package segment

import (
	"context"
	"errors"
	"strings"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/google/uuid"

	"htmlpipe/internal/render"
	"htmlpipe/internal/system"
)

// DefaultRenderTimeout bounds a single render.
const DefaultRenderTimeout = 30 * time.Second

// ErrSessionClosed is returned by Accept after Close.
var ErrSessionClosed = errors.New("session is closed")

// Config configures one Engine.
type Config struct {
	Detector *Detector
	Backend  render.Backend
	// RenderTimeout bounds each render; zero means DefaultRenderTimeout and a
	// negative value disables the limit.
	RenderTimeout time.Duration
	Progress      *Progress
	Logger        *clog.Logger
	// OnDiagnostic is called once per failed render, after the raw fallback
	// has been chosen.
	OnDiagnostic func(Diagnostic)
}

// Diagnostic describes a render failure that was recovered by passing the
// raw markup through.
type Diagnostic struct {
	Session string
	Backend string
	Err     error
}

// Unit is one complete response.
type Unit struct {
	// Raw is everything buffered for this unit, prompt included.
	Raw []byte
	// Markup is Raw without the trailing prompt.
	Markup []byte
	// Boundary is the prompt text that closed the unit; empty for flushes.
	Boundary string
	// Text is the rendered markup, or Markup verbatim when rendering failed.
	Text string
	Err  error
	// Flushed marks a unit emitted by Close rather than by a prompt.
	Flushed bool
}

// Display is what the terminal should show in place of Raw. A unit whose
// render failed displays exactly as it arrived.
func (u Unit) Display() string {
	if u.Err != nil {
		return string(u.Raw)
	}
	var sb strings.Builder
	sb.Grow(len(u.Text) + len(u.Boundary) + 1)
	sb.WriteString(u.Text)
	if u.Text != "" && !strings.HasSuffix(u.Text, "\n") {
		sb.WriteByte('\n')
	}
	sb.WriteString(u.Boundary)
	return sb.String()
}

// Engine is one interception session. Calls are serialized; separate Engines
// share no state and may run in parallel.
type Engine struct {
	id       string
	detector *Detector
	backend  render.Backend
	timeout  time.Duration
	progress *Progress
	logger   *clog.Logger
	onDiag   func(Diagnostic)

	// sem is a one-slot lock that Close can wait on with a deadline.
	sem chan struct{}
	// base is cancelled to abort an in-flight render during forced teardown.
	base   context.Context
	cancel context.CancelFunc

	buf      Buffer
	received int64
	closed   bool
}

// New starts a session.
func New(cfg Config) (*Engine, error) {
	if cfg.Detector == nil {
		return nil, errors.New("segment: detector is nil")
	}
	if cfg.Backend == nil {
		return nil, errors.New("segment: backend is nil")
	}
	timeout := cfg.RenderTimeout
	if timeout == 0 {
		timeout = DefaultRenderTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = system.Logger
	}
	id := uuid.NewString()
	base, cancel := context.WithCancel(context.Background())
	e := &Engine{
		id:       id,
		detector: cfg.Detector,
		backend:  cfg.Backend,
		timeout:  timeout,
		progress: cfg.Progress,
		logger:   logger.With("session", id[:8]),
		onDiag:   cfg.OnDiagnostic,
		sem:      make(chan struct{}, 1),
		base:     base,
		cancel:   cancel,
	}
	e.logger.Debug("session started", "backend", cfg.Backend.Name(), "prompt", cfg.Detector.Pattern())
	return e, nil
}

func (e *Engine) ID() string { return e.id }

func (e *Engine) Backend() render.Backend { return e.backend }

// Received is the cumulative number of bytes accepted.
func (e *Engine) Received() int64 {
	e.lock()
	defer e.unlock()
	return e.received
}

// Pending is the number of bytes buffered awaiting a prompt.
func (e *Engine) Pending() int {
	e.lock()
	defer e.unlock()
	return e.buf.Len()
}

func (e *Engine) lock()   { e.sem <- struct{}{} }
func (e *Engine) unlock() { <-e.sem }

// Accept consumes one chunk in arrival order. It returns a unit when the
// chunk completes one; otherwise the bytes stay buffered. ctx bounds the
// render, if one happens.
func (e *Engine) Accept(ctx context.Context, chunk []byte) (Unit, bool, error) {
	e.lock()
	defer e.unlock()
	if e.closed {
		return Unit{}, false, ErrSessionClosed
	}

	e.received = e.progress.Report(e.id, e.received, int64(len(chunk)))
	e.buf.Append(chunk)

	start, _, ok := e.detector.Find(e.buf.Bytes())
	if !ok {
		return Unit{}, false, nil
	}
	raw := e.buf.Take()
	u := Unit{Raw: raw, Markup: raw[:start], Boundary: string(raw[start:])}
	e.render(ctx, &u)
	return u, true, nil
}

// Close ends the session, flushing any buffered bytes as a final unit. If ctx
// ends while a render is still running, that render is aborted (its external
// process killed) before the flush. Closing a closed session is a no-op.
func (e *Engine) Close(ctx context.Context) (Unit, bool, error) {
	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		e.cancel()
		e.lock()
	}
	defer e.unlock()
	if e.closed {
		return Unit{}, false, nil
	}
	e.closed = true
	defer e.cancel()

	if e.buf.Len() == 0 {
		e.logger.Debug("session closed", "received", e.received)
		return Unit{}, false, nil
	}
	raw := e.buf.Take()
	u := Unit{Raw: raw, Markup: raw, Flushed: true}
	e.render(context.WithoutCancel(ctx), &u)
	e.logger.Debug("session closed with flush", "received", e.received, "flushed", len(raw))
	return u, true, nil
}

// render fills u.Text, falling back to the raw markup on failure.
func (e *Engine) render(ctx context.Context, u *Unit) {
	if len(u.Markup) == 0 {
		return
	}
	ctx, stop := e.renderContext(ctx)
	defer stop()

	began := time.Now()
	text, err := e.backend.Convert(ctx, u.Markup)
	if err != nil {
		u.Err = err
		u.Text = string(u.Markup)
		e.logger.Warn("render failed; showing raw markup", "backend", e.backend.Name(), "err", err)
		if e.onDiag != nil {
			e.onDiag(Diagnostic{Session: e.id, Backend: e.backend.Name(), Err: err})
		}
		return
	}
	u.Text = text
	e.logger.Debug("unit rendered", "bytes", len(u.Markup), "took", time.Since(began))
}

// renderContext merges the caller's ctx with the session's abort signal and
// the render timeout.
func (e *Engine) renderContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	stopAbort := context.AfterFunc(e.base, cancel)
	if e.timeout > 0 {
		var cancelT context.CancelFunc
		ctx, cancelT = context.WithTimeout(ctx, e.timeout)
		return ctx, func() { stopAbort(); cancelT(); cancel() }
	}
	return ctx, func() { stopAbort(); cancel() }
}
