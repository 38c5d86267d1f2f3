// Package proxy places the segmentation engine in front of an output sink.
package proxy

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"

	"htmlpipe/internal/segment"
	"htmlpipe/internal/system"
)

// teardownTimeout bounds how long Disable waits for an in-flight render
// before aborting it.
const teardownTimeout = 10 * time.Second

// SessionFactory starts a new interception session. It fails with
// render.ErrBackendUnavailable when no renderer can be used.
type SessionFactory func() (*segment.Engine, error)

// Filter is an io.WriteCloser stage composed in front of sink. While enabled,
// written bytes are segmented and each complete unit reaches sink in rendered
// form; while disabled, bytes pass through unchanged.
type Filter struct {
	// mu guards session. streamMu is held across a whole Write and across
	// teardown, so a chunk reaches sink only after everything before it.
	mu       sync.Mutex
	streamMu sync.Mutex
	sink    io.Writer
	factory SessionFactory
	session *segment.Engine
	logger  *clog.Logger
}

// NewFilter returns a disabled Filter writing to sink.
func NewFilter(sink io.Writer, factory SessionFactory, logger *clog.Logger) *Filter {
	if logger == nil {
		logger = system.Logger
	}
	return &Filter{sink: sink, factory: factory, logger: logger}
}

// Enabled reports whether interception is active.
func (f *Filter) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session != nil
}

// Enable starts interception. Enabling an enabled Filter is a no-op.
func (f *Filter) Enable() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session != nil {
		return nil
	}
	if f.factory == nil {
		return errors.New("proxy: no session factory")
	}
	s, err := f.factory()
	if err != nil {
		return err
	}
	f.session = s
	f.logger.Debug("interception on", "backend", s.Backend().Name())
	return nil
}

// Disable stops interception, flushing any partial unit to the sink first.
// Writes issued meanwhile wait and pass through after the flush. Disabling a
// disabled Filter is a no-op.
func (f *Filter) Disable(ctx context.Context) error {
	f.streamMu.Lock()
	defer f.streamMu.Unlock()
	f.mu.Lock()
	s := f.session
	f.session = nil
	f.mu.Unlock()
	return f.endSession(ctx, s)
}

// Toggle flips interception and reports the new state.
func (f *Filter) Toggle(ctx context.Context) (bool, error) {
	if f.Enabled() {
		return false, f.Disable(ctx)
	}
	return true, f.Enable()
}

func (f *Filter) endSession(ctx context.Context, s *segment.Engine) error {
	if s == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, teardownTimeout)
	defer cancel()
	u, ok, err := s.Close(ctx)
	if err != nil {
		return err
	}
	f.logger.Debug("interception off", "received", s.Received())
	if !ok {
		return nil
	}
	return f.emit(u)
}

// Write implements io.Writer. Chunks must arrive in subprocess order.
func (f *Filter) Write(p []byte) (int, error) {
	f.streamMu.Lock()
	defer f.streamMu.Unlock()
	f.mu.Lock()
	s := f.session
	f.mu.Unlock()
	if s == nil {
		return f.passthrough(p)
	}
	u, ok, err := s.Accept(context.Background(), p)
	if errors.Is(err, segment.ErrSessionClosed) {
		return f.passthrough(p)
	}
	if err != nil {
		return 0, err
	}
	if ok {
		if err := f.emit(u); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Close flushes and ends interception; the sink is not closed.
func (f *Filter) Close() error {
	return f.Disable(context.Background())
}

// emit and passthrough run with streamMu held.
func (f *Filter) emit(u segment.Unit) error {
	_, err := io.WriteString(f.sink, u.Display())
	return err
}

func (f *Filter) passthrough(p []byte) (int, error) {
	return f.sink.Write(p)
}
