//go:build !windows

package proxy

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	clog "github.com/charmbracelet/log"
	"github.com/creack/pty"
)

// watchResize copies the local terminal size to the pty on SIGWINCH.
func watchResize(ctx context.Context, tty, ptmx *os.File, logger *clog.Logger) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGWINCH)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ch:
				if err := pty.InheritSize(tty, ptmx); err != nil {
					logger.Debug("resize pty", "err", err)
				}
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}
