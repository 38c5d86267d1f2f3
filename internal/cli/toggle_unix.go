//go:build !windows

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"htmlpipe/internal/proxy"
	"htmlpipe/internal/system"
)

// watchToggle flips interception on SIGUSR1 (kill -USR1 <pid>).
func watchToggle(ctx context.Context, f *proxy.Filter) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ch:
				on, err := f.Toggle(ctx)
				if err != nil {
					system.Logger.Error("toggle interception", "err", err)
					continue
				}
				system.Logger.Info("interception toggled", "enabled", on)
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}
