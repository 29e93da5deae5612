package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/markgrovs/anki-spanish/pkg/logger"
)

// handleSignals makes the first SIGINT/SIGTERM a graceful stop and the
// second a hard cancel. The returned func releases the handler.
func handleSignals(ctx context.Context, stop func(), cancel context.CancelFunc, log *logger.Logger) func() {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		count := 0
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-sigChan:
				count++
				if count == 1 {
					log.Info("Stopping after the current row... (press Ctrl+C again to abort)")
					stop()
					continue
				}
				log.Warn("Aborting")
				cancel()
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}
