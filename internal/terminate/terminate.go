// Package terminate implements the process-wide shutdown signal every
// request pipeline polls at each loop iteration: a context.Context rooted
// at process start and cancelled once by SIGINT/SIGTERM.
package terminate

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Context returns a context cancelled the first time the process receives
// SIGINT or SIGTERM. stop releases the underlying signal.Notify channel;
// callers typically defer it once at process start.
func Context() (ctx context.Context, stop func()) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
