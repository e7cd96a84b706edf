// Command autoexpose computes image histograms and applies automatic
// exposure correction.
//
// Usage:
//
//	autoexpose histogram photo.jpg
//	autoexpose correct --strength 1.5 -o photo-fixed.png photo.jpg
//	autoexpose devices
//	autoexpose shaders
//
// Global flags may also be set in a config file (--config) or through
// AUTOEXPOSE_* environment variables, for example AUTOEXPOSE_DEVICE=software.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "autoexpose:", err)
		stop()
		os.Exit(1)
	}
}
