//go:build !nogpu

package gpu

import (
	"log/slog"
	"sync/atomic"
)

var discardLogger = slog.New(slog.DiscardHandler)

// deviceLogger holds the logger of one Device. The zero value discards.
type deviceLogger struct {
	p atomic.Pointer[slog.Logger]
}

func (l *deviceLogger) get() *slog.Logger {
	if lg := l.p.Load(); lg != nil {
		return lg
	}
	return discardLogger
}

// logger returns the logger for diagnostics of d.
func (d *Device) logger() *slog.Logger { return d.log.get() }

// SetLogger routes the diagnostics of d to l. A nil l discards them.
// It is safe to call while work is in flight.
func (d *Device) SetLogger(l *slog.Logger) { d.log.p.Store(l) }
