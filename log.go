package procnet

import (
	"log/slog"
	"os"
)

// LevelTrace is the spec's TRACE level, mapped below slog's Debug level
// the same way several corpus packages extend slog's four built-in
// levels (slog has no TRACE by default).
const LevelTrace = slog.Level(-8)

var defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: LevelTrace}))

// SetLogger replaces the package-wide default logger used by sessions
// and runners constructed without an explicit WithLogger option.
func SetLogger(l *slog.Logger) {
	if l != nil {
		defaultLogger = l
	}
}
