package execpiper

import (
	"log/slog"

	"github.com/phip1611/unix-exec-piper/internal/core"
)

// SetLogger replaces the package-level logger used by execpiper, allowing
// applications to integrate its logging with their own infrastructure. The
// provided logger should already carry any desired attributes; execpiper
// will not add additional ones.
//
// If l is nil, the logger resets to the default: slog.Default() with a
// "component" attribute, re-derived on the next use and then cached. Call
// SetLogger(nil) after slog.SetDefault() to pick up changes.
//
// SetLogger is safe to call concurrently with other execpiper operations.
//
// Example:
//
//	execpiper.SetLogger(myLogger.With("component", "pipeline"))
func SetLogger(l *slog.Logger) {
	core.SetLogger(l)
}
