package mqengine

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// NewTintLogger builds a human-readable, colorized development logger for
// WithLogger, the same handler style the teacher's CLI wires up for its
// own diagnostic output. Callers that want structured JSON logs instead
// should construct their own *slog.Logger and pass it to WithLogger
// directly — the engine only ever needs a *slog.Logger, never this
// specific handler.
func NewTintLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
