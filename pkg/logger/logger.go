package logger

import (
	"context"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// New builds the process logger. An empty level means info.
func New(w io.Writer, level string, pretty bool) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel

	if level != "" {
		parsed, err := zerolog.ParseLevel(level)
		if err != nil {
			return zerolog.Nop(), errors.Wrapf(err, "invalid log level %q", level)
		}

		lvl = parsed
	}

	if pretty {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// WithContext attaches lg so that zerolog.Ctx(ctx) returns it.
func WithContext(ctx context.Context, lg zerolog.Logger) context.Context {
	return lg.WithContext(ctx)
}
