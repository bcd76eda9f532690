// Package log provides structured logging for the diapredict pipeline.
//
// Logging is built on log/slog with a JSON handler; errors carrying
// cockroachdb/errors stack traces are expanded into a stacktrace attribute by
// ErrFmtHandler. Warnings raised through pkg/errors are routed to a zerolog
// logger so that structured warning types (ConvergenceWarning and friends)
// keep their fields in the output.
package log

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/rs/zerolog"

	pkgerrors "github.com/YuminosukeSato/diapredict/pkg/errors"
)

// SetupLogger function setup logger.
func SetupLogger(loglevel string) {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(os.Stdout, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)
	slog.SetDefault(slog.New(errFmtHandler))

	// Route pkg/errors warnings through zerolog with structured fields.
	zl := zerolog.New(os.Stderr).With().Timestamp().Logger()
	pkgerrors.SetZerologWarnFunc(func(warning error) {
		ev := zl.Warn()
		if obj, ok := warning.(zerolog.LogObjectMarshaler); ok {
			ev.EmbedObject(obj)
		}
		ev.Msg(warning.Error())
	})
}

func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
