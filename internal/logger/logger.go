// Package logger configures zerolog for the whole process. Stack traces from
// pkg/errors are rendered into the "stack" field whenever an error carrying
// one reaches the log.
package logger

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.ErrorMarshalFunc = func(err error) interface{} {
		type stackTracer interface {
			StackTrace() errors.StackTrace
		}
		if _, ok := err.(stackTracer); ok {
			return err
		}
		return err.Error()
	}
}

// New returns a JSON logger writing to stdout, tagged with the service name.
func New(serviceName string) zerolog.Logger {
	return zerolog.New(os.Stdout).
		With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}

// NewConsole returns a human-readable logger for interactive CLI use.
func NewConsole(level zerolog.Level) zerolog.Logger {
	w := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
