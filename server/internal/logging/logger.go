package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pgEdge/recordstore/server/internal/config"
)

const defaultLevel = zerolog.InfoLevel

// NewLogger returns the service logger. Output goes to out, which is stderr
// outside of tests so that command output on stdout stays parseable. Every
// entry carries the key root of the store being served.
func NewLogger(cfg config.Config, out io.Writer) (zerolog.Logger, error) {
	level := defaultLevel
	if cfg.Logging.Level != "" {
		l, err := zerolog.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("failed to parse log level '%s': %w", cfg.Logging.Level, err)
		}
		level = l
	}
	if cfg.Logging.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	ctx := zerolog.New(out).
		Level(level).
		With().
		Timestamp()
	if cfg.KeyRoot != "" {
		ctx = ctx.Str("key_root", cfg.KeyRoot)
	}

	return ctx.Logger(), nil
}

// Fatal logs through the global zerolog logger and exits. It's for failures
// that happen before the service logger exists, such as config errors.
func Fatal(err any, msg string) {
	logger := log.With().
		Timestamp().
		Caller().
		Logger()
	event := logger.Fatal().CallerSkipFrame(2)

	if e, ok := err.(error); ok {
		event.Err(e).Msg(msg)
		return
	}
	event.Interface("error", err).Msg(msg)
}
