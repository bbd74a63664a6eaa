package etcd

import (
	"fmt"

	"github.com/rs/zerolog"
	"go.uber.org/zap"

	"github.com/pgEdge/recordstore/server/internal/logging"
)

func newZapLogger(base zerolog.Logger, logLevel, component string) (*zap.Logger, error) {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse etcd log level: %w", err)
	}
	return logging.Zap(base.With().
		Str("component", component).
		CallerWithSkipFrameCount(5). // Found via trial and error
		Logger(), level), nil
}
