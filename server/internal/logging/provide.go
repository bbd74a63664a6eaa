package logging

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/samber/do"
	"google.golang.org/grpc/grpclog"

	"github.com/pgEdge/recordstore/server/internal/config"
)

func Provide(i *do.Injector) {
	provideLogger(i)
	provideGrpcLogger(i)
}

func provideLogger(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (zerolog.Logger, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("failed to get config: %w", err)
		}
		logger, err := NewLogger(cfg, os.Stderr)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("failed to create logger: %w", err)
		}
		return logger, nil
	})
}

func provideGrpcLogger(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (grpclog.LoggerV2, error) {
		cfg, err := do.Invoke[config.Config](i)
		if err != nil {
			return nil, fmt.Errorf("failed to get config: %w", err)
		}
		logger, err := do.Invoke[zerolog.Logger](i)
		if err != nil {
			return nil, err
		}
		level, err := zerolog.ParseLevel(cfg.EmbeddedEtcd.ClientLogLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to parse grpc log level: %w", err)
		}
		return Grpc(logger, level), nil
	})
}
