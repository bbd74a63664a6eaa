package logging

import (
	"fmt"

	"github.com/rs/zerolog"
	"go.mau.fi/zerozap"
	"go.uber.org/zap"
	"google.golang.org/grpc/grpclog"
)

// Zap returns a zap logger that writes through the given zerolog logger.
func Zap(base zerolog.Logger, level zerolog.Level) *zap.Logger {
	core := zerozap.New(base.
		Level(level).
		With().
		Logger())
	return zap.New(core)
}

var _ grpclog.LoggerV2 = (*grpcLogger)(nil)

type grpcLogger struct {
	logger zerolog.Logger
}

// Grpc returns a grpclog.LoggerV2 that writes through the given zerolog
// logger. Fatal messages are logged at error level followed by an exit, which
// matches the contract of grpclog.
func Grpc(base zerolog.Logger, level zerolog.Level) grpclog.LoggerV2 {
	return &grpcLogger{
		logger: base.Level(level).
			With().
			Str("component", "grpc").
			Logger(),
	}
}

func (g *grpcLogger) Info(args ...any) {
	g.logger.Info().Msg(fmt.Sprint(args...))
}

func (g *grpcLogger) Infoln(args ...any) {
	g.logger.Info().Msg(sprintln(args...))
}

func (g *grpcLogger) Infof(format string, args ...any) {
	g.logger.Info().Msgf(format, args...)
}

func (g *grpcLogger) Warning(args ...any) {
	g.logger.Warn().Msg(fmt.Sprint(args...))
}

func (g *grpcLogger) Warningln(args ...any) {
	g.logger.Warn().Msg(sprintln(args...))
}

func (g *grpcLogger) Warningf(format string, args ...any) {
	g.logger.Warn().Msgf(format, args...)
}

func (g *grpcLogger) Error(args ...any) {
	g.logger.Error().Msg(fmt.Sprint(args...))
}

func (g *grpcLogger) Errorln(args ...any) {
	g.logger.Error().Msg(sprintln(args...))
}

func (g *grpcLogger) Errorf(format string, args ...any) {
	g.logger.Error().Msgf(format, args...)
}

func (g *grpcLogger) Fatal(args ...any) {
	g.logger.Fatal().Msg(fmt.Sprint(args...))
}

func (g *grpcLogger) Fatalln(args ...any) {
	g.logger.Fatal().Msg(sprintln(args...))
}

func (g *grpcLogger) Fatalf(format string, args ...any) {
	g.logger.Fatal().Msgf(format, args...)
}

// V reports whether verbosity level l is enabled. gRPC uses verbosity levels
// above zero for debug output.
func (g *grpcLogger) V(l int) bool {
	if l <= 0 {
		return g.logger.GetLevel() <= zerolog.InfoLevel
	}
	return g.logger.GetLevel() <= zerolog.DebugLevel
}

func sprintln(args ...any) string {
	s := fmt.Sprintln(args...)
	return s[:len(s)-1]
}
