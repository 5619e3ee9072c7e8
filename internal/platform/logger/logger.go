package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger configured for the given application environment.
// Development environments get a human-readable console encoder, everything
// else gets production JSON output.
func New(appEnv string) (*zap.Logger, error) {
	if appEnv == "development" {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg.Build()
	}

	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// NewNamed creates a zap logger tagged with the service name.
func NewNamed(appEnv, service string) (*zap.Logger, error) {
	log, err := New(appEnv)
	if err != nil {
		return nil, err
	}
	return log.With(zap.String("service", service)), nil
}
