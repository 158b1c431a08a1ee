// Package logger centralizes the zap setup every binary in the platform
// needs instead of repeating it per main.go.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production JSON logger, with a development console
// encoder when env is "dev".
func New(service, env string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "dev" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	logr, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logr.With(zap.String("service", service)), nil
}
