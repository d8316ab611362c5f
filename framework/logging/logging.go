// Package logging builds the host's structured logger from configuration.
package logging

import (
	"fmt"

	"github.com/km-arc/go-extkit/framework/config"
	"github.com/km-arc/go-extkit/framework/container"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Token is the container token the host *zap.Logger is bound under.
var Token = container.NewToken[*zap.Logger]("logger")

// New returns a logger for cfg. LOG_FORMAT picks the encoder; when it is
// empty, production environments log JSON and everything else logs to the
// console.
func New(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	var zc zap.Config
	switch format(cfg) {
	case "json":
		zc = zap.NewProductionConfig()
	default:
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Development = cfg.App.Debug

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	return logger.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env)), nil
}

func format(cfg *config.Config) string {
	if cfg.Log.Format != "" {
		return cfg.Log.Format
	}
	if cfg.IsProduction() {
		return "json"
	}
	return "console"
}
