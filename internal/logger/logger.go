package logger

import (
	"nutriplat/coaching-api/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init builds the global zap logger from config and installs it via
// zap.ReplaceGlobals. Callers log through zap.L().
func Init(cfg config.LogConfig) (*zap.Logger, error) {
	var logConfig zap.Config
	if cfg.Development {
		logConfig = zap.NewDevelopmentConfig()
		logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		logConfig = zap.NewProductionConfig()
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}
	logConfig.Level.SetLevel(level)

	log, err := logConfig.Build()
	if err != nil {
		return nil, err
	}

	zap.ReplaceGlobals(log)
	log.Info("logger initialized", zap.String("level", level.String()))
	return log, nil
}
