package logger

import (
	"fmt"

	"github.com/vzahanych/kma-weather/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	*zap.Logger
}

// New builds a logger from cfg. Format "console" selects the development
// encoder; anything else logs JSON.
func New(cfg config.LoggingConfig) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	if cfg.OutputPath != "" {
		zcfg.OutputPaths = []string{cfg.OutputPath}
	}

	l, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{l}, nil
}

func NewDevelopment() *Logger {
	l, _ := zap.NewDevelopment()
	return &Logger{l}
}

func NewProduction() *Logger {
	l, _ := zap.NewProduction()
	return &Logger{l}
}

func NewNop() *Logger {
	return &Logger{zap.NewNop()}
}

func (l *Logger) Sync() error {
	return l.Logger.Sync()
}
