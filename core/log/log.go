package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	once   sync.Once
	logger *zap.SugaredLogger
)

// L returns the process logger. Level comes from LOG_LEVEL (debug, info,
// warn, error; default info), encoding from LOG_FORMAT (json or console).
func L() *zap.SugaredLogger {
	once.Do(func() {
		logger = build()
	})
	return logger
}

func build() *zap.SugaredLogger {
	var level zapcore.Level
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoding := "json"
	if os.Getenv("LOG_FORMAT") == "console" {
		encoding = "console"
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         encoding,
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	l, err := cfg.Build()
	if err != nil {
		l = zap.NewNop()
	}
	return l.Sugar()
}

// ReplaceForTesting swaps the logger (tests only).
func ReplaceForTesting(l *zap.SugaredLogger) {
	once.Do(func() {})
	logger = l
}
