package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger writing to stdout and, if logFile is non-empty, to a
// single run log that is truncated at startup. One line is emitted per
// availability check and per error.
func New(level, logFile string) (*zap.Logger, error) {
	var lvl zapcore.Level
	switch level {
	case "debug":
		lvl = zap.DebugLevel
	case "info":
		lvl = zap.InfoLevel
	case "warn":
		lvl = zap.WarnLevel
	case "error":
		lvl = zap.ErrorLevel
	default:
		lvl = zap.InfoLevel
	}

	outputs := []string{"stdout"}
	if logFile != "" {
		// zap appends; the log is per-run, so drop the previous one
		if err := os.Remove(logFile); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		outputs = append(outputs, logFile)
	}

	cfg := zap.Config{
		Encoding:         "console",
		Level:            zap.NewAtomicLevelAt(lvl),
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
	}

	return cfg.Build()
}
