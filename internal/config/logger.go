package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. Output goes to path, or stderr when
// path is "-" or empty; the TUI owns the terminal otherwise. verbose forces
// debug level.
func NewLogger(lc LogConfig, path string, verbose bool) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
	}

	out := path
	if out == "" || out == "-" {
		out = "stderr"
	}

	zc := zap.NewProductionConfig()
	zc.Level = level
	zc.Encoding = lc.Format
	if zc.Encoding == "" {
		zc.Encoding = "console"
	}
	zc.OutputPaths = []string{out}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.Sampling = nil

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger.Named("credisur"), nil
}
