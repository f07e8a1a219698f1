// Package logging builds the application logger. The TUI owns stdout,
// so logs go to a file.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Build creates a SugaredLogger writing to path. In debug mode the
// development config is used (human-readable, debug level), otherwise
// production JSON. Falls back to a no-op logger if the file cannot be
// created.
func Build(path string, debug bool) *zap.SugaredLogger {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zap.NewNop().Sugar()
	}

	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
	}
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}
