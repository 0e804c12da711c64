// Package logging provides the error reporting collaborator used by the
// citation engine, backed by zap.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Reporter receives failures that the engine recovers from.
// Reports are fire-and-forget: implementations must not block or fail.
type Reporter interface {
	Report(msg string, err error, userVisible bool, source string)
}

// NewLogger builds the process logger writing to stderr.
// Verbose mode uses the human-friendly console encoder at debug level.
func NewLogger(verbose bool) (*zap.Logger, error) {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		cfg.Sampling = nil
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// ZapReporter reports failures as structured error entries.
type ZapReporter struct {
	logger *zap.Logger
}

// NewReporter returns a Reporter writing to logger. A nil logger yields a no-op reporter.
func NewReporter(logger *zap.Logger) *ZapReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapReporter{logger: logger}
}

// Report implements Reporter.
func (r *ZapReporter) Report(msg string, err error, userVisible bool, source string) {
	fields := []zap.Field{
		zap.String("source", source),
		zap.Bool("user_visible", userVisible),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	r.logger.Error(msg, fields...)
}

// Nop returns a Reporter that discards everything.
func Nop() Reporter {
	return NewReporter(nil)
}
