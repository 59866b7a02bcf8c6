// Package logging is the diagnostics sink for the gate. It is silent unless
// debug is enabled; nothing in the pipeline depends on its output.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// #region logger

// Logger emits leveled diagnostics. The zero value and NewNop are safe no-ops.
type Logger struct {
	s *zap.SugaredLogger
}

// New builds a Logger. When debug is false all methods are no-ops.
func New(debug bool) *Logger {
	if !debug {
		return NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.DisableStacktrace = true
	z, err := cfg.Build()
	if err != nil {
		return NewNop()
	}
	return &Logger{s: z.Sugar()}
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{s: zap.NewNop().Sugar()}
}

// #endregion logger

// #region levels

// Infof logs at info severity.
func (l *Logger) Infof(format string, args ...any) {
	l.s.Infof(format, args...)
}

// Warnf logs at warn severity.
func (l *Logger) Warnf(format string, args ...any) {
	l.s.Warnf(format, args...)
}

// Errorf logs at error severity.
func (l *Logger) Errorf(format string, args ...any) {
	l.s.Errorf(format, args...)
}

// Successf logs a success marker. Rendered at info with a status field so
// accepted-turn lines are greppable apart from ordinary info chatter.
func (l *Logger) Successf(format string, args ...any) {
	l.s.With("status", "success").Infof(format, args...)
}

// Sync flushes buffered output. Safe to call on no-op loggers.
func (l *Logger) Sync() {
	_ = l.s.Sync()
}

// #endregion levels
