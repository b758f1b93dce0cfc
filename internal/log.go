package internal

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// ParseLogLevel maps LOG_LEVEL values onto a LogLevel, defaulting to info
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LogLevelError
	case "WARN", "WARNING":
		return LogLevelWarn
	case "DEBUG", "TRACE":
		return LogLevelDebug
	default:
		return LogLevelInfo
	}
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LogLevelError:
		return zapcore.ErrorLevel
	case LogLevelWarn:
		return zapcore.WarnLevel
	case LogLevelDebug:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger provides leveled, printf-style logging on top of zap
type Logger struct {
	zap *zap.Logger
}

// NewLogger creates a logger with the given level; format is "json" or "console"
func NewLogger(level LogLevel, format string) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level.zapLevel())
	cfg.DisableStacktrace = level != LogLevelDebug

	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{zap: z}, nil
}

// NewNopLogger discards everything; used by tests
func NewNopLogger() *Logger {
	return &Logger{zap: zap.NewNop()}
}

// FromZap wraps an existing zap logger
func FromZap(z *zap.Logger) *Logger {
	return &Logger{zap: z}
}

// With returns a child logger carrying structured fields
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zap: l.zap.With(fields...)}
}

// Zap exposes the underlying structured logger
func (l *Logger) Zap() *zap.Logger {
	return l.zap
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.zap.Sugar().Errorf(format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zap.Sugar().Warnf(format, args...)
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.zap.Sugar().Infof(format, args...)
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zap.Sugar().Debugf(format, args...)
}

// Sync flushes buffered entries
func (l *Logger) Sync() {
	_ = l.zap.Sync()
}
