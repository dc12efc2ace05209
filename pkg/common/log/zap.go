package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a zap logger to the Logger interface. Messages keep their
// printf-style formatting and fields become structured zap fields.
type ZapLogger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
}

var _ Logger = (*ZapLogger)(nil)

// NewZapLogger builds a production (JSON) or development (console) zap logger
func NewZapLogger(level Level, development bool) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	atom := zap.NewAtomicLevelAt(toZapLevel(level))
	cfg.Level = atom

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &ZapLogger{sugar: logger.Sugar(), level: atom}, nil
}

// NewZapLoggerFrom wraps an existing zap logger
func NewZapLoggerFrom(logger *zap.Logger, level Level) *ZapLogger {
	return &ZapLogger{
		sugar: logger.WithOptions(zap.AddCallerSkip(1)).Sugar(),
		level: zap.NewAtomicLevelAt(toZapLevel(level)),
	}
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelFatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func fromZapLevel(level zapcore.Level) Level {
	switch level {
	case zapcore.DebugLevel:
		return LevelDebug
	case zapcore.WarnLevel:
		return LevelWarn
	case zapcore.ErrorLevel:
		return LevelError
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Debug logs a debug-level message
func (z *ZapLogger) Debug(msg string, args ...interface{}) {
	if z.level.Enabled(zapcore.DebugLevel) {
		z.sugar.Debugf(msg, args...)
	}
}

// Info logs an info-level message
func (z *ZapLogger) Info(msg string, args ...interface{}) {
	if z.level.Enabled(zapcore.InfoLevel) {
		z.sugar.Infof(msg, args...)
	}
}

// Warn logs a warning-level message
func (z *ZapLogger) Warn(msg string, args ...interface{}) {
	if z.level.Enabled(zapcore.WarnLevel) {
		z.sugar.Warnf(msg, args...)
	}
}

// Error logs an error-level message
func (z *ZapLogger) Error(msg string, args ...interface{}) {
	if z.level.Enabled(zapcore.ErrorLevel) {
		z.sugar.Errorf(msg, args...)
	}
}

// Fatal logs a fatal-level message and then exits
func (z *ZapLogger) Fatal(msg string, args ...interface{}) {
	z.sugar.Fatalf(msg, args...)
}

// WithFields returns a new logger with the given fields added to the context
func (z *ZapLogger) WithFields(fields map[string]interface{}) Logger {
	kv := make([]interface{}, 0, 2*len(fields))
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return &ZapLogger{sugar: z.sugar.With(kv...), level: z.level}
}

// WithField returns a new logger with the given field added to the context
func (z *ZapLogger) WithField(key string, value interface{}) Logger {
	return &ZapLogger{sugar: z.sugar.With(key, value), level: z.level}
}

// GetLevel returns the current logging level
func (z *ZapLogger) GetLevel() Level {
	return fromZapLevel(z.level.Level())
}

// SetLevel sets the logging level
func (z *ZapLogger) SetLevel(level Level) {
	z.level.SetLevel(toZapLevel(level))
}

// Sync flushes buffered log entries
func (z *ZapLogger) Sync() error {
	return z.sugar.Sync()
}
