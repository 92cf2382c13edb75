package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the global logger instance for the application
var Logger *zap.SugaredLogger

func init() {
	Logger = newDefault()
}

// newDefault builds the production logger used until Init is called.
// The caller skip makes entries point at the code calling the package helpers.
func newDefault(opts ...zap.Option) *zap.SugaredLogger {
	logger, err := zap.NewProduction(append([]zap.Option{zap.AddCallerSkip(1)}, opts...)...)
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

// Init replaces the global logger with a console logger writing to stderr at the given level
func Init(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	Logger = zap.New(
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
				TimeKey:      "ts",
				LevelKey:     "lvl",
				MessageKey:   "message",
				CallerKey:    "caller",
				EncodeLevel:  zapcore.CapitalLevelEncoder,
				EncodeTime:   zapcore.RFC3339TimeEncoder,
				EncodeCaller: zapcore.ShortCallerEncoder,
			}),
			zapcore.AddSync(os.Stderr),
			zap.NewAtomicLevelAt(lvl),
		),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
	).Sugar()
	return nil
}

// Sync flushes any buffered log entries
func Sync() {
	_ = Logger.Sync()
}

// Top-level helpers for package alias usage
func Infof(format string, args ...interface{})  { Logger.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { Logger.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { Logger.Errorf(format, args...) }
func Debugf(format string, args ...interface{}) { Logger.Debugf(format, args...) }
func Fatalf(format string, args ...interface{}) { Logger.Fatalf(format, args...) }

// Structured helpers, used at component boundaries
func Infow(msg string, kv ...interface{})  { Logger.Infow(msg, kv...) }
func Warnw(msg string, kv ...interface{})  { Logger.Warnw(msg, kv...) }
func Errorw(msg string, kv ...interface{}) { Logger.Errorw(msg, kv...) }
func Debugw(msg string, kv ...interface{}) { Logger.Debugw(msg, kv...) }
