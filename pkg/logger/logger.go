package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envLocal = "local"

var global = zap.NewNop()

// Init configures the process-wide logger. Development output for local runs,
// JSON for everything else.
func Init(env string, level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	var cfg zap.Config
	if env == envLocal {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}

	global = l.With(zap.String("env", env))

	return nil
}

func Logger() *zap.Logger {
	return global
}

func Sync() {
	_ = global.Sync()
}

func Debug(msg string, fields ...zap.Field) {
	global.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	global.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	global.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	global.Error(msg, fields...)
}
