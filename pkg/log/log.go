package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugar *zap.SugaredLogger

func init() {
	// Sane default so packages can log before Init runs (tests, tools).
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	sugar = logger.Sugar()
}

// Init configures the process logger from LOG_LEVEL / LOG_FORMAT settings.
func Init(level, format string) {
	logLevel := zap.NewAtomicLevel()
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel.SetLevel(zap.InfoLevel)
	}

	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = logLevel
	cfg.OutputPaths = []string{"stdout"}

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	sugar = logger.Sugar()
}

// Sync flushes buffered entries; call on shutdown.
func Sync() {
	_ = sugar.Sync()
}

// Info logs at info level.
func Info(args ...any) { sugar.Info(args...) }

// Infof logs a formatted message at info level.
func Infof(template string, args ...any) { sugar.Infof(template, args...) }

// Warnf logs a formatted message at warn level.
func Warnf(template string, args ...any) { sugar.Warnf(template, args...) }

// Errorf logs a formatted message at error level.
func Errorf(template string, args ...any) { sugar.Errorf(template, args...) }

// Fatalf logs a formatted message and exits; reserved for startup faults.
func Fatalf(template string, args ...any) { sugar.Fatalf(template, args...) }
