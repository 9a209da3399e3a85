// Package log provides the process-wide zap logger.
package log

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapio"
)

var (
	baseLogger = zap.NewNop()
	sugared    = baseLogger.Sugar()
	debugOn    bool
)

// Init initializes the package-level logger. An empty path logs to stderr.
func Init(debug bool, path string) error {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	if path != "" {
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	} else {
		cfg.OutputPaths = []string{"stderr"}
	}
	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("build zap logger: %w", err)
	}
	baseLogger = logger
	sugared = logger.Sugar()
	debugOn = debug
	return nil
}

// Debugging reports whether Init was called with debug enabled.
func Debugging() bool {
	return debugOn
}

func get() *zap.SugaredLogger {
	return sugared
}

// Writer returns a line writer that logs each line at debug level, for
// libraries that only accept an io.Writer.
func Writer() io.Writer {
	return &zapio.Writer{Log: baseLogger, Level: zapcore.DebugLevel}
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = sugared.Sync()
}

func Debugw(msg string, keysAndValues ...any) {
	get().Debugw(msg, keysAndValues...)
}

func Infow(msg string, keysAndValues ...any) {
	get().Infow(msg, keysAndValues...)
}

func Warnw(msg string, keysAndValues ...any) {
	get().Warnw(msg, keysAndValues...)
}

func Errorw(msg string, keysAndValues ...any) {
	get().Errorw(msg, keysAndValues...)
}
