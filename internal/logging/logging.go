// Package logging provides the diagnostic logger. It stays quiet unless
// debug output was requested.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu           sync.RWMutex
	globalLogger *zap.Logger
	globalLevel  = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
)

// Init builds the global logger. With debug set, everything from debug level
// up is written to stderr in console format; otherwise only errors are.
func Init(debug bool) error {
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.DisableStacktrace = true
	config.EncoderConfig.TimeKey = ""
	if debug {
		globalLevel.SetLevel(zapcore.DebugLevel)
	} else {
		globalLevel.SetLevel(zapcore.ErrorLevel)
	}
	config.Level = globalLevel

	logger, err := config.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	globalLogger = logger
	mu.Unlock()
	return nil
}

// L returns the global logger, a no-op one if Init was never called.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if globalLogger == nil {
		return zap.NewNop()
	}
	return globalLogger
}

// Named returns a child logger for a component.
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// Sync flushes any buffered log entries.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}
