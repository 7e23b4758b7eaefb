// Package logger holds the process-wide zap logger used by the harvester binaries.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log *zap.Logger

// Init builds Log. With a log file the production (JSON) config is used and
// entries go to both the file and stdout; otherwise the console development
// config is used. Unknown levels fall back to info.
func Init(level string, logFile string) error {
	var config zap.Config

	if logFile != "" {
		config = zap.NewProductionConfig()
		config.OutputPaths = []string{logFile, "stdout"}
	} else {
		config = zap.NewDevelopmentConfig()
		config.DisableStacktrace = true
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil || lvl < zapcore.DebugLevel || lvl > zapcore.ErrorLevel {
		lvl = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(lvl)

	Log, err = config.Build()
	if err != nil {
		return err
	}

	return nil
}

// Get returns Log, or a no-op logger when Init has not been called.
func Get() *zap.Logger {
	if Log == nil {
		return zap.NewNop()
	}
	return Log
}

func Sync() error {
	if Log != nil {
		return Log.Sync()
	}
	return nil
}
