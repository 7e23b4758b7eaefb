package logger

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInit(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		logFile   string
		wantLevel zapcore.Level
	}{
		{
			name:      "debug level, console output",
			level:     "debug",
			wantLevel: zapcore.DebugLevel,
		},
		{
			name:      "warn level, console output",
			level:     "warn",
			wantLevel: zapcore.WarnLevel,
		},
		{
			name:      "error level, console output",
			level:     "error",
			wantLevel: zapcore.ErrorLevel,
		},
		{
			name:      "unknown level defaults to info",
			level:     "verbose",
			wantLevel: zapcore.InfoLevel,
		},
		{
			name:      "fatal is not accepted as a base level",
			level:     "fatal",
			wantLevel: zapcore.InfoLevel,
		},
		{
			name:      "log file",
			level:     "info",
			logFile:   filepath.Join(t.TempDir(), "harvest.log"),
			wantLevel: zapcore.InfoLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Log = nil

			if err := Init(tt.level, tt.logFile); err != nil {
				t.Fatalf("Init() error = %v", err)
			}
			if Log == nil {
				t.Fatal("Init() succeeded but Log is nil")
			}

			if !Log.Core().Enabled(tt.wantLevel) {
				t.Errorf("level %s not enabled", tt.wantLevel)
			}
			if tt.wantLevel > zapcore.DebugLevel && Log.Core().Enabled(tt.wantLevel-1) {
				t.Errorf("level below %s unexpectedly enabled", tt.wantLevel)
			}

			_ = Log.Sync()
		})
	}
}

func TestGet(t *testing.T) {
	Log = nil
	if Get() == nil {
		t.Fatal("Get() returned nil without Init")
	}

	Log, _ = zap.NewDevelopment()
	if Get() != Log {
		t.Error("Get() did not return the initialized logger")
	}
}

func TestSync(t *testing.T) {
	Log = nil
	if err := Sync(); err != nil {
		t.Errorf("Sync() with nil logger = %v, want nil", err)
	}

	Log, _ = zap.NewDevelopment()
	// stdout sync can fail on some platforms
	_ = Sync()
}

func TestInitWithLogFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "app.log")

	if err := Init("info", logFile); err != nil {
		t.Fatalf("Init() with log file failed: %v", err)
	}

	Log.Info("test message")
	_ = Sync()

	if _, err := os.Stat(logFile); os.IsNotExist(err) {
		t.Error("Log file was not created")
	}
}
