package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	t.Run("BasicLogging", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "TEST", FlagLevel|FlagPrefix)

		logger.Info("Hello %s", "World")

		output := buf.String()
		for _, want := range []string{"[INFO]", "[TEST]", "Hello World\n"} {
			if !strings.Contains(output, want) {
				t.Errorf("Missing %q in %q", want, output)
			}
		}
	})

	t.Run("LogLevels", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "", FlagLevel)
		logger.SetLevel(LogLevelWarn)

		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")
		logger.Error("error message")

		output := buf.String()
		if strings.Contains(output, "debug message") || strings.Contains(output, "info message") {
			t.Error("Messages below Warn should not be logged")
		}
		if !strings.Contains(output, "warn message") || !strings.Contains(output, "error message") {
			t.Error("Warn and Error should be logged")
		}
	})

	t.Run("Off", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "", DefaultFlags)
		logger.SetLevel(LogLevelOff)

		logger.Error("should not appear")

		if buf.Len() > 0 {
			t.Error("Logger at LogLevelOff should not write")
		}
	})

	t.Run("FileInfo", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "", FlagShortFile|FlagLevel)

		logger.Info("test")

		if !strings.Contains(buf.String(), "logger_test.go:") {
			t.Errorf("Missing caller in output: %s", buf.String())
		}
	})

	t.Run("With", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "rig", FlagPrefix)
		logger.SetLevel(LogLevelDebug)

		logger.With("panel").Debug("range changed")

		if !strings.Contains(buf.String(), "[rig/panel] range changed") {
			t.Errorf("Child prefix missing: %q", buf.String())
		}
	})

	t.Run("DefaultLogger", func(t *testing.T) {
		var buf bytes.Buffer
		SetOutput(&buf)
		SetLevel(LogLevelDebug)
		defer func() {
			SetOutput(os.Stderr)
			SetLevel(LogLevelInfo)
		}()

		Debug("rig %s", "loaded")

		if !strings.Contains(buf.String(), "rig loaded") {
			t.Error("Default logger message missing")
		}
	})
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "rig.log")
	logger, err := NewFileLogger(path, LogLevelWarn)
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("dropped")
	logger.Warn("kept")
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}
	logger.Warn("after close")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if strings.Contains(content, "dropped") || !strings.Contains(content, "kept") {
		t.Errorf("Unexpected file contents: %q", content)
	}
	if strings.Contains(content, "after close") {
		t.Error("Closed logger should discard output")
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevelOff, "OFF"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LogLevelDebug, false},
		{"INFO", LogLevelInfo, false},
		{"", LogLevelInfo, false},
		{"warning", LogLevelWarn, false},
		{"error", LogLevelError, false},
		{"off", LogLevelOff, false},
		{"loud", LogLevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func BenchmarkLogger(b *testing.B) {
	logger := New(bytes.NewBuffer(nil), "BENCH", DefaultFlags)

	b.Run("Enabled", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			logger.Info("Benchmark message %d", i)
		}
	})

	b.Run("BelowLevel", func(b *testing.B) {
		logger.SetLevel(LogLevelError)
		for i := 0; i < b.N; i++ {
			logger.Info("Benchmark message %d", i)
		}
	})
}
