package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		wantOK bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"verbose", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); (got != nil) != tt.wantOK {
			t.Errorf("parseLevel(%q) = %v, wantOK %v", tt.in, got, tt.wantOK)
		}
	}
}

func TestWithFileWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hookstudio.log")

	log := New("info", false, WithFile(FileOptions{Path: path, MaxSizeMB: 1}))
	log.With(String("component", "test")).Info("hello", Int("n", 1), Bool("ok", true))
	log.Debug("filtered out")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"hello"`) || !strings.Contains(out, `"component":"test"`) {
		t.Errorf("log file missing entry: %s", out)
	}
	if strings.Contains(out, "filtered out") {
		t.Errorf("debug entry written at info level: %s", out)
	}
}
