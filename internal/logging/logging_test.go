package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatConsole, false},
		{"console", FormatConsole, false},
		{" JSON ", FormatJSON, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestNew_JSONLevels(t *testing.T) {
	t.Parallel()
	out := filepath.Join(t.TempDir(), "log.json")

	log, err := New(Options{Format: FormatJSON, OutputPaths: []string{out}})
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("hidden")
	log.Info("shown")
	_ = log.Sync()

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), data)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "shown" {
		t.Errorf("msg = %v, want shown", entry["msg"])
	}
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	t.Parallel()
	log, err := New(Options{Verbose: true, OutputPaths: []string{filepath.Join(t.TempDir(), "log")}})
	if err != nil {
		t.Fatal(err)
	}
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level not enabled with Verbose")
	}
}

func TestOrNop(t *testing.T) {
	t.Parallel()
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
}
