package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerWritesJSONToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "checkout.log")
	logger, err := NewLogger(Options{Service: "minishop-checkout", Env: "test", Level: "debug", File: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug("hello")
	_ = logger.Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := strings.TrimSpace(string(raw))
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("not json: %q", line)
	}
	for key, want := range map[string]string{"msg": "hello", "level": "debug", "service": "minishop-checkout", "env": "test"} {
		if entry[key] != want {
			t.Fatalf("%s = %v, want %s", key, entry[key], want)
		}
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatal("missing ts")
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	if _, err := NewLogger(Options{Service: "s", Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
