package debuglog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoggerWritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	l, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.LogCommand("setMarkdown", `{"op":"setMarkdown","text":"x"}`)
	l.LogEvent("contentChanged", map[string]any{"text": "x"})
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var entries []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e map[string]any
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("bad JSONL line %q: %v", sc.Text(), err)
		}
		entries = append(entries, e)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0]["dir"] != "in" || entries[0]["type"] != "setMarkdown" {
		t.Errorf("unexpected first entry: %v", entries[0])
	}
	if entries[1]["dir"] != "out" || entries[1]["type"] != "contentChanged" {
		t.Errorf("unexpected second entry: %v", entries[1])
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.LogEvent("contentChanged", nil)
	l.LogCommand("focus", "")
	if l.Path() != "" {
		t.Error("nil logger should have empty path")
	}
	if err := l.Close(); err != nil {
		t.Errorf("Close on nil: %v", err)
	}
}

func TestFromEnvUnset(t *testing.T) {
	t.Setenv(EnvVar, "")
	if l := FromEnv(); l != nil {
		t.Error("expected nil logger when env var is unset")
	}
}
