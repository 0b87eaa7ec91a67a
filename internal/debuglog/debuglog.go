// Package debuglog appends editor session traffic to a JSONL file for
// debugging. A nil *Logger is valid and drops everything, so call sites
// never need to guard.
package debuglog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EnvVar names the environment variable that enables session logging.
const EnvVar = "LIVEMARK_DEBUG_LOG"

// Logger writes timestamped JSONL entries. Safe for concurrent use.
type Logger struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	path   string
}

type entry struct {
	Timestamp string         `json:"timestamp"`
	Dir       string         `json:"dir"` // "in" for commands, "out" for events
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	Raw       string         `json:"raw,omitempty"`
}

// New opens (or creates) the log file for appending.
func New(path string) (*Logger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log dir: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log: %w", err)
	}
	return &Logger{
		file:   file,
		writer: bufio.NewWriter(file),
		path:   path,
	}, nil
}

// FromEnv opens the log file named by LIVEMARK_DEBUG_LOG, or returns
// nil when the variable is unset. Open failures are reported on stderr
// and disable logging rather than aborting the session.
func FromEnv() *Logger {
	path := os.Getenv(EnvVar)
	if path == "" {
		return nil
	}
	l, err := New(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "debuglog:", err)
		return nil
	}
	return l
}

// Path returns the log file path, "" for a nil logger.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// LogEvent records an outbound session event.
func (l *Logger) LogEvent(event string, payload map[string]any) {
	if l == nil {
		return
	}
	l.write(entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Dir:       "out",
		Type:      event,
		Payload:   payload,
	})
}

// LogCommand records an inbound command line.
func (l *Logger) LogCommand(op, raw string) {
	if l == nil {
		return
	}
	l.write(entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Dir:       "in",
		Type:      op,
		Raw:       raw,
	})
}

func (l *Logger) write(e entry) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writer == nil {
		return
	}
	l.writer.Write(data)
	l.writer.WriteByte('\n')
	l.writer.Flush()
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writer != nil {
		l.writer.Flush()
		l.writer = nil
	}
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}
