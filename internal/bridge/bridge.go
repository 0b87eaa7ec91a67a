// Package bridge is the host adapter: outbound fire-and-forget events
// and an inbound NDJSON command surface over arbitrary reader/writer
// pairs (stdio when run as a subprocess of a host shell).
package bridge

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/notelab/livemark/internal/editor"
)

// Event names on the outbound surface.
const (
	EventEditorReady     = "editorReady"
	EventContentChanged  = "contentChanged"
	EventLinkTapped      = "linkTapped"
	EventJSError         = "jsError"
	EventMetadataChanged = "metadataChanged"
)

// Event is one outbound message.
type Event struct {
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload,omitempty"`
}

// NopEmitter drops every event.
type NopEmitter struct{}

// Emit implements editor.Emitter.
func (NopEmitter) Emit(string, map[string]any) {}

// WriterEmitter writes events as NDJSON. Delivery is best-effort: an
// encode or write failure drops the event, it never propagates.
type WriterEmitter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewWriterEmitter wraps w in an NDJSON event stream.
func NewWriterEmitter(w io.Writer) *WriterEmitter {
	return &WriterEmitter{enc: json.NewEncoder(w)}
}

// Emit implements editor.Emitter.
func (e *WriterEmitter) Emit(event string, payload map[string]any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_ = e.enc.Encode(Event{Event: event, Payload: payload})
}

// Command is one inbound NDJSON envelope.
type Command struct {
	Op       string `json:"op"`
	Text     string `json:"text,omitempty"`
	ReadOnly bool   `json:"readOnly,omitempty"`
	Command  string `json:"command,omitempty"`
}

// Serve reads commands from r until EOF and applies them to the
// session, ticking its timers between commands. Unknown or malformed
// input produces a jsError event, never a failure of the loop itself.
// A host with no outbound channel cannot mount: the session is marked
// failed and Serve returns without reading commands.
func Serve(r io.Reader, session *editor.Session, emitter editor.Emitter, clock func() time.Time) error {
	if emitter == nil {
		session.MountFailed("no outbound event channel")
		return errors.New("bridge: nil emitter")
	}
	if clock == nil {
		clock = time.Now
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	session.Mount()
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			session.Tick(clock())
			continue
		}
		var cmd Command
		if err := json.Unmarshal(line, &cmd); err != nil {
			emitError(emitter, fmt.Sprintf("malformed command: %v", err))
			continue
		}
		Dispatch(session, emitter, cmd)
		session.Tick(clock())
	}
	// Flush a pending debounce so the host gets the final content.
	session.Tick(clock().Add(time.Hour))
	return scanner.Err()
}

// Dispatch applies one inbound command to the session.
func Dispatch(session *editor.Session, emitter editor.Emitter, cmd Command) {
	switch cmd.Op {
	case "setMarkdown":
		session.SetMarkdown(cmd.Text)
	case "getMarkdown":
		emit(emitter, "markdown", map[string]any{"text": session.GetMarkdown()})
	case "setReadOnly":
		session.SetReadOnly(cmd.ReadOnly)
	case "focus":
		session.Focus()
	case "applyCommand":
		applied := session.ApplyCommand(cmd.Command)
		emit(emitter, "commandResult", map[string]any{
			"command": cmd.Command,
			"applied": applied,
		})
	default:
		emitError(emitter, fmt.Sprintf("unknown op %q", cmd.Op))
	}
}

func emit(emitter editor.Emitter, event string, payload map[string]any) {
	if emitter == nil {
		return
	}
	emitter.Emit(event, payload)
}

func emitError(emitter editor.Emitter, message string) {
	emit(emitter, EventJSError, map[string]any{"message": message, "type": "bridge"})
}
