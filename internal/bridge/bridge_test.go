package bridge

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/notelab/livemark/internal/editor"
)

func decodeEvents(t *testing.T, out *bytes.Buffer) []Event {
	t.Helper()
	var events []Event
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("bad event line %q: %v", scanner.Text(), err)
		}
		events = append(events, e)
	}
	return events
}

func findEvent(events []Event, name string) (Event, bool) {
	for _, e := range events {
		if e.Event == name {
			return e, true
		}
	}
	return Event{}, false
}

func TestServeSetAndGet(t *testing.T) {
	var out bytes.Buffer
	emitter := NewWriterEmitter(&out)
	session := editor.NewSession(editor.DefaultConfig(), emitter, nil)

	in := strings.NewReader(
		`{"op":"setMarkdown","text":"# Hi\n"}` + "\n" +
			`{"op":"getMarkdown"}` + "\n")
	if err := Serve(in, session, emitter, nil); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	events := decodeEvents(t, &out)
	if _, ok := findEvent(events, EventEditorReady); !ok {
		t.Error("no editorReady event")
	}
	reply, ok := findEvent(events, "markdown")
	if !ok || reply.Payload["text"] != "# Hi\n" {
		t.Errorf("markdown reply = %+v ok=%v", reply, ok)
	}
	// Host-pushed content is suppressed: no contentChanged even after
	// the final flush tick.
	if e, ok := findEvent(events, EventContentChanged); ok {
		t.Errorf("unexpected contentChanged: %+v", e)
	}
}

func TestServeNilEmitter(t *testing.T) {
	var out bytes.Buffer
	session := editor.NewSession(editor.DefaultConfig(), NewWriterEmitter(&out), nil)

	in := strings.NewReader(`{"op":"setMarkdown","text":"hi\n"}` + "\n")
	if err := Serve(in, session, nil, nil); err == nil {
		t.Fatal("Serve with no outbound channel should fail")
	}

	events := decodeEvents(t, &out)
	e, ok := findEvent(events, EventJSError)
	if !ok || e.Payload["type"] != "mountFailure" {
		t.Fatalf("jsError = %+v ok=%v", e, ok)
	}
	if _, ok := findEvent(events, EventEditorReady); ok {
		t.Error("failed mount should not announce editorReady")
	}
	if session.Mounted() {
		t.Error("session should not report a live surface")
	}
}

func TestServeApplyCommand(t *testing.T) {
	var out bytes.Buffer
	emitter := NewWriterEmitter(&out)
	session := editor.NewSession(editor.DefaultConfig(), emitter, nil)

	in := strings.NewReader(
		`{"op":"setMarkdown","text":"text\n"}` + "\n" +
			`{"op":"applyCommand","command":"heading2"}` + "\n" +
			`{"op":"getMarkdown"}` + "\n")
	if err := Serve(in, session, emitter, nil); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	events := decodeEvents(t, &out)
	result, ok := findEvent(events, "commandResult")
	if !ok || result.Payload["applied"] != true {
		t.Fatalf("commandResult = %+v ok=%v", result, ok)
	}
	reply, _ := findEvent(events, "markdown")
	if reply.Payload["text"] != "## text\n" {
		t.Errorf("text after command = %v", reply.Payload["text"])
	}
	// The command edit notifies once the flush tick passes the
	// debounce.
	if _, ok := findEvent(events, EventContentChanged); !ok {
		t.Error("no contentChanged after user-originated command")
	}
}

func TestServeReadOnlyGate(t *testing.T) {
	var out bytes.Buffer
	emitter := NewWriterEmitter(&out)
	session := editor.NewSession(editor.DefaultConfig(), emitter, nil)

	in := strings.NewReader(
		`{"op":"setMarkdown","text":"text\n"}` + "\n" +
			`{"op":"setReadOnly","readOnly":true}` + "\n" +
			`{"op":"applyCommand","command":"bold"}` + "\n")
	if err := Serve(in, session, emitter, nil); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	events := decodeEvents(t, &out)
	result, ok := findEvent(events, "commandResult")
	if !ok || result.Payload["applied"] != false {
		t.Errorf("commandResult = %+v ok=%v, want applied=false", result, ok)
	}
}

func TestServeBadInput(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"unknown op", `{"op":"explode"}`},
		{"malformed json", `{"op":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			emitter := NewWriterEmitter(&out)
			session := editor.NewSession(editor.DefaultConfig(), emitter, nil)

			if err := Serve(strings.NewReader(tt.line+"\n"), session, emitter, nil); err != nil {
				t.Fatalf("Serve: %v", err)
			}
			events := decodeEvents(t, &out)
			if _, ok := findEvent(events, EventJSError); !ok {
				t.Errorf("no jsError for %q; events: %+v", tt.line, events)
			}
		})
	}
}

func TestWriterEmitterNDJSON(t *testing.T) {
	var out bytes.Buffer
	e := NewWriterEmitter(&out)
	e.Emit(EventLinkTapped, map[string]any{"href": "https://x.dev"})
	e.Emit(EventEditorReady, nil)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("wrote %d lines, want 2", len(lines))
	}
	var first Event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 1 not json: %v", err)
	}
	if first.Event != EventLinkTapped || first.Payload["href"] != "https://x.dev" {
		t.Errorf("first event = %+v", first)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errWrite
}

var errWrite = &writeError{}

type writeError struct{}

func (*writeError) Error() string { return "sink closed" }

func TestWriterEmitterBestEffort(t *testing.T) {
	e := NewWriterEmitter(failingWriter{})
	// Must not panic or block on a dead sink.
	e.Emit(EventContentChanged, map[string]any{"text": "x"})
}

func TestServeTicksClock(t *testing.T) {
	now := time.Unix(0, 0)
	clock := func() time.Time { return now }
	var out bytes.Buffer
	emitter := NewWriterEmitter(&out)
	session := editor.NewSession(editor.DefaultConfig(), emitter, clock)

	in := strings.NewReader(`{"op":"setMarkdown","text":"a\n"}` + "\n")
	if err := Serve(in, session, emitter, clock); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	if !session.Mounted() {
		t.Error("session not mounted by Serve")
	}
}
