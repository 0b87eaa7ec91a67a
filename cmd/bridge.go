package cmd

import (
	"bytes"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/notelab/livemark/internal/bridge"
	"github.com/notelab/livemark/internal/debuglog"
	"github.com/notelab/livemark/internal/editor"
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Drive an editor session over stdio",
	Long: `Run a headless editor session wired to stdin/stdout with
newline-delimited JSON: commands in, events out. This is the embedding
surface for hosts that render the document themselves.

Commands:
  {"op":"setMarkdown","text":"..."}
  {"op":"getMarkdown"}
  {"op":"setReadOnly","readOnly":true}
  {"op":"focus"}
  {"op":"applyCommand","command":"bold"}

Set LIVEMARK_DEBUG_LOG=<path> to record the session traffic as JSONL.`,
	RunE: runBridge,
}

func init() {
	rootCmd.AddCommand(bridgeCmd)
}

func runBridge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := debuglog.FromEnv()
	defer log.Close()

	var emitter editor.Emitter = bridge.NewWriterEmitter(os.Stdout)
	if log != nil {
		emitter = loggingEmitter{next: emitter, log: log}
	}
	var in io.Reader = os.Stdin
	if log != nil {
		in = io.TeeReader(in, &commandLogWriter{log: log})
	}

	session := editor.NewSession(editorConfig(cfg), emitter, nil)
	session.SetReadOnly(cfg.Editor.ReadOnly)
	return bridge.Serve(in, session, emitter, time.Now)
}

// loggingEmitter records outbound events before forwarding them.
type loggingEmitter struct {
	next editor.Emitter
	log  *debuglog.Logger
}

func (e loggingEmitter) Emit(event string, payload map[string]any) {
	e.log.LogEvent(event, payload)
	e.next.Emit(event, payload)
}

// commandLogWriter splits the inbound stream back into lines and records
// each command.
type commandLogWriter struct {
	log *debuglog.Logger
	buf bytes.Buffer
}

func (w *commandLogWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := strings.TrimRight(string(w.buf.Next(i+1)), "\r\n")
		if line != "" {
			w.log.LogCommand("line", line)
		}
	}
	return len(p), nil
}
