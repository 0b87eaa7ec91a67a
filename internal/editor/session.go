package editor

import (
	"time"

	"github.com/notelab/livemark/internal/decor"
	"github.com/notelab/livemark/internal/document"
	"github.com/notelab/livemark/internal/frontmatter"
	"github.com/notelab/livemark/internal/syntax"
)

// Emitter delivers outbound bridge events. Delivery is fire-and-forget;
// implementations must never block or propagate failures.
type Emitter interface {
	Emit(event string, payload map[string]any)
}

// Config carries the session tunables.
type Config struct {
	Debounce         time.Duration
	Reveal           time.Duration
	Mode             decor.Mode
	CheckboxHitWidth int
}

// DefaultConfig returns the stock timings.
func DefaultConfig() Config {
	return Config{
		Debounce:         250 * time.Millisecond,
		Reveal:           2 * time.Second,
		Mode:             decor.ModeFull,
		CheckboxHitWidth: DefaultCheckboxHitWidth,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Debounce <= 0 {
		c.Debounce = d.Debounce
	}
	if c.Reveal <= 0 {
		c.Reveal = d.Reveal
	}
	if c.CheckboxHitWidth <= 0 {
		c.CheckboxHitWidth = d.CheckboxHitWidth
	}
	return c
}

// Session is one mounted editor instance. All state lives on the
// session; nothing is shared between instances. Sessions are
// single-threaded: the host serializes calls and drives time through
// Tick.
type Session struct {
	cfg     Config
	emitter Emitter
	clock   func() time.Time

	buf      *document.Buffer
	tree     *syntax.Tree
	engine   *decor.Engine
	decos    decor.Set
	viewport decor.Viewport

	mounted     bool
	mountFailed bool
	readOnly    bool
	focused     bool

	suppressNext  bool
	pendingNotify bool
	notifyAt      time.Time
	revealPending bool
	revealUntil   time.Time

	meta frontmatter.Metadata
}

// NewSession builds an unmounted session. A nil clock uses time.Now; a
// nil emitter drops events.
func NewSession(cfg Config, emitter Emitter, clock func() time.Time) *Session {
	if clock == nil {
		clock = time.Now
	}
	s := &Session{
		cfg:     cfg.withDefaults(),
		emitter: emitter,
		clock:   clock,
		buf:     document.NewBuffer(""),
	}
	s.engine = decor.NewEngine(s.cfg.Mode, engineReporter{s}, clock)
	return s
}

type engineReporter struct{ s *Session }

func (r engineReporter) Report(event string, payload map[string]any) {
	r.s.emit("jsError", map[string]any{
		"message":  payload["error"],
		"type":     event,
		"snapshot": payload,
	})
}

func (s *Session) emit(event string, payload map[string]any) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(event, payload)
}

// Mount marks the editing surface ready and announces it. Mounting
// twice is a no-op.
func (s *Session) Mount() {
	if s.mounted || s.mountFailed {
		return
	}
	s.mounted = true
	s.emit("editorReady", map[string]any{})
	s.rebuild()
}

// MountFailed reports a missing surface once and leaves the session
// inert. There is no retry; the host restarts to recover.
func (s *Session) MountFailed(reason string) {
	if s.mounted || s.mountFailed {
		return
	}
	s.mountFailed = true
	s.emit("jsError", map[string]any{"message": reason, "type": "mountFailure"})
}

// Mounted reports whether the surface is live.
func (s *Session) Mounted() bool { return s.mounted }

// ReadOnly reports the edit-permission flag.
func (s *Session) ReadOnly() bool { return s.readOnly }

// Focused reports whether the surface has focus.
func (s *Session) Focused() bool { return s.focused }

// Snapshot returns the current document snapshot.
func (s *Session) Snapshot() *document.Snapshot { return s.buf.Snapshot() }

// Selection returns the current selection.
func (s *Session) Selection() document.Selection { return s.buf.Selection() }

// Decorations returns the decoration set from the latest rebuild.
func (s *Session) Decorations() decor.Set { return s.decos }

// Tree returns the current syntax tree.
func (s *Session) Tree() *syntax.Tree { return s.tree }

// SetMarkdown replaces the whole buffer when the text differs and
// suppresses the change notification the replacement would trigger.
func (s *Session) SetMarkdown(text string) {
	if !s.mounted {
		return
	}
	snap := s.buf.Snapshot()
	if snap.Text() == text {
		return
	}
	s.suppressNext = true
	s.applyTransaction(document.Transaction{
		Changes: []document.Change{{From: 0, To: snap.Len(), Insert: text}},
		Event:   "setMarkdown",
	})
}

// GetMarkdown returns the buffer text, or "" before mount.
func (s *Session) GetMarkdown() string {
	if !s.mounted {
		return ""
	}
	return s.buf.Snapshot().Text()
}

// SetReadOnly toggles edit permission and read-only styling together.
func (s *Session) SetReadOnly(readOnly bool) {
	if s.readOnly == readOnly {
		return
	}
	s.readOnly = readOnly
	s.rebuild()
}

// Focus focuses the surface when mounted.
func (s *Session) Focus() {
	if s.mounted {
		s.focused = true
	}
}

// ApplyCommand dispatches a command from the closed vocabulary. It
// returns false for unknown names, before mount, in read-only mode, or
// when the command itself does not apply.
func (s *Session) ApplyCommand(name string) bool {
	if !s.mounted || s.readOnly {
		return false
	}
	cmd, ok := LookupCommand(name)
	if !ok {
		return false
	}
	tx, ok := cmd(s.buf.Snapshot(), s.buf.Selection())
	if !ok {
		return false
	}
	return s.applyTransaction(tx) == nil
}

// HandleEdit applies a user edit transaction. Read-only sessions drop
// it.
func (s *Session) HandleEdit(tx document.Transaction) bool {
	if !s.mounted || s.readOnly {
		return false
	}
	return s.applyTransaction(tx) == nil
}

// Undo reverts the last command or edit.
func (s *Session) Undo() bool {
	if !s.mounted || s.readOnly || !s.buf.Undo() {
		return false
	}
	s.afterChange()
	return true
}

// Redo re-applies the last undone step.
func (s *Session) Redo() bool {
	if !s.mounted || s.readOnly || !s.buf.Redo() {
		return false
	}
	s.afterChange()
	return true
}

func (s *Session) applyTransaction(tx document.Transaction) error {
	if !tx.HasChanges() {
		if tx.Selection != nil {
			s.SetSelection(*tx.Selection)
		}
		return nil
	}
	old := s.buf.Snapshot()
	if _, err := s.buf.Dispatch(tx); err != nil {
		return err
	}
	s.reparse(old, tx)
	s.afterChange()
	return nil
}

// reparse updates the tree incrementally for a single-change edit and
// falls back to a full parse otherwise.
func (s *Session) reparse(old *document.Snapshot, tx document.Transaction) {
	text := s.buf.Snapshot().Text()
	if len(tx.Changes) == 1 && s.tree != nil {
		c := tx.Changes[0]
		s.tree = syntax.Reparse(s.tree, text, c.From, c.To, c.From+len(c.Insert))
		return
	}
	s.tree = syntax.Parse(text)
}

// afterChange runs the synchronous decoration rebuild and schedules the
// outbound notification, honoring the one-shot suppression flag.
func (s *Session) afterChange() {
	if s.tree == nil {
		s.tree = syntax.Parse(s.buf.Snapshot().Text())
	}
	s.rebuild()
	if s.suppressNext {
		s.suppressNext = false
		return
	}
	s.pendingNotify = true
	s.notifyAt = s.clock().Add(s.cfg.Debounce)
}

// SetSelection moves the selection and opens the reveal window.
func (s *Session) SetSelection(sel document.Selection) {
	s.buf.SetSelection(sel)
	now := s.clock()
	s.revealUntil = now.Add(s.cfg.Reveal)
	s.revealPending = true
	s.rebuild()
}

// SetViewport sets the visible byte range and rebuilds for it.
func (s *Session) SetViewport(vp decor.Viewport) {
	s.viewport = vp
	s.rebuild()
}

// RevealActive reports whether the reveal window is open.
func (s *Session) RevealActive(now time.Time) bool {
	return s.revealPending && now.Before(s.revealUntil)
}

// Tick advances the timers: past the debounce deadline it emits one
// contentChanged (plus metadataChanged when the front matter moved), and
// past the reveal deadline it forces the re-decoration the expiry
// requires. It returns the next wake deadline, zero when no timer is
// pending.
func (s *Session) Tick(now time.Time) time.Time {
	if s.pendingNotify && !now.Before(s.notifyAt) {
		s.pendingNotify = false
		text := s.buf.Snapshot().Text()
		s.emit("contentChanged", map[string]any{"text": text})
		s.checkMetadata(text)
	}
	if s.revealPending && !now.Before(s.revealUntil) {
		s.revealPending = false
		s.rebuild()
	}
	return s.nextWake()
}

func (s *Session) nextWake() time.Time {
	var next time.Time
	if s.pendingNotify {
		next = s.notifyAt
	}
	if s.revealPending && (next.IsZero() || s.revealUntil.Before(next)) {
		next = s.revealUntil
	}
	return next
}

func (s *Session) checkMetadata(text string) {
	meta, _, err := frontmatter.Parse(text)
	if err != nil || meta.Equal(s.meta) {
		return
	}
	s.meta = meta
	s.emit("metadataChanged", map[string]any{
		"title": meta.Title,
		"tags":  meta.Tags,
	})
}

func (s *Session) rebuild() {
	snap := s.buf.Snapshot()
	vp := s.viewport
	if vp.To <= vp.From {
		vp = decor.Viewport{From: 0, To: snap.Len()}
	}
	s.decos = s.engine.Rebuild(s.tree, snap, []decor.Viewport{vp}, s.buf.Selection(), s.RevealActive(s.clock()))
}

// TapCheckbox routes a pointer-down to the checkbox handler and applies
// the toggle.
func (s *Session) TapCheckbox(lineNo, col int) bool {
	if !s.mounted {
		return false
	}
	tx, ok := TapCheckbox(s.buf.Snapshot(), s.readOnly, lineNo, col, s.cfg.CheckboxHitWidth)
	if !ok {
		return false
	}
	if s.applyTransaction(tx) != nil {
		return false
	}
	s.focused = true
	return true
}

// TapLink resolves and reports a link tap. Plain taps in edit mode do
// not navigate; either read-only mode or a held modifier is required.
func (s *Session) TapLink(lineNo, col int, modifier bool) bool {
	if !s.mounted || (!s.readOnly && !modifier) {
		return false
	}
	line := s.buf.Snapshot().Line(lineNo)
	href, ok := ResolveLink(line.Text, col)
	if !ok {
		return false
	}
	s.emit("linkTapped", map[string]any{"href": href})
	return true
}
