package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notelab/livemark/internal/decor"
	"github.com/notelab/livemark/internal/document"
	"github.com/notelab/livemark/internal/syntax"
)

var decorationsJSON bool

var decorationsCmd = &cobra.Command{
	Use:   "decorations <file>",
	Short: "Dump the decoration set for a file",
	Long: `Parse a file and print every decoration the live preview would
apply: line classifications, hidden marker spans, mark styling, and
widget substitutions. Intended for debugging decoration output.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecorations,
}

func init() {
	decorationsCmd.Flags().BoolVar(&decorationsJSON, "json", false, "Emit JSON")
	rootCmd.AddCommand(decorationsCmd)
}

type decorationDump struct {
	From   int    `json:"from"`
	To     int    `json:"to"`
	Kind   string `json:"kind"`
	Class  string `json:"class,omitempty"`
	Depth  int    `json:"depth,omitempty"`
	Start  bool   `json:"start,omitempty"`
	End    bool   `json:"end,omitempty"`
	Widget string `json:"widget,omitempty"`
	Text   string `json:"text,omitempty"`
}

func runDecorations(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	snap := document.NewSnapshot(string(data))
	tree := syntax.Parse(snap.Text())
	engine := decor.NewEngine(decor.ParseMode(cfg.Editor.Mode), decor.NopReporter{}, nil)
	set := engine.Rebuild(tree, snap, []decor.Viewport{{From: 0, To: snap.Len()}}, document.Selection{}, false)

	dumps := make([]decorationDump, 0, set.Len())
	for _, d := range set.Decorations() {
		dump := decorationDump{
			From:  d.From,
			To:    d.To,
			Kind:  d.Spec.Kind.String(),
			Class: d.Spec.Class,
			Depth: d.Spec.Depth,
			Start: d.Spec.Start,
			End:   d.Spec.End,
		}
		if d.Spec.Widget != nil {
			switch w := d.Spec.Widget.(type) {
			case decor.ImageWidget:
				dump.Widget = "image:" + w.Src
			case decor.BulletWidget:
				dump.Widget = "bullet"
			}
		}
		if d.From < d.To && d.Spec.Kind != decor.KindLine {
			dump.Text = snap.Slice(d.From, d.To)
		}
		dumps = append(dumps, dump)
	}

	if decorationsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(dumps)
	}
	for _, d := range dumps {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%5d-%-5d %-6s", d.From, d.To, d.Kind)
		if d.Class != "" {
			fmt.Fprintf(&sb, " %s", d.Class)
		}
		if d.Depth > 0 {
			fmt.Fprintf(&sb, " depth=%d", d.Depth)
		}
		if d.Start {
			sb.WriteString(" start")
		}
		if d.End {
			sb.WriteString(" end")
		}
		if d.Widget != "" {
			fmt.Fprintf(&sb, " [%s]", d.Widget)
		}
		if d.Text != "" {
			fmt.Fprintf(&sb, " %q", d.Text)
		}
		fmt.Println(sb.String())
	}
	return nil
}
