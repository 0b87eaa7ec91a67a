package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/notelab/livemark/internal/export"
	"github.com/notelab/livemark/internal/frontmatter"
)

var (
	renderHTML  bool
	renderPage  bool
	renderWidth int
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render a markdown file to the terminal or HTML",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().BoolVar(&renderHTML, "html", false, "Emit HTML instead of terminal output")
	renderCmd.Flags().BoolVar(&renderPage, "page", false, "Wrap HTML output in a full page (implies --html)")
	renderCmd.Flags().IntVar(&renderWidth, "width", 0, "Wrap width for terminal output (0 = detect)")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	md := string(data)

	if renderPage || renderHTML || cfg.Render.Page {
		return renderToHTML(md, renderPage || cfg.Render.Page)
	}
	return renderToTerminal(md, cfg.Render.Width)
}

func renderToHTML(md string, page bool) error {
	var out string
	var err error
	if page {
		out, err = export.Page(md)
	} else {
		out, err = export.Fragment(md)
	}
	if err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}
	fmt.Print(out)
	return nil
}

func renderToTerminal(md string, cfgWidth int) error {
	width := renderWidth
	if width == 0 {
		width = cfgWidth
	}
	if width == 0 {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		} else {
			width = 80
		}
	}

	// Front matter is host metadata, not document content.
	if _, body, err := frontmatter.Parse(md); err == nil {
		md = body
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("failed to build renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}
	fmt.Print(out)
	return nil
}
