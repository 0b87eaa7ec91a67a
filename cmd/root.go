package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notelab/livemark/internal/config"
	"github.com/notelab/livemark/internal/decor"
	"github.com/notelab/livemark/internal/editor"
	"github.com/notelab/livemark/internal/ui"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", "", "Decoration mode: full or simple")
	rootCmd.PersistentFlags().BoolVar(&readOnlyFlag, "read-only", false, "Open documents read-only")
}

var rootCmd = &cobra.Command{
	Use:   "livemark",
	Short: "Live-preview markdown editing in the terminal",
	Long: `livemark edits markdown with an inline live preview: syntax markers
hide while you read and reveal around the caret while you write.

Examples:
  livemark edit notes.md                # edit with live preview
  livemark render notes.md              # render to the terminal
  livemark render notes.md --html       # render to HTML
  livemark bridge                       # drive a session over stdio
  livemark decorations notes.md         # dump the decoration set`,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
}

var (
	modeFlag     string
	readOnlyFlag bool
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.ApplyOverrides(modeFlag, readOnlyFlag)
	return cfg, nil
}

func editorConfig(cfg *config.Config) editor.Config {
	return editor.Config{
		Debounce:         cfg.Editor.Debounce(),
		Reveal:           cfg.Editor.Reveal(),
		Mode:             decor.ParseMode(cfg.Editor.Mode),
		CheckboxHitWidth: cfg.Editor.CheckboxHitWidth,
	}
}

func themeFromConfig(cfg *config.Config) *ui.Theme {
	return ui.ThemeFromConfig(ui.ThemeConfig(cfg.Theme))
}
