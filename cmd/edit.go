package cmd

import (
	"github.com/spf13/cobra"

	"github.com/notelab/livemark/internal/tui"
)

var editCmd = &cobra.Command{
	Use:   "edit [file]",
	Short: "Edit a markdown file with live preview",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	return tui.Run(editorConfig(cfg), themeFromConfig(cfg), path, cfg.Editor.ReadOnly)
}
