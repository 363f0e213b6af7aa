package main

import (
	"fmt"
	"path/filepath"

	"finsec/internal/export"
	"finsec/internal/render"

	"github.com/spf13/cobra"
)

var (
	showStyle    string
	showWidth    int
	showMarkdown bool
)

// showCmd renders an exported suite
var showCmd = &cobra.Command{
	Use:   "show [suite.json]",
	Short: "Render an exported test suite in the terminal",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showStyle, "style", "auto", "Render style: auto, dark, light, notty")
	showCmd.Flags().IntVar(&showWidth, "width", 100, "Word wrap width")
	showCmd.Flags().BoolVar(&showMarkdown, "markdown", false, "Print raw markdown instead of rendering")
}

func runShow(cmd *cobra.Command, args []string) error {
	path := filepath.Join(cfg.Output.Dir, cfg.Output.SuiteFile)
	if len(args) > 0 {
		path = args[0]
	}

	records, err := export.ReadSuite(path)
	if err != nil {
		return err
	}

	if showMarkdown {
		fmt.Fprint(cmd.OutOrStdout(), render.Markdown(records))
		return nil
	}

	out, err := render.Terminal(records, render.TerminalOptions{Style: showStyle, Width: showWidth})
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
