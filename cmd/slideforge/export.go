package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportTheme  string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <deck-file>",
	Short: "Export a deck to a standalone HTML document",
	Long: `Render a deck into a single HTML document with every style embedded.
The input is a saved-state file or a markdown outline. The document can be
opened in any browser and imported back with "slideforge import".

Example:
  slideforge export talk.json
  slideforge export talk.json -o launch.html --theme dark`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := exportOptions{input: args[0], output: exportOutput, theme: exportTheme}
		return exportDeck(cmd.Context(), appOptionsFrom(cmd, opts.input, nil), opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: export.output_name, or the deck name with export.name_from_deck)")
	exportCmd.Flags().StringVarP(&exportTheme, "theme", "t", "", "Theme to export with, replacing the deck's own")
}

type exportOptions struct {
	input  string
	output string
	theme  string
}

func exportDeck(ctx context.Context, appOpts appOptions, opts exportOptions, out io.Writer) error {
	a, err := newApp(ctx, appOpts)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.open(ctx, opts.input); err != nil {
		return err
	}
	if opts.theme != "" {
		a.store.SetTheme(opts.theme)
	}

	output := opts.output
	if output == "" {
		output = a.config.Export.OutputNameFor(a.store.GetState().Name)
	}
	if err := a.deck.ExportFile(ctx, output); err != nil {
		return err
	}

	deck := a.store.GetState()
	_, _ = fmt.Fprintf(out, "Exported %d slides to %s\n", deck.SlideCount(), output)
	return nil
}
