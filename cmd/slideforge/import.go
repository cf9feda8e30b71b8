package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var importOutput string

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <deck.html|outline.md>",
	Short: "Import an exported document or a markdown outline",
	Long: `Rebuild a deck from a document produced by "slideforge export", or build
one from a markdown outline, and write it to a saved-state file. Every slide
gets a fresh identifier and the first slide becomes active.

Example:
  slideforge import presentation.html
  slideforge import talk.md -o talk.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := importOptions{input: args[0], output: importOutput}
		return importDeck(cmd.Context(), appOptionsFrom(cmd, opts.input, nil), opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importOutput, "output", "o", "", "Saved-state file to write (default: input name with .json)")
}

type importOptions struct {
	input  string
	output string
}

// statePath is the saved-state file written for opts.input
func (o importOptions) statePath() string {
	if o.output != "" {
		return o.output
	}
	return strings.TrimSuffix(o.input, filepath.Ext(o.input)) + ".json"
}

func importDeck(ctx context.Context, appOpts appOptions, opts importOptions, out io.Writer) error {
	a, err := newApp(ctx, appOpts)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.deck.ImportFile(ctx, opts.input); err != nil {
		return err
	}

	output := opts.statePath()
	if err := a.deck.SaveState(ctx, output); err != nil {
		return err
	}

	deck := a.store.GetState()
	_, _ = fmt.Fprintf(out, "Imported %d slides from %s into %s\n", deck.SlideCount(), opts.input, output)
	return nil
}
