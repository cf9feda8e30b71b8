package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	newForce bool
	newTheme string
	newName  string
)

// newCmd represents the new command
var newCmd = &cobra.Command{
	Use:   "new <state-file>",
	Short: "Create a deck holding the welcome slide",
	Long: `Create a saved-state file holding a fresh deck: one title slide with the
configured theme and deck name. Files ending in .yaml or .yml are written as
YAML, anything else as JSON.

Example:
  slideforge new talk.json
  slideforge new talk.yaml --theme ocean --name "Q3 Review"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := newOptions{path: args[0], force: newForce, theme: newTheme, name: newName}
		return createDeck(cmd.Context(), appOptionsFrom(cmd, opts.path, opts.flags()), opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(newCmd)

	newCmd.Flags().BoolVarP(&newForce, "force", "f", false, "Overwrite an existing file")
	newCmd.Flags().StringVarP(&newTheme, "theme", "t", "", "Deck theme (overrides config)")
	newCmd.Flags().StringVar(&newName, "name", "", "Deck name (overrides config)")
}

type newOptions struct {
	path  string
	force bool
	theme string
	name  string
}

func (o newOptions) flags() map[string]interface{} {
	return map[string]interface{}{"theme": o.theme}
}

func createDeck(ctx context.Context, appOpts appOptions, opts newOptions, out io.Writer) error {
	if !opts.force {
		if _, err := os.Stat(opts.path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", opts.path)
		}
	}

	a, err := newApp(ctx, appOpts)
	if err != nil {
		return err
	}
	defer a.close()

	if opts.name != "" {
		a.store.SetDeckName(opts.name)
	}

	if err := a.deck.SaveState(ctx, opts.path); err != nil {
		return err
	}

	deck := a.store.GetState()
	_, _ = fmt.Fprintf(out, "Created %s (%q, theme %s)\n", opts.path, deck.Name, deck.Theme)
	return nil
}
