package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/slideforge/internal/adapters/secondary/templates"
	"github.com/fredcamaral/slideforge/internal/domain/entities"
)

// templatesCmd represents the templates command
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List slide templates and themes",
	Long:  "List the slide templates with their fields and default content, followed by the built-in themes.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printCatalog(cmd.OutOrStdout(), templates.NewRegistry())
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}

func printCatalog(out io.Writer, registry *templates.Registry) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "TEMPLATE\tNAME\tFIELDS")
	for _, v := range registry.Variants() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", v.Name, v.DisplayName(), strings.Join(v.Schema(), ", "))
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintln(w, "THEME\tNAME\tCOLORS")
	for _, p := range entities.BuiltInPalettes() {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s %s %s\n", p.Name, p.DisplayName(), p.Background, p.Text, p.Accent)
	}

	return w.Flush()
}
