package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func registerResourcesCmd(parent *cobra.Command, root *rootOptions) {
	var output string

	cmd := &cobra.Command{
		Use:   "resources",
		Short: "List registered resources",
		Example: `  schemagen resources
  schemagen resources -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			details := root.catalog().Resources()
			if output != "text" {
				return writeOutput(cmd.OutOrStdout(), details, output)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "NAME\tPATH\tROOT\tDEFINITIONS")
			for _, d := range details {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Name, d.BasePath, d.RootTitle, strings.Join(d.Definitions, ","))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json, yaml)")
	parent.AddCommand(cmd)
}
