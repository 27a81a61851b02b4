package commands

import (
	"github.com/spf13/cobra"

	"github.com/davinci-dev/davinci/pkg/openapi"
)

func registerDefinitionsCmd(parent *cobra.Command, root *rootOptions) {
	var output string

	cmd := &cobra.Command{
		Use:   "definitions [RESOURCE]",
		Short: "Print the definitions map of a resource",
		Long:  `Print the definitions synthesized from a resource root. Without a resource, the definitions of every resource are merged.`,
		Example: `  schemagen definitions customers
  schemagen definitions orders -o yaml --ref-prefix '#/definitions/'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := root.catalog()

			if len(args) == 1 {
				defs, err := catalog.Definitions(args[0])
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), defs, output)
			}

			merged := openapi.NewDefinitions()
			for _, r := range catalog.Resources() {
				defs, err := catalog.Definitions(r.Name)
				if err != nil {
					return err
				}
				for title, def := range defs.All() {
					if !merged.Has(title) {
						merged.Set(title, def)
					}
				}
			}
			return writeOutput(cmd.OutOrStdout(), merged, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format (json, yaml)")
	parent.AddCommand(cmd)
}
