package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/davinci-dev/davinci/internal/docs"
)

func registerOpenAPICmd(parent *cobra.Command, root *rootOptions) {
	var output, file string

	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document of every resource",
		Example: `  schemagen openapi > openapi.json
  schemagen openapi -o yaml --title "Shop API"
  schemagen openapi -o yaml --file docs/openapi.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc := root.catalog().Document()

			var (
				data []byte
				err  error
			)
			switch output {
			case "yaml":
				data, err = docs.MarshalYAML(doc)
			case "json":
				data, err = docs.MarshalJSON(doc)
				data = append(data, '\n')
			default:
				err = fmt.Errorf("unsupported output format %q (json, yaml)", output)
			}
			if err != nil {
				return err
			}

			if file == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.MkdirAll(filepath.Dir(file), 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			if err := os.WriteFile(file, data, 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", file, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", file)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format (json, yaml)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Write the document to a file instead of stdout")
	parent.AddCommand(cmd)
}
