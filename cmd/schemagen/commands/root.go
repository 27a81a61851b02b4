// Package commands contains the schemagen command definitions.
package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/davinci-dev/davinci/internal/database"
	"github.com/davinci-dev/davinci/internal/docs"
	"github.com/davinci-dev/davinci/internal/resources"
	"github.com/davinci-dev/davinci/internal/service"
	"github.com/davinci-dev/davinci/pkg/reflector"
)

type rootOptions struct {
	refPrefix   string
	title       string
	description string
}

// NewRootCmd creates and returns the root command for the CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "schemagen",
		Short:         "Synthesize schema definitions from registered resources",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&opts.refPrefix, "ref-prefix", "", "Prefix of $ref values in definitions output")
	rootCmd.PersistentFlags().StringVar(&opts.title, "title", "Davinci API", "Title of generated OpenAPI documents")
	rootCmd.PersistentFlags().StringVar(&opts.description, "description", "", "Description of generated OpenAPI documents")

	registerResourcesCmd(rootCmd, opts)
	registerDefinitionsCmd(rootCmd, opts)
	registerOpenAPICmd(rootCmd, opts)
	registerValidateCmd(rootCmd, opts)

	return rootCmd
}

//nolint:ireturn
func (o *rootOptions) catalog() service.CatalogService {
	store := reflector.New()
	return service.NewCatalogService(database.NewMemoryDB(), store, resources.Register(store),
		service.WithRefPrefix(o.refPrefix),
		service.WithDocumentInfo(o.title, o.description),
	)
}

// writeOutput encodes v as indented JSON or as YAML
func writeOutput(w io.Writer, v any, format string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	switch format {
	case "json":
		_, err = fmt.Fprintln(w, string(data))
	case "yaml":
		data, err = docs.JSONToYAML(data)
		if err == nil {
			_, err = w.Write(data)
		}
	default:
		err = fmt.Errorf("unsupported output format %q (json, yaml)", format)
	}
	return err
}
