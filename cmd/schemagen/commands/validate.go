package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// ErrPayloadInvalid is returned when a payload file does not match its schema
var ErrPayloadInvalid = errors.New("payload does not match schema")

func registerValidateCmd(parent *cobra.Command, root *rootOptions) {
	cmd := &cobra.Command{
		Use:   "validate RESOURCE FILE...",
		Short: "Validate JSON payload files against a resource schema",
		Example: `  schemagen validate customers customer.json
  schemagen validate orders orders/*.json`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := root.catalog()
			out := cmd.OutOrStdout()
			resource := args[0]

			failed := 0
			for _, path := range args[1:] {
				payload, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}

				result, err := catalog.Validate(resource, payload)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if result.Valid {
					_, _ = fmt.Fprintf(out, "%s: ok\n", path)
					continue
				}

				failed++
				_, _ = fmt.Fprintf(out, "%s: invalid\n", path)
				for _, e := range result.Errors {
					_, _ = fmt.Fprintf(out, "  %s: %s\n", e.Location, e.Message)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%w: %d of %d files", ErrPayloadInvalid, failed, len(args)-1)
			}
			return nil
		},
	}

	parent.AddCommand(cmd)
}
