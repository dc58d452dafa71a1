package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vitalvas/routedoc/internal/doccheck"
)

var ErrUnresolvedRefs = errors.New("document has unresolved references")

func CheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Load an OpenAPI document and report dangling references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := doccheck.CheckFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "openapi:          %s\n", report.Version)
			fmt.Fprintf(out, "title:            %s (%s)\n", report.Title, report.APIVersion)
			fmt.Fprintf(out, "paths:            %d\n", report.Paths)
			fmt.Fprintf(out, "operations:       %d\n", report.Operations)
			fmt.Fprintf(out, "schemas:          %d\n", report.Schemas)
			fmt.Fprintf(out, "security schemes: %d\n", report.SecuritySchemes)

			if !report.OK() {
				for _, ref := range report.Unresolved {
					fmt.Fprintf(out, "unresolved:       %s\n", ref)
				}
				for _, msg := range report.ResolveErrors {
					fmt.Fprintf(out, "resolver error:   %s\n", msg)
				}
				return fmt.Errorf("%w: %d", ErrUnresolvedRefs, len(report.Unresolved)+len(report.ResolveErrors))
			}
			return nil
		},
	}
}
