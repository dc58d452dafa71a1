package cli

import (
	"github.com/spf13/cobra"
	"github.com/vitalvas/routedoc/internal/config"
)

// Version is set at build time.
var Version = "dev"

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "routedoc",
		Short:         "Serve and generate OpenAPI documents for a mux route tree",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,

		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	config.BindFlags(root)

	root.AddCommand(ServeCommand())
	root.AddCommand(GenerateCommand())
	root.AddCommand(CheckCommand())

	return root
}
