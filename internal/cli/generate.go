package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vitalvas/routedoc/internal/config"
	"github.com/vitalvas/routedoc/openapi"
)

func GenerateCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the OpenAPI document of the pet store API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var encode func(*openapi.Document) ([]byte, error)
			switch format {
			case "json":
				encode = (*openapi.Document).JSON
			case "yaml":
				encode = (*openapi.Document).YAML
			default:
				return fmt.Errorf("invalid format: %s (valid: json, yaml)", format)
			}

			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}
			logger := cfg.Logger(cmd.ErrOrStderr())

			// Only the document is needed; no endpoint is served.
			cfg.Docs.Disable = true
			r, spec, err := newApp(cfg, slog.New(slog.DiscardHandler))
			if err != nil {
				return err
			}

			doc, err := spec.Build(r)
			if err != nil {
				return fmt.Errorf("building document: %w", err)
			}

			data, err := encode(doc)
			if err != nil {
				return fmt.Errorf("encoding document: %w", err)
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("writing document: %w", err)
			}
			logger.Info("document written", slog.String("path", output), slog.Int("paths", len(doc.Paths)))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&format, "format", "f", "json", "Output format: json, yaml")
	flags.StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}
