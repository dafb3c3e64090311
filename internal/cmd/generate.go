package cmd

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func newGenerateCommand(a *app) *cobra.Command {
	var (
		target   string
		output   string
		noFormat bool
	)

	cmd := &cobra.Command{
		Use:   "typeshift [file]",
		Short: "Generate validators from TypeScript declarations",
		Long: `Generate runtime validators, schemas and type declarations from the type
declarations of a TypeScript file. The file defaults to the input of the
config file, "-" reads stdin.

Examples:
  typeshift types.ts --target zod
  typeshift types.ts -t sql -o schema.sql
  cat types.ts | typeshift - -t jsonschema`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.target(cmd, target)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("output") {
				a.config.Output = output
			}
			if noFormat {
				a.config.Format = false
			}

			input := a.input(args)
			source, err := a.readInput(input)
			if err != nil {
				return err
			}

			p, err := a.newPipeline(nil)
			if err != nil {
				return err
			}

			out := p.Transform(cmd.Context(), source, t)
			if out.Err != nil {
				return errors.Wrapf(out.Err, `failed to generate %s from "%s"`, t, input)
			}

			if err := a.writeOutput(a.config.Output, out.Text); err != nil {
				return err
			}

			a.log.Debugw("Generated", "input", input, "target", t, "unsupported", len(out.Unsupported))
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "Target to generate (see typeshift targets)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&noFormat, "no-format", false, "Skip the formatter")

	return cmd
}
