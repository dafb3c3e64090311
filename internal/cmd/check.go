package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/koskimas/typeshift/internal/gen"
	"github.com/koskimas/typeshift/internal/match"
	"github.com/koskimas/typeshift/internal/model"
	"github.com/koskimas/typeshift/internal/model/jsonschema"
	"github.com/koskimas/typeshift/internal/model/typescript"
	"github.com/spf13/cobra"
)

func newCheckCommand(a *app) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Check that the declarations survive a JSON Schema round trip",
		Long: `Render the declarations as JSON Schema, read the document back and compare
the result with the original declarations. With --path only the node the
dotted path names is compared, e.g. --path User.address.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := a.input(args)
			source, err := a.readInput(input)
			if err != nil {
				return err
			}

			m, err := typescript.Parse(source)
			if err != nil {
				return errors.Wrapf(err, `failed to parse "%s"`, input)
			}

			back, err := roundTrip(m)
			if err != nil {
				return err
			}

			if path != "" {
				return checkPath(a, m, back, path)
			}

			if err := match.Models(m, back); err != nil {
				return errors.Wrap(err, "JSON Schema round trip changed the declarations")
			}

			_, err = fmt.Fprintf(a.s.Stdout, "ok: %d types\n", len(m.Types))
			return err
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "", "Only compare the node at this dotted path")
	return cmd
}

func roundTrip(m *model.Model) (*model.Model, error) {
	res, err := gen.Generate(m, gen.TargetJSONSchema, gen.Options{})
	if err != nil {
		return nil, err
	}

	back, err := jsonschema.Read([]byte(res.Text))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read generated JSON Schema")
	}

	return back, nil
}

func checkPath(a *app, m, back *model.Model, path string) error {
	want, err := match.Resolve(m, path)
	if err != nil {
		return err
	}

	got, err := match.Resolve(back, path)
	if err != nil {
		return errors.Wrap(err, "in JSON Schema")
	}

	if err := match.Schemas(want.Schema, got.Schema); err != nil {
		return errors.Wrapf(err, "JSON Schema round trip changed %s", want)
	}

	_, err = fmt.Fprintf(a.s.Stdout, "ok: %s\n", want)
	return err
}
