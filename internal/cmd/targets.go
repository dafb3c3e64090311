package cmd

import (
	"fmt"

	"github.com/koskimas/typeshift/internal/gen"
	"github.com/spf13/cobra"
)

func newTargetsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "List the supported targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, t := range gen.Targets {
				if _, err := fmt.Fprintln(a.s.Stdout, t); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
