package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/koskimas/typeshift/internal/watch"
	"github.com/spf13/cobra"
)

func newWatchCommand(a *app) *cobra.Command {
	var (
		target string
		output string
	)

	cmd := &cobra.Command{
		Use:   "watch [file]",
		Short: "Regenerate the output whenever the input changes",
		Long: `Watch the input file and regenerate the output after every burst of
edits. A failed run writes an error banner above the last good output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.target(cmd, target)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("output") {
				a.config.Output = output
			}

			cache, _, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			p, err := a.newPipeline(cache)
			if err != nil {
				return err
			}

			input := a.input(args)
			w, err := watch.New(a.path(input), a.config.Watch.Debounce, a.log)
			if err != nil {
				return err
			}
			defer w.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			a.log.Infow("Watching", "input", input, "target", t, "debounce", a.config.Watch.Debounce)

			return w.Run(ctx, func(ctx context.Context) {
				source, err := a.readInput(input)
				if err != nil {
					a.log.Errorw("Failed to read input", "error", err)
					return
				}

				out := p.Transform(ctx, source, t)
				if out.Err != nil {
					a.log.Warnw("Transform failed", "target", t, "error", out.Err)
				}

				if err := a.writeOutput(a.config.Output, out.Text); err != nil {
					a.log.Errorw("Failed to write output", "error", err)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "Target to generate")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}
