package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/koskimas/typeshift/internal/gen"
	"github.com/koskimas/typeshift/internal/server"
	"github.com/spf13/cobra"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the transform API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.config.Server.Addr = addr
			}

			cache, settings, closeStore, err := a.openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			p, err := a.newPipeline(cache)
			if err != nil {
				return err
			}

			srv, err := server.New(a.log, p, settings, server.Options{
				Addr:          a.config.Server.Addr,
				RateLimit:     a.config.Server.RateLimit,
				Burst:         a.config.Server.Burst,
				DefaultTarget: gen.Target(a.config.Target),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Address to listen on (default: server.addr of the config)")
	return cmd
}
