package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/forcelayout/internal/graphio"
	"github.com/san-kum/forcelayout/internal/server"
	"github.com/san-kum/forcelayout/internal/sim"
)

func newServeCmd() *cobra.Command {
	var (
		addr     string
		interval int
		fps      int
		watch    bool
	)
	cmd := &cobra.Command{
		Use:   "serve [graph-file]",
		Short: "serve a live layout over HTTP and websocket",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch && len(args) == 0 {
				return errors.New("--watch needs a graph file")
			}
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			opts := []sim.Option{sim.WithLogger(logger)}
			s, cfg, name, err := buildSimulator(cmd, args, opts...)
			if err != nil {
				return err
			}
			f := cmd.Flags()
			if !f.Changed("addr") {
				addr = cfg.Server.Addr
			}
			if !f.Changed("interval-ms") {
				interval = cfg.Server.IntervalMs
			}
			if !f.Changed("fps") {
				fps = cfg.Server.FPS
			}

			srv := server.New(s, server.Options{
				Interval:   time.Duration(interval) * time.Millisecond,
				FPS:        fps,
				Logger:     logger,
				SimOptions: opts,
			})
			defer srv.Close()
			logger.Info("serving layout", "graph", name, "nodes", s.Graph().Len())

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				err := srv.ListenAndServe(ctx, addr)
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			})
			if watch {
				g.Go(func() error {
					return srv.Watch(ctx, args[0], graphio.ReadFile)
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&interval, "interval-ms", 33, "milliseconds between ticks")
	cmd.Flags().IntVar(&fps, "fps", 30, "websocket frames per second")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the graph file when it changes")
	addGraphFlags(cmd)
	addLayoutFlags(cmd)
	return cmd
}
