package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/forcelayout/internal/compute"
	"github.com/san-kum/forcelayout/internal/graphio"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/quadtree"
	"github.com/san-kum/forcelayout/internal/sim"
)

func newBenchCmd() *cobra.Command {
	var (
		sizes  []int
		thetas []float64
		ticks  int
		serial bool
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "measure tick throughput across graph sizes and opening angles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			quiet := newLogger(io.Discard, log.ErrorLevel)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "benchmarking %s, %d ticks per run\n\n", brand.Sprint(generator), ticks)

			var rows [][]string
			for _, n := range sizes {
				spec, err := graphio.Generate(generator, n, cfg.Layout.Seed)
				if err != nil {
					return err
				}
				for _, th := range thetas {
					b := cfg.Builder().Theta(th)
					opts := []sim.Option{sim.WithLogger(quiet)}
					if serial {
						opts = append(opts, sim.WithScheduler(compute.Serial{}))
					}
					s, err := sim.New(spec, b, opts...)
					if err != nil {
						return err
					}
					start := time.Now()
					done, err := s.Run(ctx, ticks)
					elapsed := time.Since(start)
					snap := s.Snapshot()
					s.Close()
					if err != nil {
						return err
					}
					logger.Debug("bench", "nodes", n, "theta", th, "elapsed", elapsed)
					if done == 0 || len(spec.Nodes) == 0 {
						continue
					}

					rate := float64(done) / elapsed.Seconds()
					depth, visits := treeStats(snap, th)
					rows = append(rows, []string{
						fmt.Sprint(len(spec.Nodes)),
						fmt.Sprint(len(spec.Edges)),
						fmt.Sprintf("%g", th),
						fmt.Sprint(done),
						elapsed.Round(time.Microsecond).String(),
						fmt.Sprintf("%.1f", rate),
						fmt.Sprintf("%.2fµs", elapsed.Seconds()*1e6/float64(done*len(spec.Nodes))),
						fmt.Sprint(depth),
						fmt.Sprintf("%.1f", visits),
					})
				}
			}
			table(w, []string{"NODES", "EDGES", "THETA", "TICKS", "TIME", "TICKS/SEC", "PER NODE", "DEPTH", "VISITS"}, rows)
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&sizes, "sizes", []int{100, 1000, 5000}, "graph sizes")
	cmd.Flags().Float64SliceVar(&thetas, "thetas", []float64{0.5, 1.0}, "opening angles to compare")
	cmd.Flags().IntVar(&ticks, "ticks", 20, "ticks per run")
	cmd.Flags().BoolVar(&serial, "serial", false, "run on the calling goroutine only")
	addGraphFlags(cmd)
	return cmd
}

// treeStats rebuilds the quadtree over the final layout and reports its
// depth and the mean number of repulsion sources per node at theta.
func treeStats(snap *layout.Snapshot, theta float64) (int, float64) {
	if snap.Len() == 0 {
		return 0, 0
	}
	pts := make([]layout.Vec2, snap.Len())
	for i := range pts {
		pts[i] = snap.Point(i)
	}
	tree := quadtree.New()
	tree.Build(pts, snap.Mass)
	visits := 0
	for i, p := range pts {
		visits += tree.Visits(p, i, theta)
	}
	return tree.Depth(), float64(visits) / float64(len(pts))
}
