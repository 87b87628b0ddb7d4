package main

import (
	"fmt"
	"io"
	"os"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/forcelayout/internal/export"
	"github.com/san-kum/forcelayout/internal/metrics"
	"github.com/san-kum/forcelayout/internal/sim"
	"github.com/san-kum/forcelayout/internal/storage"
)

func newRunCmd() *cobra.Command {
	var (
		ticks  int
		format string
		out    string
		plot   bool
		save   bool
	)
	cmd := &cobra.Command{
		Use:   "run [graph-file]",
		Short: "run the layout for a number of ticks and write the result",
		Long: fmt.Sprintf(`Run the layout headless and write the final positions.

Without a graph file a graph is generated (see --gen and --size).
Output formats: %v`, export.Formats()),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			s, cfg, name, err := buildSimulator(cmd, args, sim.WithLogger(logger))
			if err != nil {
				return err
			}
			defer s.Close()
			if !cmd.Flags().Changed("ticks") {
				ticks = cfg.Run.Ticks
			}
			if !cmd.Flags().Changed("format") {
				format = cfg.Run.Format
			}

			rec := metrics.NewRecorder(0, metrics.Defaults()...)
			s.AddObserver(rec)

			g := s.Graph()
			logger.Info("running layout", "graph", name, "nodes", g.Len(), "edges", len(g.Links()), "ticks", ticks)
			p := newProgress(logger)
			n, err := s.Run(ctx, ticks)
			if err != nil {
				logger.Warn("interrupted", "ticks", n)
			}
			elapsed := p.elapsed()
			p.done(fmt.Sprintf("Ran %d ticks", n))

			var w io.Writer = os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			snap := s.Snapshot()
			if err := export.Write(ctx, format, w, snap, g); err != nil {
				return err
			}
			if out != "" {
				logger.Info("wrote layout", "path", out, "format", format)
			}

			values := rec.Values()
			printMetrics(os.Stderr, rec.Names(), values)

			if plot {
				if ke := rec.Series("kinetic_energy"); len(ke) > 1 {
					fmt.Fprintln(os.Stderr)
					fmt.Fprintln(os.Stderr, asciigraph.Plot(ke,
						asciigraph.Height(10),
						asciigraph.Width(80),
						asciigraph.Caption("kinetic energy"),
					))
				}
			}

			if save {
				st := storage.New(dataDir)
				if err := st.Init(); err != nil {
					return err
				}
				series := make(map[string][]float64)
				for _, m := range rec.Names() {
					series[m] = rec.Series(m)
				}
				lc, _ := cfg.Builder().Config()
				runID, err := st.Save(storage.RunMetadata{
					Graph:   name,
					Preset:  preset,
					Elapsed: elapsed,
					Workers: lc.Workers,
					Config:  lc,
					Metrics: values,
				}, snap, g, series)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "run id: %s\n", brand.Sprint(runID))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&ticks, "ticks", 500, "ticks to run")
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "output format")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&plot, "plot", false, "plot kinetic energy to stderr")
	cmd.Flags().BoolVar(&save, "save", false, "save the run under --data")
	addGraphFlags(cmd)
	addLayoutFlags(cmd)
	return cmd
}
