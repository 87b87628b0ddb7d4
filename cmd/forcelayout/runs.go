package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/forcelayout/internal/storage"
	"github.com/san-kum/forcelayout/internal/viz"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(dataDir).List()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(w, subtle.Sprint("no runs found"))
				return nil
			}
			rows := make([][]string, len(runs))
			for i, r := range runs {
				rows[i] = []string{
					r.ID,
					r.Timestamp.Format("2006-01-02 15:04"),
					fmt.Sprint(r.Nodes),
					fmt.Sprint(r.Edges),
					fmt.Sprint(r.Ticks),
					r.Elapsed.Round(time.Millisecond).String(),
					fmt.Sprintf("%g", r.Config.Theta),
				}
			}
			table(w, []string{"ID", "TIME", "NODES", "EDGES", "TICKS", "ELAPSED", "THETA"}, rows)
			return nil
		},
	}
}

func newPlotCmd() *cobra.Command {
	var (
		metric     string
		showLayout bool
	)
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a metric recorded by a saved run, or its final layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			if showLayout {
				pos, err := st.LoadPositions(args[0])
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "%s  %d nodes after %d ticks\n\n", brand.Sprint(meta.ID), len(pos), meta.Ticks)
				fmt.Fprintln(w, viz.RenderPositions(pos, 60, 24))
				return nil
			}
			series, err := st.LoadSeries(args[0])
			if err != nil {
				return err
			}
			data, ok := series[metric]
			if !ok {
				names := make([]string, 0, len(series))
				for name := range series {
					names = append(names, name)
				}
				sort.Strings(names)
				return fmt.Errorf("run %s has no metric %q (have %v)", args[0], metric, names)
			}
			w := cmd.OutOrStdout()
			if len(data) < 2 {
				fmt.Fprintln(w, warn.Sprintf("not enough samples to plot (%d)", len(data)))
				return nil
			}
			fmt.Fprintf(w, "%s  %d nodes, %d ticks\n\n", brand.Sprint(meta.ID), meta.Nodes, meta.Ticks)
			fmt.Fprintln(w, asciigraph.Plot(data,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("%s over %d ticks", metric, len(data))),
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&metric, "metric", "kinetic_energy", "metric to plot")
	cmd.Flags().BoolVar(&showLayout, "layout", false, "draw the saved final positions instead")
	return cmd
}
