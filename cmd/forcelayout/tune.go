package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/forcelayout/internal/compute"
	"github.com/san-kum/forcelayout/internal/optim"
)

func newTuneCmd() *cobra.Command {
	var (
		params []string
		ticks  int
		metric string
	)
	cmd := &cobra.Command{
		Use:   "tune [graph-file]",
		Short: "grid search layout parameters for the lowest final metric",
		Example: "  forcelayout tune --param theta=0.3,0.6,1 --param damping=0.7,0.9\n" +
			"  forcelayout tune graph.yaml --param gravity=0,0.5,1 --metric spread",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			base, err := cfg.Builder().Config()
			if err != nil {
				return err
			}
			spec, name, err := loadGraph(args, base.Seed)
			if err != nil {
				return err
			}

			names, ranges, err := parseGrid(params)
			if err != nil {
				return err
			}
			grid, err := optim.NewGridSearch(names, ranges, ticks)
			if err != nil {
				return err
			}
			pool := compute.NewPool(base.Workers)
			defer pool.Close()
			grid.WithScheduler(pool)

			logger.Info("tuning", "graph", name, "points", grid.Size(), "ticks", ticks, "metric", metric)
			best, trials, err := grid.Search(ctx, spec, base, metric)
			if err != nil {
				return err
			}

			sort.SliceStable(trials, func(i, j int) bool {
				if (trials[i].Err == nil) != (trials[j].Err == nil) {
					return trials[i].Err == nil
				}
				return trials[i].Score < trials[j].Score
			})
			headers := append(append([]string{}, names...), strings.ToUpper(metric))
			var rows [][]string
			for _, t := range trials {
				row := make([]string, 0, len(headers))
				for _, n := range names {
					row = append(row, fmt.Sprintf("%g", t.Params[n]))
				}
				if t.Err != nil {
					row = append(row, warn.Sprint(t.Err))
				} else {
					row = append(row, fmt.Sprintf("%.6g", t.Score))
				}
				rows = append(rows, row)
			}
			w := cmd.OutOrStdout()
			table(w, headers, rows)

			var parts []string
			for _, n := range names {
				parts = append(parts, fmt.Sprintf("%s=%g", n, best.Params[n]))
			}
			fmt.Fprintf(w, "\nbest: %s (%s %.6g)\n", good.Sprint(strings.Join(parts, " ")), metric, best.Score)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&params, "param", []string{"theta=0.25,0.5,1"}, fmt.Sprintf("name=v1,v2,... one per parameter %v", optim.Parameters()))
	cmd.Flags().IntVar(&ticks, "ticks", 200, "ticks per grid point")
	cmd.Flags().StringVar(&metric, "metric", "kinetic_energy", "metric to minimise")
	addGraphFlags(cmd)
	addLayoutFlags(cmd)
	return cmd
}

// parseGrid turns "theta=0.3,0.5" flags into parallel name and value lists.
func parseGrid(params []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(params))
	ranges := make([][]float64, 0, len(params))
	for _, p := range params {
		name, list, ok := strings.Cut(p, "=")
		if !ok {
			return nil, nil, fmt.Errorf("invalid --param %q, want name=v1,v2", p)
		}
		var vals []float64
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("--param %s: %w", name, err)
			}
			vals = append(vals, v)
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}
