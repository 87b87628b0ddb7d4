package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/forcelayout/internal/automation"
	"github.com/san-kum/forcelayout/internal/sim"
)

func newScriptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script <scenario.yaml> [graph-file]",
		Short: "replay a scripted sequence of run, pause, drag, pin and export steps",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			scenario, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			s, _, name, err := buildSimulator(cmd, args[1:], sim.WithLogger(logger))
			if err != nil {
				return err
			}
			defer s.Close()

			logger.Info("running scenario", "name", scenario.Name, "graph", name, "steps", len(scenario.Steps))
			results, err := automation.RunScenario(ctx, scenario, s, logger)

			rows := make([][]string, len(results))
			for i, r := range results {
				rows[i] = []string{
					fmt.Sprint(i + 1),
					r.Action,
					fmt.Sprint(r.Ran),
					fmt.Sprint(r.Tick),
					fmt.Sprintf("(%.3f, %.3f)", r.Average.X, r.Average.Y),
				}
			}
			table(cmd.OutOrStdout(), []string{"STEP", "ACTION", "RAN", "TICK", "AVERAGE"}, rows)
			return err
		},
	}
	addGraphFlags(cmd)
	addLayoutFlags(cmd)
	return cmd
}
