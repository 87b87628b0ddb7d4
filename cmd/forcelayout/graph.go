package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/forcelayout/internal/config"
	"github.com/san-kum/forcelayout/internal/graphio"
)

func graphName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func newGenCmd() *cobra.Command {
	var format string
	var genSeed int64
	cmd := &cobra.Command{
		Use:   "gen [generator] [size]",
		Short: "write a generated graph to stdout",
		Long:  fmt.Sprintf("Generators: %s", strings.Join(graphio.ListGenerators(), ", ")),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var n int
			if _, err := fmt.Sscanf(args[1], "%d", &n); err != nil {
				return fmt.Errorf("invalid size %q", args[1])
			}
			spec, err := graphio.Generate(args[0], n, genSeed)
			if err != nil {
				return err
			}
			return graphio.Write(os.Stdout, spec, graphio.Format(format))
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format (yaml, json)")
	cmd.Flags().Int64Var(&genSeed, "seed", 1, "generator seed")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := [][]string{}
			for _, name := range config.ListPresets() {
				l := config.GetPreset(name).Layout
				rows = append(rows, []string{
					name,
					fmt.Sprintf("%g", l.Theta),
					fmt.Sprintf("%g", l.DeltaTime),
					fmt.Sprintf("%g", l.Damping),
					fmt.Sprintf("%g", l.FreezeThreshold),
					fmt.Sprintf("%g", l.SpringLength),
					fmt.Sprintf("%g", l.Gravity),
					fmt.Sprintf("%t", l.MassFromDegree),
				})
			}
			table(cmd.OutOrStdout(), []string{"PRESET", "THETA", "DT", "DAMPING", "FREEZE", "LENGTH", "GRAVITY", "MASS-DEGREE"}, rows)
			return nil
		},
	}
}
