package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/forcelayout/internal/config"
	"github.com/san-kum/forcelayout/internal/graphio"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/sim"
	"github.com/san-kum/forcelayout/internal/viz"
)

const workersEnv = "FORCELAYOUT_WORKERS"

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool
	workers    int

	// graph source
	generator string
	size      int

	// layout overrides
	deltaTime      float64
	theta          float64
	repulsion      float64
	stiffness      float64
	springLength   float64
	gravity        float64
	damping        float64
	freeze         float64
	minDistance    float64
	radius         float64
	seed           int64
	massFromDegree bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "forcelayout",
		Short:         "barnes-hut force-directed graph layout",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// the TUI owns the terminal, so keep engine logs quiet
			return viz.RunInteractive(sim.WithLogger(newLogger(os.Stderr, log.ErrorLevel)))
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".forcelayout", "data directory for saved runs")
	pf.StringVar(&configFile, "config", "", "config file (yaml or toml); overrides --preset")
	pf.StringVar(&preset, "preset", "", "start from a named preset")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.IntVar(&workers, "workers", 0, "worker goroutines, 0 = one per CPU (env "+workersEnv+")")

	rootCmd.AddCommand(
		newRunCmd(),
		newLiveCmd(),
		newServeCmd(),
		newBenchCmd(),
		newTuneCmd(),
		newScriptCmd(),
		newPresetsCmd(),
		newGenCmd(),
		newListCmd(),
		newPlotCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		loggerFromContext(rootCmd.Context()).Error(err)
		stop()
		os.Exit(1)
	}
}

// addGraphFlags registers the flags that choose a graph when no file is given.
func addGraphFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&generator, "gen", "ba2", fmt.Sprintf("generated graph when no file is given %v", graphio.ListGenerators()))
	cmd.Flags().IntVar(&size, "size", 500, "generated graph size")
}

func addLayoutFlags(cmd *cobra.Command) {
	d := layout.DefaultConfig()
	f := cmd.Flags()
	f.Float64Var(&deltaTime, "dt", d.DeltaTime, "time step")
	f.Float64Var(&theta, "theta", d.Theta, "barnes-hut opening angle, 0 = exact")
	f.Float64Var(&repulsion, "repulsion", d.RepulsionConstant, "repulsion constant")
	f.Float64Var(&stiffness, "stiffness", d.SpringStiffness, "spring stiffness")
	f.Float64Var(&springLength, "length", d.SpringLength, "spring rest length")
	f.Float64Var(&gravity, "gravity", d.Gravity, "pull towards the origin")
	f.Float64Var(&damping, "damping", d.Damping, "velocity damping in [0,1]")
	f.Float64Var(&freeze, "freeze", d.FreezeThreshold, "freeze nodes whose net force is below this, negative = off")
	f.Float64Var(&minDistance, "min-distance", d.MinDistance, "distance floor for repulsion")
	f.Float64Var(&radius, "radius", d.PlacementRadius, "initial placement radius")
	f.Int64Var(&seed, "seed", d.Seed, "placement and generator seed")
	f.BoolVar(&massFromDegree, "mass-degree", d.MassFromDegree, "scale node mass by degree")
}

// resolveConfig layers defaults, preset or config file, then any flag the
// user set explicitly.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	f := cmd.Flags()
	l := &cfg.Layout
	overrides := []struct {
		flag  string
		apply func()
	}{
		{"dt", func() { l.DeltaTime = deltaTime }},
		{"theta", func() { l.Theta = theta }},
		{"repulsion", func() { l.RepulsionConstant = repulsion }},
		{"stiffness", func() { l.SpringStiffness = stiffness }},
		{"length", func() { l.SpringLength = springLength }},
		{"gravity", func() { l.Gravity = gravity }},
		{"damping", func() { l.Damping = damping }},
		{"freeze", func() { l.FreezeThreshold = freeze }},
		{"min-distance", func() { l.MinDistance = minDistance }},
		{"radius", func() { l.PlacementRadius = radius }},
		{"seed", func() { l.Seed = seed }},
		{"mass-degree", func() { l.MassFromDegree = massFromDegree }},
		{"workers", func() { l.Workers = workers }},
	}
	for _, o := range overrides {
		if fl := f.Lookup(o.flag); fl != nil && fl.Changed {
			o.apply()
		}
	}

	if !f.Changed("workers") {
		if v := os.Getenv(workersEnv); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", workersEnv, err)
			}
			l.Workers = n
		}
	}
	return cfg, nil
}

// loadGraph reads the graph file in args, or generates one. It returns the
// spec and a short name for logs and saved runs.
func loadGraph(args []string, seed int64) (layout.GraphSpec, string, error) {
	if len(args) > 0 {
		spec, err := graphio.ReadFile(args[0])
		if err != nil {
			return layout.GraphSpec{}, "", err
		}
		return spec, graphName(args[0]), nil
	}
	spec, err := graphio.Generate(generator, size, seed)
	if err != nil {
		return layout.GraphSpec{}, "", err
	}
	return spec, fmt.Sprintf("%s%d", generator, size), nil
}

// buildSimulator resolves the configuration and graph shared by run, live
// and serve.
func buildSimulator(cmd *cobra.Command, args []string, opts ...sim.Option) (*sim.Simulator, *config.Config, string, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, "", err
	}
	spec, name, err := loadGraph(args, cfg.Layout.Seed)
	if err != nil {
		return nil, nil, "", err
	}
	s, err := sim.New(spec, cfg.Builder(), opts...)
	if err != nil {
		return nil, nil, "", err
	}
	return s, cfg, name, nil
}
