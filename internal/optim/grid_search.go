package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/forcelayout/internal/compute"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/metrics"
	"github.com/san-kum/forcelayout/internal/sim"
)

// Setters maps tunable parameter names to the config field they write.
var Setters = map[string]func(*layout.Config, float64){
	"theta":              func(c *layout.Config, v float64) { c.Theta = v },
	"damping":            func(c *layout.Config, v float64) { c.Damping = v },
	"delta_time":         func(c *layout.Config, v float64) { c.DeltaTime = v },
	"gravity":            func(c *layout.Config, v float64) { c.Gravity = v },
	"spring_length":      func(c *layout.Config, v float64) { c.SpringLength = v },
	"spring_stiffness":   func(c *layout.Config, v float64) { c.SpringStiffness = v },
	"repulsion_constant": func(c *layout.Config, v float64) { c.RepulsionConstant = v },
}

func Parameters() []string {
	names := make([]string, 0, len(Setters))
	for name := range Setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Trial is one evaluated point of the grid.
type Trial struct {
	Params map[string]float64
	Score  float64
	Ticks  int
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	ticks      int
	sched      compute.Scheduler
}

func NewGridSearch(params []string, ranges [][]float64, ticks int) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%d parameters but %d ranges", len(params), len(ranges))
	}
	for i, name := range params {
		if _, ok := Setters[name]; !ok {
			return nil, fmt.Errorf("unknown parameter %q (have %v)", name, Parameters())
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("parameter %q has no values", name)
		}
	}
	if ticks < 1 {
		return nil, fmt.Errorf("ticks must be >= 1, got %d", ticks)
	}
	return &GridSearch{paramNames: params, ranges: ranges, ticks: ticks}, nil
}

// WithScheduler shares one worker pool between all trials.
func (g *GridSearch) WithScheduler(sc compute.Scheduler) *GridSearch {
	g.sched = sc
	return g
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search lays out spec once per grid point, starting from base, and keeps
// the point with the lowest final value of metricName. Points whose config
// does not validate are recorded with their error and skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	spec layout.GraphSpec,
	base layout.Config,
	metricName string,
) (Trial, []Trial, error) {
	best := Trial{Score: math.Inf(1)}
	trials := make([]Trial, 0, g.Size())

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) error {
		t := g.evaluate(ctx, spec, base, params, metricName)
		if t.Err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		trials = append(trials, t)
		if t.Err == nil && t.Score < best.Score {
			best = t
		}
		return nil
	})
	if err != nil {
		return best, trials, err
	}
	if best.Params == nil {
		return best, trials, fmt.Errorf("no grid point produced a %s value", metricName)
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	visit func(map[string]float64) error,
) error {
	if depth == len(g.paramNames) {
		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}
		return visit(params)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		if err := ctx.Err(); err != nil {
			return err
		}
		current[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, current, visit); err != nil {
			return err
		}
	}
	delete(current, paramName)
	return nil
}

func (g *GridSearch) evaluate(
	ctx context.Context,
	spec layout.GraphSpec,
	base layout.Config,
	params map[string]float64,
	metricName string,
) Trial {
	t := Trial{Params: params}
	cfg := base
	for name, v := range params {
		Setters[name](&cfg, v)
	}

	var opts []sim.Option
	if g.sched != nil {
		opts = append(opts, sim.WithScheduler(g.sched))
	}
	s, err := sim.Build(spec, cfg, opts...)
	if err != nil {
		t.Err = err
		return t
	}
	defer s.Close()

	rec := metrics.NewRecorder(1, metrics.Defaults()...)
	s.AddObserver(rec)
	t.Ticks, t.Err = s.Run(ctx, g.ticks)
	if t.Err != nil {
		return t
	}
	v, ok := rec.Values()[metricName]
	if !ok {
		t.Err = fmt.Errorf("unknown metric %q (have %v)", metricName, rec.Names())
		return t
	}
	t.Score = v
	return t
}
