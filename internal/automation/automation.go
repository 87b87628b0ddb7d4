package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/forcelayout/internal/export"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/optim"
	"github.com/san-kum/forcelayout/internal/sim"
)

// Scenario defines a scripted sequence of simulator commands
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single command. Action is one of run, pause, resume,
// drag, pin, unpin or export.
type ScenarioStep struct {
	Action string  `yaml:"action"`
	Ticks  int     `yaml:"ticks,omitempty"`
	ID     int64   `yaml:"id,omitempty"`
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
	Format string  `yaml:"format,omitempty"`
	Out    string  `yaml:"out,omitempty"`
}

// StepResult records the simulator state after a step.
type StepResult struct {
	Action  string
	Tick    uint64
	Ran     int
	Average layout.Vec2
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &scenario, nil
}

// RunScenario applies every step to s in order and stops at the first error.
func RunScenario(ctx context.Context, scenario *Scenario, s *sim.Simulator, logger *log.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = log.Default()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Debug("scenario step", "n", i+1, "of", len(scenario.Steps), "action", step.Action)

		res := StepResult{Action: step.Action}
		var err error
		id := layout.NodeID(step.ID)
		switch step.Action {
		case "run":
			res.Ran, err = s.Run(ctx, step.Ticks)
		case "pause":
			s.SetRunning(false)
		case "resume":
			s.SetRunning(true)
		case "drag":
			err = s.SetNodePosition(id, step.X, step.Y)
		case "pin":
			err = s.SetPinned(id, true)
		case "unpin":
			err = s.SetPinned(id, false)
		case "export":
			err = writeExport(ctx, step, s)
		default:
			err = fmt.Errorf("unknown action %q", step.Action)
		}
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
		}

		res.Tick = s.Tick()
		res.Average = s.AveragePosition()
		results = append(results, res)
	}

	return results, nil
}

func writeExport(ctx context.Context, step ScenarioStep, s *sim.Simulator) error {
	if step.Out == "" {
		return fmt.Errorf("export needs an output path")
	}
	format := step.Format
	if format == "" {
		format = "csv"
	}
	f, err := os.Create(step.Out)
	if err != nil {
		return err
	}
	if err := export.Write(ctx, format, f, s.Snapshot(), s.Graph()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ParameterSweep lays out the same graph across evenly spaced values of one
// parameter.
type ParameterSweep struct {
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Ticks     int
	Metric    string
}

// SweepResult holds the final metric value for one parameter value
type SweepResult struct {
	ParamValue float64
	Score      float64
	Ticks      int
	Err        error
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, spec layout.GraphSpec, base layout.Config) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}
	values := make([]float64, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	for i := range values {
		values[i] = sweep.ParamMin + float64(i)*paramStep
	}

	grid, err := optim.NewGridSearch([]string{sweep.ParamName}, [][]float64{values}, sweep.Ticks)
	if err != nil {
		return nil, err
	}
	_, trials, err := grid.Search(ctx, spec, base, sweep.Metric)
	results := make([]SweepResult, len(trials))
	for i, t := range trials {
		results[i] = SweepResult{
			ParamValue: t.Params[sweep.ParamName],
			Score:      t.Score,
			Ticks:      t.Ticks,
			Err:        t.Err,
		}
	}
	return results, err
}
