// Package sim drives the force-directed layout: it owns node state, runs
// ticks and publishes snapshots.
//
// A tick has three phases separated by full barriers:
//
//  1. the quadtree is rebuilt from current positions on the calling goroutine
//  2. net forces are computed in parallel into per-node slots
//  3. nodes are integrated in parallel, each worker owning a disjoint range
//
// Step and the command methods (SetRunning, SetNodePosition, SetPinned,
// Force) are serialized by one mutex, so a drag can never land in the middle
// of a tick. Read methods (Positions, Snapshot, AveragePosition) return
// immutable snapshots and never wait for a tick.
package sim

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/san-kum/forcelayout/internal/compute"
	"github.com/san-kum/forcelayout/internal/forces"
	"github.com/san-kum/forcelayout/internal/integrators"
	"github.com/san-kum/forcelayout/internal/layout"
)

type Option func(*Simulator)

func WithLogger(l *log.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

// WithScheduler replaces the worker pool. The simulator does not close a
// scheduler it did not create.
func WithScheduler(sc compute.Scheduler) Option {
	return func(s *Simulator) { s.sched = sc }
}

func WithIntegrator(in layout.Integrator) Option {
	return func(s *Simulator) { s.integ = in }
}

type Simulator struct {
	mu sync.Mutex

	cfg      layout.Config
	graph    *layout.Graph
	bodies   *layout.Bodies
	model    *forces.Model
	integ    layout.Integrator
	sched    compute.Scheduler
	ownSched bool
	logger   *log.Logger

	state     State
	running   bool
	closed    bool
	tick      uint64
	counts    layout.StepCounts
	smoothed  layout.Vec2
	observers []Observer

	snap atomic.Pointer[layout.Snapshot]
}

// New assembles the configuration from b and builds a simulator for spec.
func New(spec layout.GraphSpec, b *layout.Builder, opts ...Option) (*Simulator, error) {
	cfg, err := b.Config()
	if err != nil {
		return nil, err
	}
	return Build(spec, cfg, opts...)
}

// Build binds spec to cfg. The returned simulator is running and in state
// Built; the first Step moves it to Stepping.
func Build(spec layout.GraphSpec, cfg layout.Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g, err := layout.NewGraph(spec, cfg.MassFromDegree)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:     cfg,
		graph:   g,
		bodies:  layout.NewBodies(g.Len()),
		model:   forces.NewModel(cfg, g),
		running: true,
		state:   Built,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.integ == nil {
		s.integ = integrators.NewDamped()
	}
	if s.sched == nil {
		s.sched = compute.NewPool(cfg.Workers)
		s.ownSched = true
	}

	place(g, cfg, s.bodies.Pos)
	for i := 0; i < g.Len(); i++ {
		s.bodies.Mass[i] = g.Mass(i)
		s.bodies.Pinned[i] = g.Pinned(i)
	}
	s.smoothed = s.bodies.Average()
	s.publishLocked()

	s.logger.Debug("simulator built",
		"nodes", g.Len(),
		"edges", len(g.Links()),
		"mass", g.TotalMass(),
		"workers", s.sched.Workers(),
		"integrator", s.integ.Name(),
		"theta", cfg.Theta,
	)
	return s, nil
}

// Step advances exactly one tick and reports whether it ran. A paused or
// closed simulator does nothing and returns false.
func (s *Simulator) Step() bool {
	s.mu.Lock()
	if !s.running || s.closed {
		s.mu.Unlock()
		return false
	}
	s.state = Stepping

	n := s.bodies.Len()
	s.model.Prepare(s.bodies)
	s.sched.For(n, func(start, end int) {
		s.model.Compute(s.bodies, start, end)
	})

	var moved, frozen, held atomic.Int64
	s.sched.For(n, func(start, end int) {
		c := s.integ.Integrate(s.cfg, s.bodies, start, end)
		moved.Add(int64(c.Moved))
		frozen.Add(int64(c.Frozen))
		held.Add(int64(c.Held))
	})

	s.tick++
	s.counts = layout.StepCounts{
		Moved:  int(moved.Load()),
		Frozen: int(frozen.Load()),
		Held:   int(held.Load()),
	}
	avg := s.bodies.Average()
	s.smoothed = avg.Add(s.smoothed).Scale(0.5)
	snap := s.publishLocked()
	obs := s.observersLocked()
	s.mu.Unlock()

	notify(obs, snap)
	return true
}

// Run steps up to ticks times, stopping early when ctx is cancelled or the
// simulator is paused. It returns the number of ticks that ran.
func (s *Simulator) Run(ctx context.Context, ticks int) (int, error) {
	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			return i, ctx.Err()
		default:
		}
		if !s.Step() {
			return i, nil
		}
	}
	return ticks, nil
}

// SetRunning toggles between Stepping and Paused.
func (s *Simulator) SetRunning(on bool) {
	s.mu.Lock()
	if s.running == on && s.state != Built {
		s.mu.Unlock()
		return
	}
	s.running = on
	if on {
		s.state = Stepping
	} else {
		s.state = Paused
	}
	s.logger.Debug("simulator state", "state", s.state, "tick", s.tick)
	snap := s.publishLocked()
	obs := s.observersLocked()
	s.mu.Unlock()

	notify(obs, snap)
}

func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetNodePosition moves a node, as when the user drags it. Its velocity is
// cleared and the next tick leaves its position untouched.
func (s *Simulator) SetNodePosition(id layout.NodeID, x, y float64) error {
	p := layout.Vec2{X: x, Y: y}
	if !p.IsFinite() {
		return &layout.NodeError{Op: "set position", ID: id, Wrapped: layout.ErrNonFinite}
	}

	s.mu.Lock()
	i, ok := s.graph.Index(id)
	if !ok {
		s.mu.Unlock()
		return &layout.NodeError{Op: "set position", ID: id, Wrapped: layout.ErrUnknownNode}
	}
	s.bodies.Pos[i] = p
	s.bodies.Vel[i] = layout.Vec2{}
	s.bodies.Held[i] = true
	snap := s.publishLocked()
	obs := s.observersLocked()
	s.mu.Unlock()

	notify(obs, snap)
	return nil
}

// SetPinned fixes a node in place, or releases it.
func (s *Simulator) SetPinned(id layout.NodeID, pinned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.graph.Index(id)
	if !ok {
		return &layout.NodeError{Op: "pin", ID: id, Wrapped: layout.ErrUnknownNode}
	}
	s.bodies.Pinned[i] = pinned
	if pinned {
		s.bodies.Vel[i] = layout.Vec2{}
	}
	return nil
}

// Force returns the net force currently acting on a node, evaluated from
// the current positions.
func (s *Simulator) Force(id layout.NodeID) (layout.Vec2, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.graph.Index(id)
	if !ok {
		return layout.Vec2{}, &layout.NodeError{Op: "force", ID: id, Wrapped: layout.ErrUnknownNode}
	}
	s.model.Prepare(s.bodies)
	return s.model.Net(s.bodies, i), nil
}

// Positions returns the ordered (id, x, y) list of the latest snapshot.
func (s *Simulator) Positions() []layout.Position {
	return s.snap.Load().Positions()
}

// Snapshot returns the latest published snapshot. It must not be modified.
func (s *Simulator) Snapshot() *layout.Snapshot {
	return s.snap.Load()
}

// AveragePosition is the mean node position, used to centre a camera.
func (s *Simulator) AveragePosition() layout.Vec2 {
	return s.snap.Load().Average
}

// SmoothedAveragePosition halves the distance to the current average every
// tick, which keeps a following camera from jittering.
func (s *Simulator) SmoothedAveragePosition() layout.Vec2 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.smoothed
}

func (s *Simulator) Tick() uint64 {
	return s.snap.Load().Tick
}

func (s *Simulator) Config() layout.Config { return s.cfg }

// Graph returns the immutable graph the simulator was built from.
func (s *Simulator) Graph() *layout.Graph { return s.graph }

func (s *Simulator) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Close releases the worker pool. Later calls to Step return false.
func (s *Simulator) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.ownSched {
		s.sched.Close()
	}
}

func (s *Simulator) publishLocked() *layout.Snapshot {
	snap := layout.NewSnapshot(s.tick, s.running, s.graph.IDs(), s.bodies, s.counts)
	s.snap.Store(snap)
	return snap
}

func (s *Simulator) observersLocked() []Observer {
	if len(s.observers) == 0 {
		return nil
	}
	return append([]Observer(nil), s.observers...)
}

func notify(obs []Observer, snap *layout.Snapshot) {
	for _, o := range obs {
		o.OnTick(snap)
	}
}
