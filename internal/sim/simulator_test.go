package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/forcelayout/internal/compute"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/sim"
)

func build(spec layout.GraphSpec, b *layout.Builder, opts ...sim.Option) *sim.Simulator {
	s, err := sim.New(spec, b, opts...)
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(s.Close)
	return s
}

func distance(s *sim.Simulator) float64 {
	snap := s.Snapshot()
	return snap.Point(0).Dist(snap.Point(1))
}

func ring(n int) layout.GraphSpec {
	spec := layout.GraphSpec{}
	for i := 0; i < n; i++ {
		spec.Nodes = append(spec.Nodes, layout.Node(layout.NodeID(i)))
		spec.Edges = append(spec.Edges, layout.Edge(layout.NodeID(i), layout.NodeID((i+1)%n)))
	}
	return spec
}

var _ = Describe("Simulator", func() {
	Describe("construction", func() {
		It("rejects invalid configuration", func() {
			_, err := sim.New(ring(3), layout.NewBuilder().DeltaTime(0))
			Expect(err).To(MatchError(layout.ErrConfiguration))

			_, err = sim.New(ring(3), layout.NewBuilder().Damping(1.2))
			Expect(err).To(MatchError(layout.ErrConfiguration))

			_, err = sim.New(ring(3), layout.NewBuilder().Workers(-2))
			Expect(err).To(MatchError(layout.ErrConfiguration))
		})

		It("rejects edges to undeclared nodes", func() {
			spec := layout.GraphSpec{
				Nodes: []layout.NodeSpec{layout.Node(1)},
				Edges: []layout.EdgeSpec{layout.Edge(1, 2)},
			}
			_, err := sim.New(spec, layout.NewBuilder())
			Expect(err).To(MatchError(layout.ErrUnknownNode))
		})

		It("starts running in the built state", func() {
			s := build(ring(3), layout.NewBuilder())
			Expect(s.State()).To(Equal(sim.Built))
			Expect(s.Running()).To(BeTrue())
			Expect(s.Tick()).To(BeZero())
		})

		It("places unpositioned nodes deterministically within the radius", func() {
			a := build(ring(50), layout.NewBuilder().Seed(7))
			b := build(ring(50), layout.NewBuilder().Seed(7))
			c := build(ring(50), layout.NewBuilder().Seed(8))

			Expect(a.Positions()).To(Equal(b.Positions()))
			Expect(a.Positions()).NotTo(Equal(c.Positions()))
			for _, p := range a.Positions() {
				Expect(math.Hypot(p.X, p.Y)).To(BeNumerically("<=", layout.DefaultPlacementRadius+1e-9))
			}
		})

		It("keeps supplied positions", func() {
			spec := layout.GraphSpec{Nodes: []layout.NodeSpec{layout.NodeAt(5, 1.5, -2), layout.Node(6)}}
			s := build(spec, layout.NewBuilder())
			Expect(s.Positions()[0]).To(Equal(layout.Position{ID: 5, X: 1.5, Y: -2}))
		})
	})

	Describe("state machine", func() {
		It("moves between stepping and paused", func() {
			s := build(ring(4), layout.NewBuilder())

			Expect(s.Step()).To(BeTrue())
			Expect(s.State()).To(Equal(sim.Stepping))

			s.SetRunning(false)
			Expect(s.State()).To(Equal(sim.Paused))
			Expect(s.Running()).To(BeFalse())

			before := s.Positions()
			Expect(s.Step()).To(BeFalse())
			Expect(s.Tick()).To(Equal(uint64(1)))
			Expect(s.Positions()).To(Equal(before))

			s.SetRunning(true)
			Expect(s.State()).To(Equal(sim.Stepping))
			Expect(s.Step()).To(BeTrue())
			Expect(s.Tick()).To(Equal(uint64(2)))
		})

		It("can be paused before the first tick", func() {
			s := build(ring(4), layout.NewBuilder())
			s.SetRunning(false)
			Expect(s.State()).To(Equal(sim.Paused))
			Expect(s.Step()).To(BeFalse())
		})

		It("stops stepping once closed", func() {
			s := build(ring(4), layout.NewBuilder())
			s.Close()
			Expect(s.Step()).To(BeFalse())
		})

		It("runs a bounded number of ticks and honours cancellation", func() {
			s := build(ring(8), layout.NewBuilder())
			n, err := s.Run(context.Background(), 25)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(25))

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			n, err = s.Run(ctx, 25)
			Expect(err).To(MatchError(context.Canceled))
			Expect(n).To(BeZero())
		})
	})

	Describe("physics", func() {
		It("leaves an isolated node at rest with damping 1", func() {
			spec := layout.GraphSpec{Nodes: []layout.NodeSpec{layout.NodeAt(1, 3, 4)}}
			s := build(spec, layout.NewBuilder().Damping(1))
			for i := 0; i < 200; i++ {
				s.Step()
			}
			snap := s.Snapshot()
			Expect(snap.Nodes[0]).To(Equal(layout.Position{ID: 1, X: 3, Y: 4}))
			Expect(snap.Velocities[0]).To(Equal(layout.Vec2{}))
		})

		It("pulls two linked nodes together without repulsion", func() {
			spec := layout.GraphSpec{
				Nodes: []layout.NodeSpec{layout.NodeAt(1, 0, 0), layout.NodeAt(2, 10, 0)},
				Edges: []layout.EdgeSpec{layout.Edge(1, 2)},
			}
			s := build(spec, layout.NewBuilder().
				RepulsionConstant(0).
				SpringStiffness(1).
				SpringLength(0).
				DeltaTime(0.1).
				Damping(0.5))

			prev := distance(s)
			for i := 0; i < 1000; i++ {
				s.Step()
				d := distance(s)
				Expect(d).To(BeNumerically("<", prev), "tick %d", i)
				prev = d
			}
			Expect(prev).To(BeNumerically("<", 1e-3))
		})

		It("pushes two unlinked nodes apart", func() {
			spec := layout.GraphSpec{
				Nodes: []layout.NodeSpec{layout.NodeAt(1, 0, 0), layout.NodeAt(2, 1, 0)},
			}
			s := build(spec, layout.NewBuilder().
				RepulsionConstant(1).
				DeltaTime(0.1).
				Damping(0.9))

			prev := distance(s)
			for i := 0; i < 300; i++ {
				s.Step()
				d := distance(s)
				Expect(d).To(BeNumerically(">", prev), "tick %d", i)
				prev = d
			}
		})

		It("balances the middle of three evenly spaced nodes", func() {
			spec := layout.GraphSpec{Nodes: []layout.NodeSpec{
				layout.NodeAt(0, 0, 0),
				layout.NodeAt(1, 1, 0),
				layout.NodeAt(2, 2, 0),
			}}
			s := build(spec, layout.NewBuilder().
				Theta(0).
				RepulsionConstant(1).
				DeltaTime(1).
				Damping(1))

			mid, err := s.Force(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(mid).To(Equal(layout.Vec2{}))

			left, _ := s.Force(0)
			right, _ := s.Force(2)
			Expect(left.X).To(Equal(-right.X))
			Expect(left.X).To(BeNumerically("<", 0))
			Expect(left.Y).To(BeZero())
			Expect(right.Y).To(BeZero())

			s.Step()
			Expect(s.Positions()[1]).To(Equal(layout.Position{ID: 1, X: 1, Y: 0}))
		})

		It("separates coincident nodes without producing NaN", func() {
			spec := layout.GraphSpec{}
			for i := 0; i < 10; i++ {
				spec.Nodes = append(spec.Nodes, layout.NodeAt(layout.NodeID(i), 2, 2))
			}
			s := build(spec, layout.NewBuilder())
			for i := 0; i < 50; i++ {
				s.Step()
			}
			for _, p := range s.Positions() {
				Expect(math.IsNaN(p.X) || math.IsInf(p.X, 0)).To(BeFalse())
				Expect(math.IsNaN(p.Y) || math.IsInf(p.Y, 0)).To(BeFalse())
			}
			snap := s.Snapshot()
			Expect(snap.Point(0).Dist(snap.Point(1))).To(BeNumerically(">", 0))
		})
	})

	Describe("freeze threshold", func() {
		var spec layout.GraphSpec

		BeforeEach(func() {
			spec = layout.GraphSpec{Nodes: []layout.NodeSpec{
				layout.NodeAt(1, 0, 0),
				layout.NodeAt(2, 3, 1),
				layout.NodeAt(3, -2, 5),
				layout.NodeAt(4, 4, -4),
			}}
		})

		It("moves every node when disabled", func() {
			s := build(spec, layout.NewBuilder().FreezeThreshold(-1))
			before := s.Positions()
			s.Step()
			after := s.Positions()
			for i := range before {
				Expect(after[i]).NotTo(Equal(before[i]))
			}
			Expect(s.Snapshot().Counts.Moved).To(Equal(4))
		})

		It("moves nothing when the threshold is huge", func() {
			s := build(spec, layout.NewBuilder().FreezeThreshold(1e12))
			before := s.Positions()
			s.Step()
			Expect(s.Positions()).To(Equal(before))
			Expect(s.Snapshot().Counts.Frozen).To(Equal(4))
		})
	})

	Describe("drag", func() {
		It("holds the dragged node for the next tick with zero velocity", func() {
			s := build(ring(6), layout.NewBuilder())
			for i := 0; i < 5; i++ {
				s.Step()
			}

			Expect(s.SetNodePosition(3, 42.5, -17.25)).To(Succeed())
			Expect(s.Positions()[3]).To(Equal(layout.Position{ID: 3, X: 42.5, Y: -17.25}))

			s.Step()
			snap := s.Snapshot()
			Expect(snap.Nodes[3]).To(Equal(layout.Position{ID: 3, X: 42.5, Y: -17.25}))
			Expect(snap.Velocities[3]).To(Equal(layout.Vec2{}))
			Expect(snap.Counts.Held).To(Equal(1))

			s.Step()
			Expect(s.Positions()[3]).NotTo(Equal(layout.Position{ID: 3, X: 42.5, Y: -17.25}))
		})

		It("reports unknown nodes without touching state", func() {
			s := build(ring(3), layout.NewBuilder())
			before := s.Positions()

			Expect(s.SetNodePosition(99, 1, 1)).To(MatchError(layout.ErrUnknownNode))
			Expect(s.SetPinned(99, true)).To(MatchError(layout.ErrUnknownNode))
			_, err := s.Force(99)
			Expect(err).To(MatchError(layout.ErrUnknownNode))
			Expect(s.Positions()).To(Equal(before))
		})

		It("rejects non-finite coordinates", func() {
			s := build(ring(3), layout.NewBuilder())
			Expect(s.SetNodePosition(1, math.NaN(), 0)).To(MatchError(layout.ErrNonFinite))
		})

		It("keeps pinned nodes in place", func() {
			s := build(ring(5), layout.NewBuilder())
			Expect(s.SetPinned(2, true)).To(Succeed())
			pinned := s.Positions()[2]
			for i := 0; i < 20; i++ {
				s.Step()
			}
			Expect(s.Positions()[2]).To(Equal(pinned))

			Expect(s.SetPinned(2, false)).To(Succeed())
			s.Step()
			Expect(s.Positions()[2]).NotTo(Equal(pinned))
		})
	})

	Describe("snapshots", func() {
		It("are never modified after publication", func() {
			s := build(ring(5), layout.NewBuilder())
			first := s.Snapshot()
			copied := first.Positions()
			s.Step()
			Expect(first.Positions()).To(Equal(copied))
			Expect(s.Snapshot()).NotTo(BeIdenticalTo(first))
		})

		It("notify observers after every tick and command", func() {
			s := build(ring(5), layout.NewBuilder())
			var ticks []uint64
			s.AddObserver(sim.ObserverFunc(func(snap *layout.Snapshot) {
				ticks = append(ticks, snap.Tick)
			}))
			s.Step()
			s.Step()
			Expect(s.SetNodePosition(0, 0, 0)).To(Succeed())
			s.SetRunning(false)
			Expect(ticks).To(Equal([]uint64{1, 2, 2, 2}))
		})

		It("report the mean position and a smoothed mean", func() {
			spec := layout.GraphSpec{Nodes: []layout.NodeSpec{layout.NodeAt(1, 0, 0), layout.NodeAt(2, 4, 2)}}
			s := build(spec, layout.NewBuilder())
			Expect(s.AveragePosition()).To(Equal(layout.Vec2{X: 2, Y: 1}))
			Expect(s.SmoothedAveragePosition()).To(Equal(layout.Vec2{X: 2, Y: 1}))

			Expect(s.SetNodePosition(1, 8, 2)).To(Succeed())
			s.SetRunning(false)
			Expect(s.AveragePosition()).To(Equal(layout.Vec2{X: 6, Y: 2}))
		})

		It("handle an empty graph", func() {
			s := build(layout.GraphSpec{}, layout.NewBuilder())
			Expect(s.Step()).To(BeTrue())
			Expect(s.Positions()).To(BeEmpty())
			Expect(s.AveragePosition()).To(Equal(layout.Vec2{}))
		})
	})

	Describe("scheduling", func() {
		It("produces identical layouts serially and in parallel", func() {
			spec := ring(200)
			spec.Edges = append(spec.Edges, layout.Edge(0, 100), layout.Edge(50, 150))

			serial := build(spec, layout.NewBuilder(), sim.WithScheduler(compute.Serial{}))
			pool := compute.NewPool(4)
			DeferCleanup(pool.Close)
			parallel := build(spec, layout.NewBuilder(), sim.WithScheduler(pool))

			for i := 0; i < 20; i++ {
				serial.Step()
				parallel.Step()
			}
			Expect(parallel.Positions()).To(Equal(serial.Positions()))
		})
	})
})
