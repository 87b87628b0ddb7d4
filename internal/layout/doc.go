// Package layout provides the core types shared by the force-directed
// layout engine.
//
// The package defines the vocabulary every other package speaks:
//
//   - [Vec2]: 2D vector used for positions, velocities and forces
//   - [Config]: immutable tick parameters, assembled by [Builder]
//   - [Graph]: the fixed node/edge set built from a [GraphSpec]
//   - [Bodies]: per-node mutable physics state (struct of arrays)
//   - [Snapshot]: immutable view of the layout published after each tick
//
// # Example
//
//	cfg, err := layout.NewBuilder().
//	    DeltaTime(0.01).
//	    Theta(0.5).
//	    FreezeThreshold(-1).
//	    Config()
//	if err != nil {
//	    return err
//	}
//	s, err := sim.Build(spec, cfg)
//
// # Errors
//
// Invalid configuration wraps [ErrConfiguration]; references to nodes that
// do not exist wrap [ErrUnknownNode]; malformed graph input wraps
// [ErrInvalidGraph]. Numeric degeneracy (coincident nodes) is never an error.
package layout
