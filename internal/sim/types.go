package sim

import "github.com/san-kum/forcelayout/internal/layout"

// State is the lifecycle position of a Simulator.
type State int

const (
	// Built: graph loaded, no tick run and no pause requested yet.
	Built State = iota
	// Stepping: each Step advances one tick.
	Stepping
	// Paused: Step is a no-op until SetRunning(true).
	Paused
)

func (s State) String() string {
	switch s {
	case Built:
		return "built"
	case Stepping:
		return "stepping"
	case Paused:
		return "paused"
	}
	return "unknown"
}

// Observer is notified with every snapshot the simulator publishes, after
// the simulator lock has been released. OnTick must not block for long; it
// runs on the goroutine that called Step or the command method.
type Observer interface {
	OnTick(s *layout.Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s *layout.Snapshot)

func (f ObserverFunc) OnTick(s *layout.Snapshot) { f(s) }
