package layout

import (
	"errors"
	"fmt"
)

// Domain errors for layout operations.
var (
	// ErrConfiguration indicates a tick parameter outside its valid range.
	ErrConfiguration = errors.New("layout: invalid configuration")

	// ErrUnknownNode indicates a node id absent from the graph.
	ErrUnknownNode = errors.New("layout: unknown node")

	// ErrInvalidGraph indicates malformed graph input (duplicate ids, bad weights or masses).
	ErrInvalidGraph = errors.New("layout: invalid graph")

	// ErrNonFinite indicates a NaN or infinite coordinate supplied by a caller.
	ErrNonFinite = errors.New("layout: non-finite coordinate")
)

// ConfigError reports which configuration field was rejected.
type ConfigError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("layout: invalid configuration: %s=%g (%s)", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// NodeError wraps an error with the node id and the operation that failed.
type NodeError struct {
	Op      string
	ID      NodeID
	Wrapped error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s node %d: %v", e.Op, e.ID, e.Wrapped)
}

func (e *NodeError) Unwrap() error {
	return e.Wrapped
}
