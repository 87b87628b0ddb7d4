package metrics

import (
	"sync"

	"github.com/san-kum/forcelayout/internal/layout"
)

// Recorder feeds every snapshot to a set of metrics and keeps the value
// history of each. It satisfies sim.Observer. Snapshots that do not advance
// the tick (drags, pauses) are ignored.
type Recorder struct {
	mu      sync.Mutex
	metrics []Metric
	series  map[string][]float64
	last    uint64
	limit   int
}

// NewRecorder keeps at most limit values per metric; limit <= 0 keeps all.
func NewRecorder(limit int, ms ...Metric) *Recorder {
	return &Recorder{
		metrics: ms,
		series:  make(map[string][]float64, len(ms)),
		limit:   limit,
	}
}

func (r *Recorder) OnTick(s *layout.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.Tick == 0 || s.Tick == r.last {
		return
	}
	r.last = s.Tick
	for _, m := range r.metrics {
		m.Observe(s)
		vals := append(r.series[m.Name()], m.Value())
		if r.limit > 0 && len(vals) > r.limit {
			vals = vals[len(vals)-r.limit:]
		}
		r.series[m.Name()] = vals
	}
}

// Series returns a copy of the recorded values of the named metric.
func (r *Recorder) Series(name string) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.series[name]...)
}

// Values returns the current value of every metric by name.
func (r *Recorder) Values() map[string]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]float64, len(r.metrics))
	for _, m := range r.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Names lists the metrics in registration order.
func (r *Recorder) Names() []string {
	names := make([]string, len(r.metrics))
	for i, m := range r.metrics {
		names[i] = m.Name()
	}
	return names
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.metrics {
		m.Reset()
	}
	r.series = make(map[string][]float64, len(r.metrics))
	r.last = 0
}
