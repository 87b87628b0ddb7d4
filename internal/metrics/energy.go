package metrics

import (
	"math"

	"github.com/san-kum/forcelayout/internal/layout"
)

// KineticEnergy is ½·Σ m·|v|² of the latest snapshot.
type KineticEnergy struct {
	name  string
	value float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_energy"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(s *layout.Snapshot) {
	k.value = Kinetic(s)
}

func (k *KineticEnergy) Value() float64 { return k.value }
func (k *KineticEnergy) Reset() { k.value = 0 }

// Kinetic returns the total kinetic energy of a snapshot.
func Kinetic(s *layout.Snapshot) float64 {
	e := 0.0
	for i, v := range s.Velocities {
		e += 0.5 * s.Mass[i] * v.Len2()
	}
	return e
}

// Settling is the current kinetic energy as a fraction of the peak seen so
// far. It falls toward zero as the layout converges.
type Settling struct {
	name    string
	peak    float64
	current float64
}

func NewSettling() *Settling {
	return &Settling{name: "settling"}
}

func (st *Settling) Name() string { return st.name }

func (st *Settling) Observe(s *layout.Snapshot) {
	st.current = Kinetic(s)
	st.peak = math.Max(st.peak, st.current)
}

func (st *Settling) Value() float64 {
	if st.peak == 0 {
		return 0
	}
	return st.current / st.peak
}

func (st *Settling) Reset() {
	st.peak = 0
	st.current = 0
}
