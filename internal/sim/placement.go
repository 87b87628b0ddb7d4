package sim

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/san-kum/forcelayout/internal/layout"
)

const (
	goldenAngle = 2.399963229728653
	noiseScale  = 0.37
)

// place fills pos with the caller-supplied start positions and spreads the
// remaining nodes over a disc of cfg.PlacementRadius. The layout is a
// sunflower spiral bent by simplex noise, so it is irregular enough to break
// symmetry yet fully determined by cfg.Seed.
func place(g *layout.Graph, cfg layout.Config, pos []layout.Vec2) {
	noise := opensimplex.New(cfg.Seed)
	n := float64(g.Len())
	for i := range pos {
		if p, ok := g.Initial(i); ok {
			pos[i] = p
			continue
		}
		fi := float64(i)
		r := cfg.PlacementRadius * math.Sqrt((fi+0.5)/n)
		r *= 1 + 0.1*noise.Eval2(0, fi*noiseScale)
		r = math.Min(r, cfg.PlacementRadius)
		a := fi*goldenAngle + noise.Eval2(fi*noiseScale, 0)*math.Pi/4
		pos[i] = layout.Vec2{X: r * math.Cos(a), Y: r * math.Sin(a)}
	}
}
