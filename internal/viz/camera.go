package viz

import (
	"math"

	"github.com/san-kum/forcelayout/internal/layout"
)

const (
	fitMargin = 1.15
	minScale  = 1e-6
)

// Camera maps layout coordinates to canvas sub-pixels. Scale is sub-pixels
// per layout unit; the y axis points up.
type Camera struct {
	Center layout.Vec2
	Scale  float64
	Follow bool
}

func NewCamera() Camera {
	return Camera{Scale: 1, Follow: true}
}

// Fit centers the snapshot's bounding box in a w x h viewport.
func (c *Camera) Fit(snap *layout.Snapshot, w, h int) {
	lo, hi, ok := snap.Bounds()
	if !ok {
		c.Center, c.Scale = layout.Vec2{}, 1
		return
	}
	c.Center = layout.Vec2{X: (lo.X + hi.X) / 2, Y: (lo.Y + hi.Y) / 2}
	rx := (hi.X - lo.X) * fitMargin
	ry := (hi.Y - lo.Y) * fitMargin
	scale := math.Inf(1)
	if rx > 0 {
		scale = float64(w-1) / rx
	}
	if ry > 0 {
		scale = math.Min(scale, float64(h-1)/ry)
	}
	if math.IsInf(scale, 1) {
		scale = 1
	}
	c.Scale = math.Max(scale, minScale)
}

func (c Camera) Project(p layout.Vec2, w, h int) (int, int) {
	x := float64(w)/2 + (p.X-c.Center.X)*c.Scale
	y := float64(h)/2 - (p.Y-c.Center.Y)*c.Scale
	return int(math.Round(x)), int(math.Round(y))
}

// Unproject is the inverse of Project for sub-pixel (x, y).
func (c Camera) Unproject(x, y, w, h int) layout.Vec2 {
	return layout.Vec2{
		X: c.Center.X + (float64(x)-float64(w)/2)/c.Scale,
		Y: c.Center.Y - (float64(y)-float64(h)/2)/c.Scale,
	}
}

// Pan moves the view by (dx, dy) sub-pixels and stops following.
func (c *Camera) Pan(dx, dy int) {
	c.Center.X += float64(dx) / c.Scale
	c.Center.Y -= float64(dy) / c.Scale
	c.Follow = false
}

func (c *Camera) Zoom(f float64) {
	c.Scale = math.Max(c.Scale*f, minScale)
	c.Follow = false
}

// RenderPositions draws pos as dots on a w x h cell canvas fitted to their
// bounding box.
func RenderPositions(pos []layout.Position, w, h int) string {
	c := NewCanvas(w, h)
	dw, dh := c.Dots()
	snap := &layout.Snapshot{Nodes: pos}
	cam := NewCamera()
	cam.Fit(snap, dw, dh)
	for i := range pos {
		x, y := cam.Project(snap.Point(i), dw, dh)
		c.Dot(x, y)
	}
	return c.String()
}
