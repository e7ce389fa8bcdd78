// Package ring turns cutout geometry and animation outputs into draw calls.
package ring

import (
	"math"
)

// Point is a position in surface coordinates.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in surface coordinates.
type Rect struct {
	Left, Top, Right, Bottom float64
}

func (r Rect) Width() float64  { return r.Right - r.Left }
func (r Rect) Height() float64 { return r.Bottom - r.Top }

func (r Rect) Center() Point {
	return Point{X: (r.Left + r.Right) / 2, Y: (r.Top + r.Bottom) / 2}
}

func (r Rect) Empty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Inset grows (d < 0) or shrinks (d > 0) the rectangle on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{Left: r.Left + d, Top: r.Top + d, Right: r.Right - d, Bottom: r.Bottom - d}
}

// Scale resizes the rectangle about its center.
func (r Rect) Scale(f float64) Rect {
	c := r.Center()
	hw, hh := r.Width()/2*f, r.Height()/2*f
	return Rect{Left: c.X - hw, Top: c.Y - hh, Right: c.X + hw, Bottom: c.Y + hh}
}

// Path is a closed polyline.
type Path []Point

// Length returns the perimeter of the closed path.
func (p Path) Length() float64 {
	if len(p) < 2 {
		return 0
	}
	total := 0.0
	for i := range p {
		a, b := p[i], p[(i+1)%len(p)]
		total += math.Hypot(b.X-a.X, b.Y-a.Y)
	}
	return total
}

// Partial returns the open prefix of the closed path covering fraction of
// its perimeter.
func (p Path) Partial(fraction float64) Path {
	if len(p) < 2 || fraction <= 0 {
		return nil
	}
	if fraction >= 1 {
		out := make(Path, len(p)+1)
		copy(out, p)
		out[len(p)] = p[0]
		return out
	}

	want := p.Length() * fraction
	out := Path{p[0]}
	for i := range p {
		a, b := p[i], p[(i+1)%len(p)]
		seg := math.Hypot(b.X-a.X, b.Y-a.Y)
		if seg >= want {
			t := 0.0
			if seg > 0 {
				t = want / seg
			}
			return append(out, Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t})
		}
		want -= seg
		out = append(out, b)
	}
	return out
}

// CutoutShape is the outline of the display cutout.
type CutoutShape int

const (
	ShapeCircle CutoutShape = iota
	ShapePill
)

// Cutout is the camera cutout geometry reported by the host.
type Cutout struct {
	Bounds Rect
	Shape  CutoutShape
}

// Valid reports whether the cutout can be drawn around.
func (c Cutout) Valid() bool {
	return !c.Bounds.Empty()
}

// RingBounds returns the rectangle the ring's stroke center follows: the
// cutout grown by gap plus half the stroke. Circles stay square.
func (c Cutout) RingBounds(gap, stroke float64) Rect {
	b := c.Bounds.Inset(-(gap + stroke/2))
	if c.Shape == ShapeCircle {
		size := math.Max(b.Width(), b.Height())
		center := c.Bounds.Center()
		b = Rect{
			Left:   center.X - size/2,
			Top:    center.Y - size/2,
			Right:  center.X + size/2,
			Bottom: center.Y + size/2,
		}
	}
	return b
}

// PillPath returns the outline of a stadium inscribed in r, starting at the
// top center and running clockwise.
func PillPath(r Rect, clockwise bool) Path {
	const arcSteps = 16
	radius := math.Min(r.Width(), r.Height()) / 2
	c := r.Center()

	var path Path
	path = append(path, Point{X: c.X, Y: r.Top})

	if r.Width() >= r.Height() {
		// Horizontal stadium: right cap then left cap
		right := Point{X: r.Right - radius, Y: c.Y}
		left := Point{X: r.Left + radius, Y: c.Y}
		path = append(path, Point{X: right.X, Y: r.Top})
		path = append(path, arcPoints(right, radius, -90, 90, arcSteps)...)
		path = append(path, Point{X: left.X, Y: r.Bottom})
		path = append(path, arcPoints(left, radius, 90, 270, arcSteps)...)
	} else {
		top := Point{X: c.X, Y: r.Top + radius}
		bottom := Point{X: c.X, Y: r.Bottom - radius}
		path = append(path, arcPoints(top, radius, -90, 0, arcSteps/2)...)
		path = append(path, Point{X: r.Right, Y: bottom.Y})
		path = append(path, arcPoints(bottom, radius, 0, 180, arcSteps)...)
		path = append(path, Point{X: r.Left, Y: top.Y})
		path = append(path, arcPoints(top, radius, 180, 270, arcSteps/2)...)
	}

	if !clockwise {
		// Keep the start point, reverse the traversal
		rev := Path{path[0]}
		for i := len(path) - 1; i > 0; i-- {
			rev = append(rev, path[i])
		}
		path = rev
	}
	return path
}

// arcPoints samples a circular arc, degrees measured clockwise from +X with
// Y pointing down.
func arcPoints(c Point, radius, fromDeg, toDeg float64, steps int) Path {
	out := make(Path, 0, steps)
	for i := 1; i <= steps; i++ {
		deg := fromDeg + (toDeg-fromDeg)*float64(i)/float64(steps)
		rad := deg * math.Pi / 180
		out = append(out, Point{X: c.X + radius*math.Cos(rad), Y: c.Y + radius*math.Sin(rad)})
	}
	return out
}
