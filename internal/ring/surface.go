package ring

// Cap is the stroke end style.
type Cap int

const (
	CapRound Cap = iota
	CapButt
)

// Paint describes how a primitive is stroked.
type Paint struct {
	Color       string  // "#rrggbb"
	Alpha       float64 // 0..1
	StrokeWidth float64
	Cap         Cap
}

// Surface is the 2-D drawing target the overlay renders into. Angles are in
// degrees, 0 at +X, positive sweeping clockwise.
type Surface interface {
	Clear()
	DrawArc(oval Rect, startDeg, sweepDeg float64, p Paint)
	DrawPath(path Path, p Paint)
	// Invalidate asks the host to schedule a redraw.
	Invalidate()
}

// Effects are the interpolated values completion animations drive. The
// zero value is not the rest state; use Rest.
type Effects struct {
	Opacity    float64
	Scale      float64
	Segment    int // Highlighted segment, -1 for none
	ColorBlend float64
}

// Rest returns the Effects every animation returns to.
func Rest() Effects {
	return Effects{Opacity: 1, Scale: 1, Segment: -1, ColorBlend: 0}
}

// IsRest reports whether e equals the rest values.
func (e Effects) IsRest() bool {
	return e == Rest()
}
