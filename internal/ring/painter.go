package ring

import (
	"math"
)

// StartAngle puts 0% at the top of the ring.
const StartAngle = -90.0

// DefaultSegments is used when a segment is highlighted on a ring configured
// as a continuous arc.
const DefaultSegments = 12

// Style holds the visual parameters the painter needs.
type Style struct {
	ProgressColor  string
	TrackColor     string
	FinishColor    string
	ErrorColor     string
	HighlightColor string

	StrokeWidth float64
	Gap         float64 // Distance between cutout edge and stroke
	Opacity     float64
	Clockwise   bool
	ShowTrack   bool

	SegmentCount  int     // <= 1 draws a continuous arc
	SegmentGapDeg float64 // Angular gap between segments
}

// Painter issues draw calls for one frame.
type Painter struct {
	Style Style
}

func (p Painter) paint(color string, alpha float64) Paint {
	return Paint{
		Color:       color,
		Alpha:       clamp01(alpha * p.Style.Opacity),
		StrokeWidth: p.Style.StrokeWidth,
		Cap:         CapRound,
	}
}

// DrawProgress draws the ring around cutout at progress (0..100) with the
// given completion effects applied.
func (p Painter) DrawProgress(s Surface, cutout Cutout, progress float64, fx Effects) {
	if fx.Opacity <= 0 || fx.Scale <= 0 {
		return
	}
	bounds := cutout.RingBounds(p.Style.Gap, p.Style.StrokeWidth).Scale(fx.Scale)
	color := Blend(p.Style.ProgressColor, p.Style.FinishColor, fx.ColorBlend)
	fraction := clamp01(progress / 100)

	if cutout.Shape == ShapePill {
		outline := PillPath(bounds, p.Style.Clockwise)
		if p.Style.ShowTrack {
			s.DrawPath(outline.Partial(1), p.paint(p.Style.TrackColor, fx.Opacity))
		}
		if part := outline.Partial(fraction); len(part) > 1 {
			s.DrawPath(part, p.paint(color, fx.Opacity))
		}
		return
	}

	if p.Style.ShowTrack {
		s.DrawArc(bounds, StartAngle, 360, p.paint(p.Style.TrackColor, fx.Opacity))
	}

	if n := p.segments(fx); n > 1 {
		p.drawSegments(s, bounds, n, fraction, color, fx)
		return
	}

	if fraction > 0 {
		s.DrawArc(bounds, StartAngle, p.direction()*360*fraction, p.paint(color, fx.Opacity))
	}
}

// drawSegments splits the ring into equal segments. A segment is lit once
// progress covers its midpoint; the highlighted one uses the highlight color.
func (p Painter) drawSegments(s Surface, bounds Rect, n int, fraction float64, color string, fx Effects) {
	span := 360.0 / float64(n)
	gap := math.Min(p.Style.SegmentGapDeg, span*0.8)
	sweep := span - gap

	for i := 0; i < n; i++ {
		lit := fraction*float64(n) >= float64(i)+0.5
		highlighted := i == fx.Segment
		if !lit && !highlighted {
			continue
		}
		c := color
		if highlighted {
			c = p.Style.HighlightColor
		}
		start := StartAngle + p.direction()*(float64(i)*span+gap/2)
		s.DrawArc(bounds, start, p.direction()*sweep, p.paint(c, fx.Opacity))
	}
}

func (p Painter) segments(fx Effects) int {
	if p.Style.SegmentCount > 1 {
		return p.Style.SegmentCount
	}
	if fx.Segment >= 0 {
		return DefaultSegments
	}
	return 0
}

// DrawError draws the full ring in the error color.
func (p Painter) DrawError(s Surface, cutout Cutout) {
	bounds := cutout.RingBounds(p.Style.Gap, p.Style.StrokeWidth)
	paint := p.paint(p.Style.ErrorColor, 1)
	if cutout.Shape == ShapePill {
		s.DrawPath(PillPath(bounds, p.Style.Clockwise).Partial(1), paint)
		return
	}
	s.DrawArc(bounds, StartAngle, 360, paint)
}

func (p Painter) direction() float64 {
	if p.Style.Clockwise {
		return 1
	}
	return -1
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
