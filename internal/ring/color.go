package ring

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Blend interpolates between two hex colors in Lab space. Unparseable
// inputs fall back to the other color so a bad setting never hides the ring.
func Blend(from, to string, t float64) string {
	a, errA := colorful.Hex(from)
	b, errB := colorful.Hex(to)
	switch {
	case errA != nil && errB != nil:
		return "#ffffff"
	case errA != nil:
		return b.Hex()
	case errB != nil:
		return a.Hex()
	}

	if t <= 0 {
		return a.Hex()
	}
	if t >= 1 {
		return b.Hex()
	}
	return a.BlendLab(b, t).Clamped().Hex()
}

// ValidColor reports whether s parses as a hex color.
func ValidColor(s string) bool {
	_, err := colorful.Hex(s)
	return err == nil
}
