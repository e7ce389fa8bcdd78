package animator

import (
	"math"
	"strings"

	"github.com/charmbracelet/harmonica"
)

// Easing maps linear time t in [0, 1] to animation progress. Results may
// leave [0, 1] (overshoot) but Easing(0) == 0 and Easing(1) == 1.
type Easing func(t float64) float64

// Easing names accepted in settings.
const (
	EaseLinear               = "linear"
	EaseAccelerate           = "accelerate"
	EaseDecelerate           = "decelerate"
	EaseAccelerateDecelerate = "accelerate_decelerate"
	EaseOvershoot            = "overshoot"
)

// EasingNames lists the accepted easing names in display order.
func EasingNames() []string {
	return []string{EaseLinear, EaseAccelerate, EaseDecelerate, EaseAccelerateDecelerate, EaseOvershoot}
}

// ParseEasing resolves a settings name; unknown names fall back to
// accelerate_decelerate.
func ParseEasing(name string) Easing {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case EaseLinear:
		return Linear
	case EaseAccelerate:
		return Accelerate
	case EaseDecelerate:
		return Decelerate
	case EaseOvershoot:
		return Overshoot
	default:
		return AccelerateDecelerate
	}
}

// Linear returns t clamped to [0, 1].
func Linear(t float64) float64 { return clampT(t) }

// Accelerate starts slow and speeds up (quadratic ease-in).
func Accelerate(t float64) float64 {
	t = clampT(t)
	return t * t
}

// Decelerate starts fast and slows down (quadratic ease-out).
func Decelerate(t float64) float64 {
	t = clampT(t)
	return 1 - (1-t)*(1-t)
}

// AccelerateDecelerate eases in and out along a half cosine.
func AccelerateDecelerate(t float64) float64 {
	t = clampT(t)
	return math.Cos((t+1)*math.Pi)/2 + 0.5
}

// Overshoot follows an under-damped spring toward 1, peaking above it before
// settling.
func Overshoot(t float64) float64 {
	t = clampT(t)
	if t == 0 || t == 1 {
		return t
	}
	pos := t * float64(len(overshootCurve)-1)
	i := int(pos)
	frac := pos - float64(i)
	return overshootCurve[i] + (overshootCurve[i+1]-overshootCurve[i])*frac
}

const (
	springSamples   = 120
	springFrequency = 8.0
	springDamping   = 0.45
)

var overshootCurve = springCurve(springSamples, springFrequency, springDamping)

// springCurve samples one second of a harmonica spring moving from 0 to 1.
// The residual error at the end is spread linearly so the curve lands on 1.
func springCurve(samples int, frequency, damping float64) []float64 {
	spring := harmonica.NewSpring(harmonica.FPS(samples), frequency, damping)
	curve := make([]float64, samples+1)
	pos, vel := 0.0, 0.0
	for i := 1; i <= samples; i++ {
		pos, vel = spring.Update(pos, vel, 1)
		curve[i] = pos
	}
	residual := 1 - curve[samples]
	for i := range curve {
		curve[i] += residual * float64(i) / float64(samples)
	}
	return curve
}

func clampT(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
