// Package animator runs the timed visual sequences layered over the ring:
// completion effects and preview modes. Everything here runs on the overlay
// loop thread and is driven by a loop.Clock.
package animator

import (
	"math"
	"strings"
	"time"

	"github.com/surge-downloader/halo/internal/engine/loop"
	"github.com/surge-downloader/halo/internal/ring"
	"github.com/surge-downloader/halo/internal/utils"
)

const (
	// MaxBudget caps hold+exit so completion feedback stays snappy.
	MaxBudget = 800 * time.Millisecond
	// PulseDuration is the fixed length of the optional completion pulse.
	PulseDuration = 300 * time.Millisecond
	// FrameInterval is the tick rate of every running sequence.
	FrameInterval = 16 * time.Millisecond

	popScale    = 1.25
	pulseDip    = 0.6
	shrinkScale = 0.6
)

// Style names a completion effect.
type Style string

const (
	StyleSnap      Style = "snap"
	StylePop       Style = "pop"
	StyleSegmented Style = "segmented"
	StyleFade      Style = "fade"
	StyleGlow      Style = "glow"
	StyleShrink    Style = "shrink"
)

// StyleNames lists the accepted style names in display order.
func StyleNames() []string {
	return []string{string(StyleSnap), string(StylePop), string(StyleSegmented), string(StyleFade), string(StyleGlow), string(StyleShrink)}
}

// ParseStyle resolves a settings name; unknown names fall back to pop.
func ParseStyle(name string) Style {
	s := Style(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range StyleNames() {
		if string(s) == known {
			return s
		}
	}
	return StylePop
}

// Timing is the user-tunable part of a completion sequence.
type Timing struct {
	Hold     time.Duration
	Exit     time.Duration
	Pulse    bool
	Segments int // Segment count for the segmented cascade
}

// Budget returns hold+exit clamped to [0, MaxBudget].
func (t Timing) Budget() time.Duration {
	b := t.Hold + t.Exit
	if b < 0 {
		return 0
	}
	if b > MaxBudget {
		return MaxBudget
	}
	return b
}

// Phase names reported while a sequence runs.
const (
	PhaseNone  = ""
	PhasePulse = "pulse"
	PhaseHold  = "hold"
	PhaseExit  = "exit"
	PhaseSnap  = "snap"
)

type phase struct {
	name     string
	duration time.Duration
	apply    func(fx *ring.Effects, t float64)
}

// Invalidator is told whenever the animated outputs change.
type Invalidator interface {
	Invalidate()
}

// FinishAnimator plays one completion sequence at a time.
type FinishAnimator struct {
	clock loop.Clock
	inv   Invalidator

	fx         ring.Effects
	running    bool
	phases     []phase
	idx        int
	phaseStart time.Time
	timer      loop.Timer
	onDone     func()
}

// NewFinishAnimator creates an idle animator.
func NewFinishAnimator(clock loop.Clock, inv Invalidator) *FinishAnimator {
	return &FinishAnimator{clock: clock, inv: inv, fx: ring.Rest()}
}

// Effects returns the current interpolated outputs.
func (a *FinishAnimator) Effects() ring.Effects {
	return a.fx
}

// Running reports whether a sequence is in flight.
func (a *FinishAnimator) Running() bool {
	return a.running
}

// Phase returns the name of the active phase, or PhaseNone.
func (a *FinishAnimator) Phase() string {
	if !a.running {
		return PhaseNone
	}
	if a.idx >= len(a.phases) {
		return PhaseSnap
	}
	return a.phases[a.idx].name
}

// Start plays style and calls onDone exactly once when it ends. A sequence
// already running is cancelled first and its callback dropped.
func (a *FinishAnimator) Start(style Style, timing Timing, onDone func()) {
	a.Cancel()

	a.running = true
	a.onDone = onDone
	a.phases = buildPhases(style, timing)
	a.idx = 0
	a.fx = ring.Rest()

	if len(a.phases) == 0 {
		// snap: complete on the next tick, never synchronously
		a.timer = a.clock.After(0, a.finish)
		return
	}

	a.phaseStart = a.clock.Now()
	a.phases[0].apply(&a.fx, 0)
	a.invalidate()
	a.timer = a.clock.After(FrameInterval, a.tick)
}

// Cancel stops the running sequence without invoking its callback and puts
// every output back to rest. It reports whether anything was running.
func (a *FinishAnimator) Cancel() bool {
	if !a.running {
		return false
	}
	loop.Cancel(a.timer)
	a.timer = nil
	a.running = false
	a.onDone = nil
	a.phases = nil
	a.fx = ring.Rest()
	a.invalidate()
	return true
}

func (a *FinishAnimator) tick() {
	a.timer = nil
	now := a.clock.Now()
	elapsed := now.Sub(a.phaseStart)

	for a.idx < len(a.phases) && elapsed >= a.phases[a.idx].duration {
		p := a.phases[a.idx]
		p.apply(&a.fx, 1)
		elapsed -= p.duration
		a.phaseStart = a.phaseStart.Add(p.duration)
		a.idx++
	}

	if a.idx >= len(a.phases) {
		a.finish()
		return
	}

	p := a.phases[a.idx]
	p.apply(&a.fx, float64(elapsed)/float64(p.duration))
	a.invalidate()
	a.timer = a.clock.After(FrameInterval, a.tick)
}

func (a *FinishAnimator) finish() {
	a.timer = nil
	a.running = false
	a.phases = nil
	a.fx = ring.Rest()
	done := a.onDone
	a.onDone = nil
	a.invalidate()
	if done != nil {
		a.callDone(done)
	}
}

func (a *FinishAnimator) callDone(done func()) {
	defer utils.Recover("finish callback")
	done()
}

func (a *FinishAnimator) invalidate() {
	if a.inv != nil {
		a.inv.Invalidate()
	}
}

// buildPhases expands a style into its timed phases. snap has none.
func buildPhases(style Style, timing Timing) []phase {
	if style == StyleSnap {
		return nil
	}

	var phases []phase
	if timing.Pulse {
		phases = append(phases, phase{name: PhasePulse, duration: PulseDuration, apply: applyPulse})
	}

	budget := timing.Budget()
	holdShare := 0.5
	if total := timing.Hold + timing.Exit; total > 0 {
		holdShare = float64(timing.Hold) / float64(total)
	}

	switch style {
	case StylePop:
		phases = append(phases, split(budget, 0.4,
			func(fx *ring.Effects, t float64) {
				fx.Scale = lerp(1, popScale, Overshoot(t))
			},
			func(fx *ring.Effects, t float64) {
				fx.Scale = lerp(popScale, 1, Decelerate(t))
				fx.Opacity = 1 - Decelerate(t)
			})...)

	case StyleSegmented:
		segments := timing.Segments
		if segments < 2 {
			segments = ring.DefaultSegments
		}
		phases = append(phases, split(budget, 0.6,
			func(fx *ring.Effects, t float64) {
				fx.Segment = int(math.Min(float64(segments-1), math.Floor(t*float64(segments))))
			},
			func(fx *ring.Effects, t float64) {
				fx.Segment = -1
				fx.Opacity = 1 - t
			})...)

	case StyleGlow:
		phases = append(phases, split(budget, holdShare,
			func(fx *ring.Effects, t float64) {
				fx.ColorBlend = AccelerateDecelerate(t)
			},
			func(fx *ring.Effects, t float64) {
				fx.ColorBlend = 1
				fx.Opacity = 1 - Accelerate(t)
			})...)

	case StyleShrink:
		phases = append(phases, split(budget, holdShare,
			func(fx *ring.Effects, t float64) {
				fx.ColorBlend = t
			},
			func(fx *ring.Effects, t float64) {
				fx.Scale = lerp(1, shrinkScale, Accelerate(t))
				fx.Opacity = 1 - t
			})...)

	default: // StyleFade
		phases = append(phases, split(budget, holdShare,
			func(fx *ring.Effects, t float64) {},
			func(fx *ring.Effects, t float64) {
				fx.Opacity = 1 - AccelerateDecelerate(t)
			})...)
	}
	return phases
}

// split divides budget into a hold and an exit phase.
func split(budget time.Duration, holdShare float64, hold, exit func(*ring.Effects, float64)) []phase {
	holdDur := time.Duration(float64(budget) * holdShare)
	return []phase{
		{name: PhaseHold, duration: holdDur, apply: hold},
		{name: PhaseExit, duration: budget - holdDur, apply: exit},
	}
}

// applyPulse dips opacity and recovers.
func applyPulse(fx *ring.Effects, t float64) {
	fx.Opacity = 1 - pulseDip*math.Sin(math.Pi*clampT(t))
}
