package animator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surge-downloader/halo/internal/engine/loop"
	"github.com/surge-downloader/halo/internal/ring"
)

type countingInvalidator struct{ n int }

func (c *countingInvalidator) Invalidate() { c.n++ }

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestAnimator() (*FinishAnimator, *loop.Manual, *countingInvalidator) {
	clock := loop.NewManual(epoch)
	inv := &countingInvalidator{}
	return NewFinishAnimator(clock, inv), clock, inv
}

func TestParseStyle(t *testing.T) {
	assert.Equal(t, StyleGlow, ParseStyle(" Glow "))
	assert.Equal(t, StyleSnap, ParseStyle("snap"))
	assert.Equal(t, StylePop, ParseStyle("wobble"))
}

func TestTiming_BudgetClamped(t *testing.T) {
	assert.Equal(t, 600*time.Millisecond, Timing{Hold: 200 * time.Millisecond, Exit: 400 * time.Millisecond}.Budget())
	assert.Equal(t, MaxBudget, Timing{Hold: time.Second, Exit: time.Second}.Budget())
	assert.Equal(t, time.Duration(0), Timing{Hold: -time.Second}.Budget())
}

func TestFinish_SnapCompletesOnNextTick(t *testing.T) {
	a, clock, _ := newTestAnimator()
	done := 0

	a.Start(StyleSnap, Timing{Hold: time.Second, Exit: time.Second}, func() { done++ })
	assert.Equal(t, 0, done, "snap never completes synchronously")
	assert.True(t, a.Running())
	assert.Equal(t, PhaseSnap, a.Phase())

	clock.Advance(FrameInterval)
	assert.Equal(t, 1, done)
	assert.False(t, a.Running())
	assert.True(t, a.Effects().IsRest())
}

func TestFinish_RunsForBudget(t *testing.T) {
	for _, style := range []Style{StylePop, StyleSegmented, StyleFade, StyleGlow, StyleShrink} {
		t.Run(string(style), func(t *testing.T) {
			a, clock, _ := newTestAnimator()
			done := 0
			a.Start(style, Timing{Hold: 400 * time.Millisecond, Exit: 400 * time.Millisecond, Segments: 8}, func() { done++ })

			assert.Equal(t, PhaseHold, a.Phase())
			clock.Advance(790 * time.Millisecond)
			assert.Equal(t, 0, done)
			assert.True(t, a.Running())

			clock.Advance(20 * time.Millisecond)
			assert.Equal(t, 1, done)
			assert.True(t, a.Effects().IsRest(), "outputs return to rest after completion")

			clock.Advance(time.Second)
			assert.Equal(t, 1, done, "callback fires exactly once")
		})
	}
}

func TestFinish_BudgetCappedAt800ms(t *testing.T) {
	a, clock, _ := newTestAnimator()
	done := false
	a.Start(StyleFade, Timing{Hold: 2 * time.Second, Exit: 2 * time.Second}, func() { done = true })

	clock.Advance(MaxBudget + FrameInterval)
	assert.True(t, done)
}

func TestFinish_PulsePrecedesSequence(t *testing.T) {
	a, clock, _ := newTestAnimator()
	done := false
	a.Start(StylePop, Timing{Hold: 200 * time.Millisecond, Exit: 200 * time.Millisecond, Pulse: true}, func() { done = true })

	assert.Equal(t, PhasePulse, a.Phase())
	clock.Advance(150 * time.Millisecond)
	assert.Equal(t, PhasePulse, a.Phase())
	assert.Less(t, a.Effects().Opacity, 1.0)

	clock.Advance(200 * time.Millisecond)
	assert.NotEqual(t, PhasePulse, a.Phase())

	// 300ms pulse + 400ms budget
	clock.Advance(340 * time.Millisecond)
	assert.False(t, done)
	clock.Advance(30 * time.Millisecond)
	assert.True(t, done)
}

func TestFinish_PopScalesUp(t *testing.T) {
	a, clock, _ := newTestAnimator()
	a.Start(StylePop, Timing{Hold: 400 * time.Millisecond, Exit: 400 * time.Millisecond}, nil)

	clock.Advance(300 * time.Millisecond)
	assert.Greater(t, a.Effects().Scale, 1.0)
	assert.Equal(t, 1.0, a.Effects().Opacity)

	clock.Advance(400 * time.Millisecond)
	assert.Equal(t, PhaseExit, a.Phase())
	assert.Less(t, a.Effects().Opacity, 1.0)
}

func TestFinish_SegmentedCascades(t *testing.T) {
	a, clock, _ := newTestAnimator()
	a.Start(StyleSegmented, Timing{Hold: 400 * time.Millisecond, Exit: 400 * time.Millisecond, Segments: 4}, nil)

	seen := map[int]bool{}
	for i := 0; i < 30; i++ {
		clock.Advance(FrameInterval)
		if a.Phase() == PhaseHold {
			seen[a.Effects().Segment] = true
		}
	}
	for i := 0; i < 4; i++ {
		assert.True(t, seen[i], "segment %d highlighted", i)
	}
}

func TestFinish_CancelResetsWithoutCallback(t *testing.T) {
	a, clock, inv := newTestAnimator()
	called := false
	a.Start(StyleGlow, Timing{Hold: 400 * time.Millisecond, Exit: 400 * time.Millisecond}, func() { called = true })

	clock.Advance(200 * time.Millisecond)
	require.False(t, a.Effects().IsRest())

	before := inv.n
	assert.True(t, a.Cancel())
	assert.Greater(t, inv.n, before)
	assert.Equal(t, ring.Rest(), a.Effects())
	assert.False(t, a.Running())

	clock.Advance(2 * time.Second)
	assert.False(t, called)
	assert.False(t, a.Cancel(), "second cancel is a no-op")
}

func TestFinish_RestartDropsPreviousCallback(t *testing.T) {
	a, clock, _ := newTestAnimator()
	first, second := 0, 0
	timing := Timing{Hold: 100 * time.Millisecond, Exit: 100 * time.Millisecond}

	a.Start(StyleFade, timing, func() { first++ })
	clock.Advance(50 * time.Millisecond)
	a.Start(StyleFade, timing, func() { second++ })
	clock.Advance(time.Second)

	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}

func TestFinish_PanickingCallbackIsContained(t *testing.T) {
	a, clock, _ := newTestAnimator()
	a.Start(StyleSnap, Timing{}, func() { panic("boom") })
	assert.NotPanics(t, func() { clock.Advance(FrameInterval) })
	assert.False(t, a.Running())
}

func TestEasingEndpoints(t *testing.T) {
	for _, name := range EasingNames() {
		ease := ParseEasing(name)
		assert.InDelta(t, 0, ease(0), 1e-9, name)
		assert.InDelta(t, 1, ease(1), 1e-9, name)
	}
}

func TestOvershootExceedsTarget(t *testing.T) {
	peak := 0.0
	for i := 0; i <= 100; i++ {
		if v := Overshoot(float64(i) / 100); v > peak {
			peak = v
		}
	}
	assert.Greater(t, peak, 1.0)
}
