package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surge-downloader/halo/internal/animator"
	"github.com/surge-downloader/halo/internal/engine/events"
	"github.com/surge-downloader/halo/internal/engine/loop"
	"github.com/surge-downloader/halo/internal/engine/types"
	"github.com/surge-downloader/halo/internal/ring"
)

type arcCall struct {
	start, sweep float64
	paint        ring.Paint
}

type recordingSurface struct {
	arcs        []arcCall
	paths       int
	cleared     int
	invalidated int
}

func (s *recordingSurface) Clear() {
	s.cleared++
	s.arcs = nil
	s.paths = 0
}
func (s *recordingSurface) DrawArc(_ ring.Rect, start, sweep float64, p ring.Paint) {
	s.arcs = append(s.arcs, arcCall{start, sweep, p})
}
func (s *recordingSurface) DrawPath(ring.Path, ring.Paint) { s.paths++ }
func (s *recordingSurface) Invalidate()                    { s.invalidated++ }

var (
	epoch  = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cutout = ring.Cutout{Bounds: ring.Rect{Left: 10, Top: 10, Right: 20, Bottom: 20}, Shape: ring.ShapeCircle}
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ProgressAnim = 0
	cfg.MinVisibility = 500 * time.Millisecond
	return cfg
}

func newTestCoordinator(cfg Config) (*Coordinator, *loop.Manual, *recordingSurface) {
	clock := loop.NewManual(epoch)
	c := New(clock, cfg)
	s := &recordingSurface{}
	c.Attach(s)
	c.SetGeometry(cutout)
	return c, clock, s
}

func TestCoordinator_IdleToActive(t *testing.T) {
	c, _, _ := newTestCoordinator(testConfig())

	assert.Equal(t, StateIdle, c.State())
	assert.False(t, c.ShouldDraw())

	c.SetProgress(30)
	assert.Equal(t, StateActive, c.State())
	assert.True(t, c.ShouldDraw())
}

func TestCoordinator_MinVisibilityDefersFinish(t *testing.T) {
	c, clock, _ := newTestCoordinator(testConfig())

	c.SetProgress(10)
	clock.Advance(200 * time.Millisecond)
	c.SetProgress(100)

	assert.Equal(t, StatePendingFinish, c.State())
	assert.True(t, c.ShouldDraw(), "pending finish keeps the ring visible")

	clock.Advance(299 * time.Millisecond)
	assert.Equal(t, StatePendingFinish, c.State())
	clock.Advance(time.Millisecond)
	assert.Equal(t, StateFinishing, c.State())
}

func TestCoordinator_FinishImmediateAfterWindow(t *testing.T) {
	c, clock, _ := newTestCoordinator(testConfig())

	c.SetProgress(10)
	clock.Advance(500 * time.Millisecond)
	c.SetProgress(100)
	assert.Equal(t, StateFinishing, c.State())
}

func TestCoordinator_DirectCompletionStillVisible(t *testing.T) {
	c, clock, _ := newTestCoordinator(testConfig())

	c.SetProgress(100)
	assert.Equal(t, StatePendingFinish, c.State())
	clock.Advance(500 * time.Millisecond)
	assert.Equal(t, StateFinishing, c.State())
}

func TestCoordinator_ProgressCancelsFinish(t *testing.T) {
	c, clock, _ := newTestCoordinator(testConfig())

	c.SetProgress(10)
	clock.Advance(time.Second)
	c.SetProgress(100)
	clock.Advance(100 * time.Millisecond)
	require.Equal(t, StateFinishing, c.State())
	require.False(t, c.Frame().Effects.IsRest())

	c.SetProgress(40)
	assert.Equal(t, StateActive, c.State())
	assert.True(t, c.Frame().Effects.IsRest(), "outputs back at rest before the arc is drawn")
	assert.Equal(t, 40, c.Progress())

	clock.Advance(2 * time.Second)
	assert.Equal(t, StateActive, c.State(), "cancelled finish never lands")
}

func TestCoordinator_ProgressCancelsPendingFinish(t *testing.T) {
	c, clock, _ := newTestCoordinator(testConfig())

	c.SetProgress(100)
	c.SetProgress(0)
	assert.Equal(t, StateIdle, c.State())

	clock.Advance(time.Second)
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, 0, clock.Pending())
}

func TestCoordinator_ZeroDoesNotInterruptFinish(t *testing.T) {
	c, clock, _ := newTestCoordinator(testConfig())

	c.SetProgress(100)
	clock.Advance(500 * time.Millisecond)
	require.Equal(t, StateFinishing, c.State())

	c.SetProgress(0)
	assert.Equal(t, StateFinishing, c.State())
}

func TestCoordinator_SnapVersusSequencedStyles(t *testing.T) {
	reachIdle := func(style animator.Style) time.Duration {
		cfg := testConfig()
		cfg.MinVisibility = 0
		cfg.FinishStyle = style
		c, clock, _ := newTestCoordinator(cfg)

		c.SetProgress(100)
		var elapsed time.Duration
		for c.State() != StateIdle && elapsed < 5*time.Second {
			clock.Advance(animator.FrameInterval)
			elapsed += animator.FrameInterval
		}
		return elapsed
	}

	assert.Equal(t, animator.FrameInterval, reachIdle(animator.StyleSnap))
	pop := reachIdle(animator.StylePop)
	assert.GreaterOrEqual(t, pop, 800*time.Millisecond)
	assert.Less(t, pop, time.Second)
}

func TestCoordinator_ErrorFlash(t *testing.T) {
	c, clock, s := newTestCoordinator(testConfig())

	c.SetProgress(50)
	require.True(t, c.TriggerError())
	assert.False(t, c.TriggerError(), "already flashing")

	c.Draw(s)
	require.Len(t, s.arcs, 1)
	assert.Equal(t, c.cfg.Ring.ErrorColor, s.arcs[0].paint.Color)

	clock.Advance(ErrorFlashPhase)
	c.Draw(s)
	assert.Empty(t, s.arcs, "hidden phase")
	assert.True(t, c.ShouldDraw())

	c.SetProgress(70)
	assert.Equal(t, 50, c.Progress(), "progress ignored while flashing")

	clock.Advance(ErrorFlashPhases * ErrorFlashPhase)
	assert.False(t, c.Frame().Error)
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, 0, c.Progress())
}

func TestCoordinator_ErrorRefusedWhileFinishing(t *testing.T) {
	c, clock, _ := newTestCoordinator(testConfig())

	c.SetProgress(100)
	clock.Advance(500 * time.Millisecond)
	require.Equal(t, StateFinishing, c.State())
	assert.False(t, c.TriggerError())
}

func TestCoordinator_CancelledDownloadFlashes(t *testing.T) {
	cfg := testConfig()
	cfg.ErrorFlashOnCancel = true
	c, _, _ := newTestCoordinator(cfg)

	c.ProgressChanged(events.ProgressChangedMsg{Progress: 30})
	c.DownloadCancelled(events.DownloadCancelledMsg{Identity: types.Identity{Package: "org.mozilla.firefox", ID: 1}, Progress: 30})
	assert.True(t, c.Frame().Error)
}

func TestCoordinator_ShouldDrawRules(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.Enabled = false
		c, _, _ := newTestCoordinator(cfg)
		c.SetProgress(50)
		assert.False(t, c.ShouldDraw())
	})

	t.Run("no geometry", func(t *testing.T) {
		c, _, _ := newTestCoordinator(testConfig())
		c.SetGeometry(ring.Cutout{})
		c.SetProgress(50)
		assert.False(t, c.ShouldDraw())
	})

	t.Run("power saving", func(t *testing.T) {
		cfg := testConfig()
		cfg.PowerSaving = true
		c, _, _ := newTestCoordinator(cfg)
		c.TriggerGeometryPreview()
		assert.False(t, c.ShouldDraw())
	})

	t.Run("geometry preview overrides progress", func(t *testing.T) {
		c, _, _ := newTestCoordinator(testConfig())
		c.TriggerGeometryPreview()
		assert.True(t, c.ShouldDraw())
		assert.Equal(t, 100, c.EffectiveProgress())
		assert.Equal(t, 0, c.Progress())
	})

	t.Run("dynamic preview uses ramp value", func(t *testing.T) {
		c, clock, _ := newTestCoordinator(testConfig())
		c.TriggerDynamicPreview()
		assert.False(t, c.ShouldDraw(), "nothing during the debounce window")
		clock.Advance(animator.DefaultPreviewDebounce + 500*time.Millisecond)
		assert.True(t, c.ShouldDraw())
		assert.Equal(t, animator.PreviewDynamic, c.Frame().Preview)
		assert.Greater(t, c.EffectiveProgress(), 0)
	})
}

func TestCoordinator_DrawArc(t *testing.T) {
	c, _, s := newTestCoordinator(testConfig())

	c.SetProgress(50)
	c.Draw(s)

	require.Len(t, s.arcs, 1)
	assert.Equal(t, ring.StartAngle, s.arcs[0].start)
	assert.InDelta(t, 180, s.arcs[0].sweep, 1e-9)
}

func TestCoordinator_ArcEasesTowardTarget(t *testing.T) {
	cfg := testConfig()
	cfg.ProgressAnim = 200 * time.Millisecond
	cfg.ProgressEasing = animator.Linear
	c, clock, s := newTestCoordinator(cfg)

	c.SetProgress(50)
	assert.InDelta(t, 0, c.Frame().Arc, 1e-9)

	before := s.invalidated
	clock.Advance(100 * time.Millisecond)
	assert.InDelta(t, 25, c.Frame().Arc, 1e-6)
	assert.Greater(t, s.invalidated, before, "arc ticks request redraws")

	clock.Advance(200 * time.Millisecond)
	assert.InDelta(t, 50, c.Frame().Arc, 1e-9)
	assert.Equal(t, 0, clock.Pending())
}

func TestCoordinator_FrameCarriesLabels(t *testing.T) {
	c, _, _ := newTestCoordinator(testConfig())

	c.ActiveCountChanged(events.ActiveCountChangedMsg{Count: 2})
	c.FilenameChanged(events.FilenameChangedMsg{Filename: "a.zip"})

	f := c.Frame()
	assert.Equal(t, 2, f.ActiveCount)
	assert.Equal(t, "a.zip", f.Filename)
}

func TestCoordinator_DetachCancelsTimers(t *testing.T) {
	cfg := testConfig()
	cfg.ProgressAnim = 200 * time.Millisecond
	c, clock, s := newTestCoordinator(cfg)

	c.SetProgress(40)
	c.SetProgress(100)
	c.TriggerDynamicPreview()
	require.Greater(t, clock.Pending(), 0)

	c.Detach()
	assert.Equal(t, 0, clock.Pending())
	assert.Equal(t, StateIdle, c.State())

	invalidated := s.invalidated
	clock.Advance(10 * time.Second)
	assert.Equal(t, invalidated, s.invalidated)
}
