// Package indicator holds the authoritative visual state of the overlay. It
// combines live aggregate progress, the minimum-visibility window, completion
// effects, error flashes and previews into a single draw decision.
//
// A Coordinator is owned by the overlay loop thread. Only Frame values leave
// it.
package indicator

import (
	"time"

	"github.com/surge-downloader/halo/internal/animator"
	"github.com/surge-downloader/halo/internal/engine/events"
	"github.com/surge-downloader/halo/internal/engine/loop"
	"github.com/surge-downloader/halo/internal/engine/types"
	"github.com/surge-downloader/halo/internal/ring"
	"github.com/surge-downloader/halo/internal/utils"
)

// Config is the coordinator's view of the user settings.
type Config struct {
	Enabled            bool
	PowerSaving        bool // Disable animations entirely
	MinVisibility      time.Duration
	FinishStyle        animator.Style
	FinishTiming       animator.Timing
	ProgressEasing     animator.Easing
	ProgressAnim       time.Duration
	ErrorFlashOnCancel bool
	Ring               ring.Style
	Preview            animator.PreviewConfig
}

// DefaultConfig mirrors config.DefaultSettings.
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		MinVisibility:  500 * time.Millisecond,
		FinishStyle:    animator.StylePop,
		FinishTiming:   animator.Timing{Hold: 400 * time.Millisecond, Exit: 400 * time.Millisecond, Segments: 12},
		ProgressEasing: animator.AccelerateDecelerate,
		ProgressAnim:   200 * time.Millisecond,
		Ring: ring.Style{
			ProgressColor:  "#00ff88",
			TrackColor:     "#333333",
			FinishColor:    "#00c8ff",
			ErrorColor:     "#ff3355",
			HighlightColor: "#ffffff",
			StrokeWidth:    1,
			Gap:            1,
			Opacity:        1,
			Clockwise:      true,
		},
		Preview: animator.DefaultPreviewConfig(),
	}
}

// Coordinator is the top-level indicator state holder.
type Coordinator struct {
	clock   loop.Clock
	surface ring.Surface
	cfg     Config

	cutout ring.Cutout

	progress      int
	startTime     time.Time
	hasStart      bool
	pendingFinish loop.Timer

	arcFrom  float64
	arcTo    float64
	arcStart time.Time
	arcTimer loop.Timer

	finish  *animator.FinishAnimator
	preview *animator.PreviewController
	flash   *errorFlash

	activeCount int
	filename    string
}

// New creates a detached coordinator. Nothing is drawn until Attach.
func New(clock loop.Clock, cfg Config) *Coordinator {
	c := &Coordinator{clock: clock, cfg: cfg}
	c.finish = animator.NewFinishAnimator(clock, c)
	c.preview = animator.NewPreviewController(clock, c, cfg.Preview)
	c.flash = newErrorFlash(clock, c)
	return c
}

// Attach binds the rendering surface and requests a first draw.
func (c *Coordinator) Attach(s ring.Surface) {
	c.surface = s
	c.Invalidate()
}

// Detach cancels every pending timer and sequence and drops the surface.
func (c *Coordinator) Detach() {
	loop.Cancel(c.pendingFinish)
	c.pendingFinish = nil
	loop.Cancel(c.arcTimer)
	c.arcTimer = nil
	c.finish.Cancel()
	c.preview.Cancel()
	c.flash.Cancel()
	c.progress = 0
	c.hasStart = false
	c.arcFrom, c.arcTo = 0, 0
	if c.surface != nil {
		c.surface.Clear()
	}
	c.surface = nil
}

// Invalidate asks the attached surface for a redraw.
func (c *Coordinator) Invalidate() {
	if c.surface != nil {
		c.surface.Invalidate()
	}
}

// ApplySettings swaps the configuration. A running finish keeps the style it
// started with.
func (c *Coordinator) ApplySettings(cfg Config) {
	c.cfg = cfg
	c.preview.SetConfig(cfg.Preview)
	c.Invalidate()
}

// SetGeometry applies the cutout geometry. An invalid cutout suppresses all
// drawing until a valid one arrives.
func (c *Coordinator) SetGeometry(cutout ring.Cutout) {
	if !cutout.Valid() {
		utils.Debug("indicator: ignoring invalid cutout %+v", cutout.Bounds)
	}
	c.cutout = cutout
	c.Invalidate()
}

// State returns the progress state machine position.
func (c *Coordinator) State() State {
	switch {
	case c.finish.Running():
		return StateFinishing
	case c.pendingFinish != nil:
		return StatePendingFinish
	case c.progress > 0:
		return StateActive
	default:
		return StateIdle
	}
}

// Progress returns the real displayed progress.
func (c *Coordinator) Progress() int { return c.progress }

// SetProgress feeds a new aggregate value into the state machine.
func (c *Coordinator) SetProgress(p int) {
	p = types.ClampPercent(p)
	if c.flash.Active() {
		// Error preempts the ring; its end forces progress back to 0
		return
	}

	switch {
	case p == 0:
		if c.finish.Running() {
			return
		}
		loop.Cancel(c.pendingFinish)
		c.pendingFinish = nil
		c.hasStart = false
		c.progress = 0
		c.setArc(0, false)

	case p < 100:
		if c.finish.Cancel() {
			utils.Debug("indicator: finish interrupted by progress %d", p)
		}
		loop.Cancel(c.pendingFinish)
		c.pendingFinish = nil
		if !c.hasStart {
			c.startTime = c.clock.Now()
			c.hasStart = true
		}
		c.progress = p
		c.setArc(float64(p), true)

	default:
		if c.finish.Running() || c.pendingFinish != nil {
			return
		}
		now := c.clock.Now()
		if !c.hasStart {
			c.startTime = now
			c.hasStart = true
		}
		c.progress = 100
		c.setArc(100, true)

		remaining := c.cfg.MinVisibility - now.Sub(c.startTime)
		if remaining > 0 {
			c.pendingFinish = c.clock.After(remaining, c.beginFinish)
		} else {
			c.beginFinish()
		}
	}
	c.Invalidate()
}

func (c *Coordinator) beginFinish() {
	c.pendingFinish = nil
	c.finish.Start(c.cfg.FinishStyle, c.cfg.FinishTiming, c.finishDone)
}

func (c *Coordinator) finishDone() {
	c.progress = 0
	c.hasStart = false
	c.setArc(0, false)
	c.Invalidate()
}

// TriggerError starts an error flash. It is refused while finishing or while
// a flash is already running.
func (c *Coordinator) TriggerError() bool {
	if c.finish.Running() || c.flash.Active() {
		return false
	}
	loop.Cancel(c.pendingFinish)
	c.pendingFinish = nil
	c.flash.Start(func() {
		c.SetProgress(0)
	})
	return true
}

// TriggerDynamicPreview requests a debounced synthetic download cycle.
func (c *Coordinator) TriggerDynamicPreview() { c.preview.TriggerDynamic() }

// TriggerGeometryPreview shows the ring at rest immediately.
func (c *Coordinator) TriggerGeometryPreview() { c.preview.TriggerGeometry() }

// CancelGeometryPreview hides a geometry preview.
func (c *Coordinator) CancelGeometryPreview() { c.preview.CancelGeometry() }

// EffectiveProgress is the real progress with preview overrides applied.
func (c *Coordinator) EffectiveProgress() int {
	switch c.preview.Mode() {
	case animator.PreviewGeometry:
		return 100
	case animator.PreviewDynamic:
		return c.preview.Value()
	default:
		return c.progress
	}
}

// ShouldDraw is the rendering decision evaluated on every draw.
func (c *Coordinator) ShouldDraw() bool {
	if !c.cfg.Enabled || !c.cutout.Valid() || c.cfg.PowerSaving {
		return false
	}
	if c.flash.Active() {
		return true
	}
	if c.finish.Running() || c.pendingFinish != nil {
		return true
	}
	if c.preview.Mode() != animator.PreviewNone {
		return true
	}
	p := c.EffectiveProgress()
	return p >= 1 && p <= 99
}

// Draw renders the current decision onto s.
func (c *Coordinator) Draw(s ring.Surface) {
	s.Clear()
	if !c.ShouldDraw() {
		return
	}
	painter := ring.Painter{Style: c.cfg.Ring}

	if c.flash.Active() {
		if c.flash.Visible() {
			painter.DrawError(s, c.cutout)
		}
		return
	}

	value, fx := c.drawValue()
	painter.DrawProgress(s, c.cutout, value, fx)
}

func (c *Coordinator) drawValue() (float64, ring.Effects) {
	switch c.preview.Mode() {
	case animator.PreviewGeometry:
		return 100, ring.Rest()
	case animator.PreviewDynamic:
		return float64(c.preview.Value()), c.preview.Effects()
	}
	if c.finish.Running() {
		return 100, c.finish.Effects()
	}
	return c.arcValue(), ring.Rest()
}

// Frame snapshots the current state.
func (c *Coordinator) Frame() Frame {
	value, fx := c.drawValue()
	phase := c.finish.Phase()
	if c.preview.Mode() == animator.PreviewDynamic {
		phase = c.preview.Phase()
	}
	return Frame{
		Visible:     c.ShouldDraw(),
		State:       c.State(),
		Progress:    c.EffectiveProgress(),
		Arc:         value,
		Preview:     c.preview.Mode(),
		Phase:       phase,
		Effects:     fx,
		Error:       c.flash.Active(),
		ErrorShown:  c.flash.Visible(),
		Filename:    c.filename,
		ActiveCount: c.activeCount,
	}
}

// setArc moves the displayed arc toward target, eased over ProgressAnim.
func (c *Coordinator) setArc(target float64, animate bool) {
	current := c.arcValue()
	loop.Cancel(c.arcTimer)
	c.arcTimer = nil
	c.arcTo = target

	if !animate || c.cfg.ProgressAnim <= 0 || c.cfg.PowerSaving || current == target {
		c.arcFrom = target
		return
	}
	c.arcFrom = current
	c.arcStart = c.clock.Now()
	c.arcTimer = c.clock.After(animator.FrameInterval, c.arcTick)
}

func (c *Coordinator) arcTick() {
	c.arcTimer = nil
	c.Invalidate()
	if c.clock.Now().Sub(c.arcStart) >= c.cfg.ProgressAnim {
		c.arcFrom = c.arcTo
		return
	}
	c.arcTimer = c.clock.After(animator.FrameInterval, c.arcTick)
}

func (c *Coordinator) arcValue() float64 {
	if c.arcFrom == c.arcTo || c.cfg.ProgressAnim <= 0 {
		return c.arcTo
	}
	t := float64(c.clock.Now().Sub(c.arcStart)) / float64(c.cfg.ProgressAnim)
	if t >= 1 {
		return c.arcTo
	}
	ease := c.cfg.ProgressEasing
	if ease == nil {
		ease = animator.Linear
	}
	return c.arcFrom + (c.arcTo-c.arcFrom)*ease(t)
}

// ProgressChanged implements aggregator.Listener.
func (c *Coordinator) ProgressChanged(msg events.ProgressChangedMsg) {
	c.SetProgress(msg.Progress)
}

func (c *Coordinator) ActiveCountChanged(msg events.ActiveCountChangedMsg) {
	c.activeCount = msg.Count
	c.Invalidate()
}

func (c *Coordinator) FilenameChanged(msg events.FilenameChangedMsg) {
	c.filename = msg.Filename
	c.Invalidate()
}

func (c *Coordinator) DownloadComplete(msg events.DownloadCompleteMsg) {
	utils.Debug("indicator: %s complete (%s)", msg.Identity, msg.Filename)
}

func (c *Coordinator) DownloadCancelled(msg events.DownloadCancelledMsg) {
	utils.Debug("indicator: %s cancelled at %d%%", msg.Identity, msg.Progress)
	if c.cfg.ErrorFlashOnCancel {
		c.TriggerError()
	}
}
