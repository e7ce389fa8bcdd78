package animator

import (
	"math"
	"time"

	"github.com/surge-downloader/halo/internal/engine/loop"
	"github.com/surge-downloader/halo/internal/ring"
)

// Preview defaults
const (
	DefaultPreviewDebounce  = 300 * time.Millisecond
	DefaultPreviewRamp      = 2 * time.Second
	DefaultGeometryDuration = 3 * time.Second
)

// PreviewMode is which preview, if any, owns the ring.
type PreviewMode int

const (
	PreviewNone PreviewMode = iota
	PreviewDynamic
	PreviewGeometry
)

func (m PreviewMode) String() string {
	switch m {
	case PreviewDynamic:
		return "dynamic"
	case PreviewGeometry:
		return "geometry"
	default:
		return "none"
	}
}

// PreviewConfig tunes the preview modes.
type PreviewConfig struct {
	Debounce           time.Duration
	Ramp               time.Duration
	GeometryDuration   time.Duration
	GeometryPersistent bool
	Style              Style
	Timing             Timing
}

// DefaultPreviewConfig returns the stock preview timings.
func DefaultPreviewConfig() PreviewConfig {
	return PreviewConfig{
		Debounce:         DefaultPreviewDebounce,
		Ramp:             DefaultPreviewRamp,
		GeometryDuration: DefaultGeometryDuration,
		Style:            StylePop,
		Timing:           Timing{Hold: 400 * time.Millisecond, Exit: 400 * time.Millisecond},
	}
}

// PreviewController simulates a full download cycle or shows the ring at
// rest, independently of real download state.
type PreviewController struct {
	clock  loop.Clock
	inv    Invalidator
	config PreviewConfig
	finish *FinishAnimator

	mode      PreviewMode
	value     int
	rampStart time.Time

	debounce     loop.Timer
	rampTimer    loop.Timer
	geometryHide loop.Timer
}

// NewPreviewController creates an idle controller.
func NewPreviewController(clock loop.Clock, inv Invalidator, config PreviewConfig) *PreviewController {
	return &PreviewController{
		clock:  clock,
		inv:    inv,
		config: config,
		finish: NewFinishAnimator(clock, inv),
	}
}

// SetConfig applies new timings to future previews.
func (p *PreviewController) SetConfig(config PreviewConfig) {
	p.config = config
	// Persistence switched off while showing: start the auto-hide now
	if p.mode == PreviewGeometry && !config.GeometryPersistent && p.geometryHide == nil {
		p.scheduleGeometryHide()
	}
}

// Mode returns the active preview mode.
func (p *PreviewController) Mode() PreviewMode { return p.mode }

// Value is the synthetic progress during a dynamic preview.
func (p *PreviewController) Value() int { return p.value }

// Effects are the completion outputs of the dynamic preview.
func (p *PreviewController) Effects() ring.Effects { return p.finish.Effects() }

// Finishing reports whether the dynamic preview is playing its completion.
func (p *PreviewController) Finishing() bool { return p.finish.Running() }

// Phase is the completion phase of the dynamic preview.
func (p *PreviewController) Phase() string { return p.finish.Phase() }

// DebouncePending reports whether a dynamic preview is waiting to start.
func (p *PreviewController) DebouncePending() bool { return p.debounce != nil }

// TriggerDynamic (re)starts the debounce window. When it elapses a single
// synthetic ramp runs, followed by the configured finish sequence.
func (p *PreviewController) TriggerDynamic() {
	loop.Cancel(p.debounce)
	p.stopDynamic()
	p.debounce = p.clock.After(p.config.Debounce, p.startRamp)
}

// TriggerGeometry shows the ring at rest immediately.
func (p *PreviewController) TriggerGeometry() {
	loop.Cancel(p.debounce)
	p.debounce = nil
	p.stopDynamic()

	p.mode = PreviewGeometry
	p.value = 100
	loop.Cancel(p.geometryHide)
	p.geometryHide = nil
	if !p.config.GeometryPersistent {
		p.scheduleGeometryHide()
	}
	p.invalidate()
}

// CancelGeometry hides a geometry preview.
func (p *PreviewController) CancelGeometry() {
	if p.mode != PreviewGeometry {
		return
	}
	loop.Cancel(p.geometryHide)
	p.geometryHide = nil
	p.mode = PreviewNone
	p.value = 0
	p.invalidate()
}

// Cancel stops every preview and pending timer.
func (p *PreviewController) Cancel() {
	loop.Cancel(p.debounce)
	p.debounce = nil
	p.stopDynamic()
	p.CancelGeometry()
}

func (p *PreviewController) scheduleGeometryHide() {
	p.geometryHide = p.clock.After(p.config.GeometryDuration, func() {
		p.geometryHide = nil
		p.CancelGeometry()
	})
}

func (p *PreviewController) startRamp() {
	p.debounce = nil
	if p.mode == PreviewGeometry {
		loop.Cancel(p.geometryHide)
		p.geometryHide = nil
	}
	p.mode = PreviewDynamic
	p.value = 0
	p.rampStart = p.clock.Now()
	p.invalidate()
	p.rampTimer = p.clock.After(FrameInterval, p.rampTick)
}

func (p *PreviewController) rampTick() {
	p.rampTimer = nil
	elapsed := p.clock.Now().Sub(p.rampStart)
	if p.config.Ramp <= 0 || elapsed >= p.config.Ramp {
		p.value = 100
		p.invalidate()
		p.finish.Start(p.config.Style, p.config.Timing, p.endDynamic)
		return
	}
	p.value = int(math.Round(100 * float64(elapsed) / float64(p.config.Ramp)))
	p.invalidate()
	p.rampTimer = p.clock.After(FrameInterval, p.rampTick)
}

func (p *PreviewController) endDynamic() {
	p.mode = PreviewNone
	p.value = 0
	p.invalidate()
}

// stopDynamic aborts a ramp or finish in flight without touching geometry.
func (p *PreviewController) stopDynamic() {
	loop.Cancel(p.rampTimer)
	p.rampTimer = nil
	p.finish.Cancel()
	if p.mode == PreviewDynamic {
		p.mode = PreviewNone
		p.value = 0
		p.invalidate()
	}
}

func (p *PreviewController) invalidate() {
	if p.inv != nil {
		p.inv.Invalidate()
	}
}
