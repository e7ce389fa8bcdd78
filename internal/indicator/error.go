package indicator

import (
	"time"

	"github.com/surge-downloader/halo/internal/animator"
	"github.com/surge-downloader/halo/internal/engine/loop"
)

// Error flash timing. The phase count is even so the ring ends hidden.
const (
	ErrorFlashPhases = 6
	ErrorFlashPhase  = 150 * time.Millisecond
)

// errorFlash alternates the error ring between visible and hidden.
type errorFlash struct {
	clock loop.Clock
	inv   animator.Invalidator

	phase  int // -1 when inactive
	timer  loop.Timer
	onDone func()
}

func newErrorFlash(clock loop.Clock, inv animator.Invalidator) *errorFlash {
	return &errorFlash{clock: clock, inv: inv, phase: -1}
}

func (f *errorFlash) Active() bool { return f.phase >= 0 }

// Visible reports whether the current phase shows the ring.
func (f *errorFlash) Visible() bool { return f.phase >= 0 && f.phase%2 == 0 }

func (f *errorFlash) Start(onDone func()) {
	f.Cancel()
	f.phase = 0
	f.onDone = onDone
	f.inv.Invalidate()
	f.timer = f.clock.After(ErrorFlashPhase, f.step)
}

// Cancel stops the flash without running its completion.
func (f *errorFlash) Cancel() {
	if f.phase < 0 {
		return
	}
	loop.Cancel(f.timer)
	f.timer = nil
	f.phase = -1
	f.onDone = nil
	f.inv.Invalidate()
}

func (f *errorFlash) step() {
	f.timer = nil
	f.phase++
	if f.phase >= ErrorFlashPhases {
		f.phase = -1
		done := f.onDone
		f.onDone = nil
		f.inv.Invalidate()
		if done != nil {
			done()
		}
		return
	}
	f.inv.Invalidate()
	f.timer = f.clock.After(ErrorFlashPhase, f.step)
}
