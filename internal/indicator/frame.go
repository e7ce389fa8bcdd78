package indicator

import (
	"github.com/surge-downloader/halo/internal/animator"
	"github.com/surge-downloader/halo/internal/ring"
)

// State is the progress state machine position.
type State int

const (
	StateIdle State = iota
	StateActive
	StatePendingFinish
	StateFinishing
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StatePendingFinish:
		return "pending_finish"
	case StateFinishing:
		return "finishing"
	default:
		return "idle"
	}
}

// Frame is an immutable snapshot of what the coordinator would draw. It is
// safe to hand to other goroutines.
type Frame struct {
	Visible     bool
	State       State
	Progress    int     // Effective progress, preview overrides applied
	Arc         float64 // Displayed arc value after easing, 0..100
	Preview     animator.PreviewMode
	Phase       string
	Effects     ring.Effects
	Error       bool
	ErrorShown  bool // Error ring visible in the current flash phase
	Filename    string
	ActiveCount int
}
