// Package loop provides the single logical thread every piece of overlay
// state is mutated on. Work is queued as callbacks; delayed callbacks are
// cancellable and a cancelled callback never runs, even if its runtime timer
// already fired.
package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/surge-downloader/halo/internal/utils"
)

// Clock schedules delayed callbacks on the owning thread.
type Clock interface {
	Now() time.Time
	// After runs fn on the owning thread once d has elapsed.
	After(d time.Duration, fn func()) Timer
}

// Timer is a pending delayed callback.
type Timer interface {
	// Cancel prevents the callback from running. It reports whether the
	// callback was still pending.
	Cancel() bool
}

// Scheduler is a Clock that also accepts immediate work from any goroutine.
type Scheduler interface {
	Clock
	// Post queues fn to run on the owning thread. It returns false once the
	// scheduler has stopped.
	Post(fn func()) bool
}

const (
	timerPending int32 = iota
	timerFired
	timerCancelled
)

// Cancel is a nil-safe helper so callers can drop a handle unconditionally.
func Cancel(t Timer) {
	if t != nil {
		t.Cancel()
	}
}

// Loop is the real Scheduler: a FIFO of callbacks drained by Run.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped chan struct{}
	once    sync.Once
	running atomic.Bool
}

// New creates a Loop. Nothing runs until Run is called.
func New() *Loop {
	return &Loop{
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

func (l *Loop) Now() time.Time {
	return time.Now()
}

func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stopped:
		return false
	default:
	}

	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

type loopTimer struct {
	state atomic.Int32
	rt    *time.Timer
}

func (t *loopTimer) Cancel() bool {
	if !t.state.CompareAndSwap(timerPending, timerCancelled) {
		return false
	}
	t.rt.Stop()
	return true
}

func (l *Loop) After(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	t := &loopTimer{}
	t.rt = time.AfterFunc(d, func() {
		l.Post(func() {
			// Checked on the loop thread: a Cancel issued after the runtime
			// timer fired still wins.
			if t.state.CompareAndSwap(timerPending, timerFired) {
				fn()
			}
		})
	})
	return t
}

// Run drains the queue on the calling goroutine until ctx is done or Stop is
// called. Panics inside callbacks are recovered and logged.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return nil
	}
	defer l.running.Store(false)

	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, fn := range batch {
			l.invoke(fn)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.stopped:
			return nil
		case <-l.wake:
		}
	}
}

func (l *Loop) invoke(fn func()) {
	defer utils.Recover("loop callback")
	fn()
}

// Stop ends Run and rejects further posts. Pending timers become no-ops.
func (l *Loop) Stop() {
	l.once.Do(func() {
		close(l.stopped)
	})
}

// Sync posts fn and waits for it to finish. It must not be called from the
// loop thread itself.
func (l *Loop) Sync(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return context.Canceled
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
