package loop

import (
	"sort"
	"time"
)

// Manual is a deterministic Scheduler for tests. Time only moves when Advance
// is called, and due callbacks run on the caller goroutine in due order.
type Manual struct {
	now     time.Time
	seq     uint64
	pending []*manualTimer
}

type manualTimer struct {
	due   time.Time
	seq   uint64
	fn    func()
	state int32
}

func (t *manualTimer) Cancel() bool {
	if t.state != timerPending {
		return false
	}
	t.state = timerCancelled
	return true
}

// NewManual returns a Manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	return m.now
}

func (m *Manual) After(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{due: m.now.Add(d), seq: m.seq, fn: fn}
	m.pending = append(m.pending, t)
	return t
}

func (m *Manual) Post(fn func()) bool {
	m.After(0, fn)
	return true
}

// Advance moves time forward by d, running every callback that becomes due,
// including callbacks scheduled by other callbacks within the window.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}
		if next.due.After(m.now) {
			m.now = next.due
		}
		next.state = timerFired
		next.fn()
	}
	m.now = target
}

// Flush runs everything due at the current instant.
func (m *Manual) Flush() {
	m.Advance(0)
}

// Pending reports how many callbacks are still scheduled.
func (m *Manual) Pending() int {
	m.compact()
	return len(m.pending)
}

func (m *Manual) nextDue(target time.Time) *manualTimer {
	m.compact()
	if len(m.pending) == 0 {
		return nil
	}
	sort.Slice(m.pending, func(i, j int) bool {
		if !m.pending[i].due.Equal(m.pending[j].due) {
			return m.pending[i].due.Before(m.pending[j].due)
		}
		return m.pending[i].seq < m.pending[j].seq
	})
	head := m.pending[0]
	if head.due.After(target) {
		return nil
	}
	m.pending = m.pending[1:]
	return head
}

func (m *Manual) compact() {
	live := m.pending[:0]
	for _, t := range m.pending {
		if t.state == timerPending {
			live = append(live, t)
		}
	}
	m.pending = live
}
