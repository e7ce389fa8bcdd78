package types

import (
	"fmt"
	"math"
	"time"
)

// Identity names one tracked download: the posting package plus the
// notification id it used. Two notifications from different packages may
// share an id, so both parts are needed.
type Identity struct {
	Package string
	ID      int
}

func (id Identity) String() string {
	return fmt.Sprintf("%s#%d", id.Package, id.ID)
}

// ProgressRecord is the last known state of one download.
type ProgressRecord struct {
	Identity   Identity
	Filename   string // Empty when the source never reported one
	Progress   int    // Always within [0, 100]
	LastUpdate time.Time
}

// SetProgress stores p clamped to [0, 100] and reports whether the stored
// value changed.
func (r *ProgressRecord) SetProgress(p int) bool {
	p = ClampPercent(p)
	if r.Progress == p {
		return false
	}
	r.Progress = p
	return true
}

// AggregateState is the single progress signal derived from all records.
type AggregateState struct {
	ActiveCount     int
	MeanProgress    int
	LeadingFilename string
}

// Aggregate computes the AggregateState for a set of records. It never
// caches: callers recompute after every mutation.
func Aggregate(records map[Identity]*ProgressRecord) AggregateState {
	if len(records) == 0 {
		return AggregateState{}
	}

	sum := 0
	var leader *ProgressRecord
	for _, r := range records {
		sum += r.Progress
		if leader == nil || isLeader(r, leader) {
			leader = r
		}
	}

	return AggregateState{
		ActiveCount:     len(records),
		MeanProgress:    int(math.Round(float64(sum) / float64(len(records)))),
		LeadingFilename: leader.Filename,
	}
}

// isLeader orders candidates by progress, then recency, then identity so the
// result does not depend on map iteration order.
func isLeader(a, b *ProgressRecord) bool {
	if a.Progress != b.Progress {
		return a.Progress > b.Progress
	}
	if !a.LastUpdate.Equal(b.LastUpdate) {
		return a.LastUpdate.After(b.LastUpdate)
	}
	if a.Identity.Package != b.Identity.Package {
		return a.Identity.Package < b.Identity.Package
	}
	return a.Identity.ID < b.Identity.ID
}

// ClampPercent limits p to [0, 100].
func ClampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Percent converts a raw progress/max pair into a clamped percentage.
// ok is false when the pair carries no usable progress.
func Percent(raw, max int64) (percent int, ok bool) {
	if raw < 0 || max <= 0 {
		return 0, false
	}
	if raw >= max {
		return 100, true
	}
	// Byte counts near MaxInt64 would overflow raw*100
	if raw > math.MaxInt64/100 {
		return ClampPercent(int(float64(raw) / float64(max) * 100)), true
	}
	return ClampPercent(int(raw * 100 / max)), true
}
