package types

import (
	"slices"
	"time"
)

// Aggregator thresholds
const (
	// DropThreshold is how far (in percentage points) an update must fall
	// below the stored value before it is treated as a new download.
	DropThreshold = 25

	// StaleAfter is the age after which an untouched record of the same
	// package is evicted during an update.
	StaleAfter = 5 * time.Minute
)

// Channel buffer sizes
const (
	EventChannelBuffer = 100
)

// CompletionPolicy decides what a posted update without progress extras means.
type CompletionPolicy int

const (
	// PolicyIgnore drops updates that carry no progress.
	PolicyIgnore CompletionPolicy = iota
	// PolicyImplicitComplete treats a progress-less update for a known
	// identity as its completion notification.
	PolicyImplicitComplete
)

func (p CompletionPolicy) String() string {
	switch p {
	case PolicyIgnore:
		return "ignore"
	case PolicyImplicitComplete:
		return "implicit_complete"
	default:
		return "unknown"
	}
}

// ParseCompletionPolicy maps a settings string to a policy, defaulting to
// PolicyImplicitComplete.
func ParseCompletionPolicy(s string) CompletionPolicy {
	if s == "ignore" {
		return PolicyIgnore
	}
	return PolicyImplicitComplete
}

// RuntimeConfig holds the aggregator settings that may change while running.
type RuntimeConfig struct {
	// AllowedPackages gates which sources are tracked. Empty allows all.
	AllowedPackages []string
	Completion      CompletionPolicy
	// CompleteFloor is the minimum last-known progress for a retracted
	// notification to count as completed.
	CompleteFloor int
	// CancelFloor is the minimum last-known progress for a retracted
	// notification to emit a cancellation. Zero cancels unconditionally.
	CancelFloor   int
	DropThreshold int
	StaleAfter    time.Duration
}

// DefaultRuntimeConfig returns the canonical aggregator policy.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		Completion:    PolicyImplicitComplete,
		CompleteFloor: 100,
		CancelFloor:   0,
		DropThreshold: DropThreshold,
		StaleAfter:    StaleAfter,
	}
}

// Allows reports whether pkg passes the allow-list.
func (r *RuntimeConfig) Allows(pkg string) bool {
	if r == nil || len(r.AllowedPackages) == 0 {
		return true
	}
	return slices.Contains(r.AllowedPackages, pkg)
}

// GetDropThreshold returns configured value or default
func (r *RuntimeConfig) GetDropThreshold() int {
	if r == nil || r.DropThreshold <= 0 {
		return DropThreshold
	}
	return r.DropThreshold
}

// GetStaleAfter returns configured value or default
func (r *RuntimeConfig) GetStaleAfter() time.Duration {
	if r == nil || r.StaleAfter <= 0 {
		return StaleAfter
	}
	return r.StaleAfter
}

// GetCompleteFloor returns configured value or default
func (r *RuntimeConfig) GetCompleteFloor() int {
	if r == nil || r.CompleteFloor <= 0 || r.CompleteFloor > 100 {
		return 100
	}
	return r.CompleteFloor
}
