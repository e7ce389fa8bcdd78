package types

import (
	"testing"
	"time"
)

func TestRuntimeConfig_Getters(t *testing.T) {
	t.Run("nil config returns defaults", func(t *testing.T) {
		var r *RuntimeConfig = nil

		if got := r.GetDropThreshold(); got != DropThreshold {
			t.Errorf("GetDropThreshold = %d, want %d", got, DropThreshold)
		}
		if got := r.GetStaleAfter(); got != StaleAfter {
			t.Errorf("GetStaleAfter = %v, want %v", got, StaleAfter)
		}
		if got := r.GetCompleteFloor(); got != 100 {
			t.Errorf("GetCompleteFloor = %d, want 100", got)
		}
		if !r.Allows("com.android.chrome") {
			t.Error("nil config should allow every package")
		}
	})

	t.Run("zero values fall back to defaults", func(t *testing.T) {
		r := &RuntimeConfig{}
		if got := r.GetDropThreshold(); got != DropThreshold {
			t.Errorf("GetDropThreshold = %d, want %d", got, DropThreshold)
		}
		if got := r.GetStaleAfter(); got != StaleAfter {
			t.Errorf("GetStaleAfter = %v, want %v", got, StaleAfter)
		}
		if got := r.GetCompleteFloor(); got != 100 {
			t.Errorf("GetCompleteFloor = %d, want 100", got)
		}
	})

	t.Run("configured values are returned", func(t *testing.T) {
		r := &RuntimeConfig{DropThreshold: 10, StaleAfter: time.Minute, CompleteFloor: 95}
		if got := r.GetDropThreshold(); got != 10 {
			t.Errorf("GetDropThreshold = %d, want 10", got)
		}
		if got := r.GetStaleAfter(); got != time.Minute {
			t.Errorf("GetStaleAfter = %v, want 1m", got)
		}
		if got := r.GetCompleteFloor(); got != 95 {
			t.Errorf("GetCompleteFloor = %d, want 95", got)
		}
	})

	t.Run("complete floor above 100 is rejected", func(t *testing.T) {
		r := &RuntimeConfig{CompleteFloor: 150}
		if got := r.GetCompleteFloor(); got != 100 {
			t.Errorf("GetCompleteFloor = %d, want 100", got)
		}
	})
}

func TestRuntimeConfig_Allows(t *testing.T) {
	r := &RuntimeConfig{AllowedPackages: []string{"com.android.chrome", "org.mozilla.firefox"}}

	if !r.Allows("org.mozilla.firefox") {
		t.Error("listed package should be allowed")
	}
	if r.Allows("com.example.spam") {
		t.Error("unlisted package should be refused")
	}

	empty := &RuntimeConfig{}
	if !empty.Allows("com.example.spam") {
		t.Error("empty allow-list should allow everything")
	}
}

func TestDefaultRuntimeConfig(t *testing.T) {
	r := DefaultRuntimeConfig()
	if r.Completion != PolicyImplicitComplete {
		t.Errorf("Completion = %v, want implicit_complete", r.Completion)
	}
	if r.CompleteFloor != 100 || r.CancelFloor != 0 {
		t.Errorf("floors = %d/%d, want 100/0", r.CompleteFloor, r.CancelFloor)
	}
}

func TestCompletionPolicy(t *testing.T) {
	tests := []struct {
		in   string
		want CompletionPolicy
	}{
		{"ignore", PolicyIgnore},
		{"implicit_complete", PolicyImplicitComplete},
		{"", PolicyImplicitComplete},
		{"bogus", PolicyImplicitComplete},
	}
	for _, tt := range tests {
		if got := ParseCompletionPolicy(tt.in); got != tt.want {
			t.Errorf("ParseCompletionPolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if got := CompletionPolicy(9).String(); got != "unknown" {
		t.Errorf("String() = %q, want unknown", got)
	}
	if got := PolicyIgnore.String(); got != "ignore" {
		t.Errorf("String() = %q, want ignore", got)
	}
}
