package types

import (
	"testing"
	"time"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		name     string
		raw, max int64
		want     int
		wantOK   bool
	}{
		{"half", 50, 100, 50, true},
		{"bytes", 512 * 1024, 1024 * 1024, 50, true},
		{"truncates", 999, 1000, 99, true},
		{"zero", 0, 100, 0, true},
		{"complete", 100, 100, 100, true},
		{"raw beyond max", 150, 100, 100, true},
		{"huge values", 1 << 60, 1 << 61, 50, true},
		{"no max", 10, 0, 0, false},
		{"negative raw", -1, 100, 0, false},
		{"negative max", 10, -100, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Percent(tt.raw, tt.max)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Percent(%d, %d) = %d, %v; want %d, %v", tt.raw, tt.max, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestClampPercent(t *testing.T) {
	for in, want := range map[int]int{-5: 0, 0: 0, 42: 42, 100: 100, 250: 100} {
		if got := ClampPercent(in); got != want {
			t.Errorf("ClampPercent(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestProgressRecord_SetProgress(t *testing.T) {
	r := &ProgressRecord{}

	if !r.SetProgress(40) {
		t.Error("first change should report true")
	}
	if r.SetProgress(40) {
		t.Error("same value should report false")
	}
	if !r.SetProgress(140) || r.Progress != 100 {
		t.Errorf("Progress = %d, want clamped 100", r.Progress)
	}
	if r.SetProgress(101) {
		t.Error("clamped duplicate should report false")
	}
}

func TestAggregate(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if got := Aggregate(nil); got != (AggregateState{}) {
		t.Errorf("empty aggregate = %+v, want zero", got)
	}

	a := Identity{Package: "com.android.chrome", ID: 1}
	b := Identity{Package: "com.android.chrome", ID: 2}
	c := Identity{Package: "org.mozilla.firefox", ID: 1}

	records := map[Identity]*ProgressRecord{
		a: {Identity: a, Filename: "a.zip", Progress: 20, LastUpdate: now},
		b: {Identity: b, Filename: "b.iso", Progress: 70, LastUpdate: now},
		c: {Identity: c, Filename: "c.mp4", Progress: 35, LastUpdate: now},
	}

	got := Aggregate(records)
	want := AggregateState{ActiveCount: 3, MeanProgress: 42, LeadingFilename: "b.iso"}
	if got != want {
		t.Errorf("Aggregate = %+v, want %+v", got, want)
	}
}

func TestAggregate_MeanRounds(t *testing.T) {
	a := Identity{Package: "p", ID: 1}
	b := Identity{Package: "p", ID: 2}
	records := map[Identity]*ProgressRecord{
		a: {Identity: a, Progress: 10},
		b: {Identity: b, Progress: 11},
	}
	if got := Aggregate(records).MeanProgress; got != 11 {
		t.Errorf("MeanProgress = %d, want 11", got)
	}
}

func TestAggregate_LeaderTieBreak(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := Identity{Package: "com.a", ID: 1}
	b := Identity{Package: "com.b", ID: 1}
	c := Identity{Package: "com.a", ID: 2}

	t.Run("most recent wins on equal progress", func(t *testing.T) {
		records := map[Identity]*ProgressRecord{
			a: {Identity: a, Filename: "old", Progress: 50, LastUpdate: now},
			b: {Identity: b, Filename: "new", Progress: 50, LastUpdate: now.Add(time.Second)},
		}
		if got := Aggregate(records).LeadingFilename; got != "new" {
			t.Errorf("LeadingFilename = %q, want new", got)
		}
	})

	t.Run("identity decides full ties", func(t *testing.T) {
		for i := 0; i < 20; i++ {
			records := map[Identity]*ProgressRecord{
				a: {Identity: a, Filename: "a1", Progress: 50, LastUpdate: now},
				b: {Identity: b, Filename: "b1", Progress: 50, LastUpdate: now},
				c: {Identity: c, Filename: "a2", Progress: 50, LastUpdate: now},
			}
			if got := Aggregate(records).LeadingFilename; got != "a1" {
				t.Fatalf("LeadingFilename = %q, want a1", got)
			}
		}
	})
}

func TestIdentity_String(t *testing.T) {
	id := Identity{Package: "com.android.chrome", ID: 7}
	if got := id.String(); got != "com.android.chrome#7" {
		t.Errorf("String() = %q", got)
	}
}
