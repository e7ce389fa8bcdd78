package notify

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/surge-downloader/halo/internal/engine/types"
)

// DefaultSimPackages are the sources the simulator pretends to be.
var DefaultSimPackages = []string{"com.android.chrome", "org.mozilla.firefox", "com.android.providers.downloads"}

var simExtensions = []string{"zip", "mp4", "pdf", "apk", "jpg", "mp3", "tar.gz"}

// SimConfig tunes the synthetic download stream.
type SimConfig struct {
	Packages      []string
	MaxConcurrent int
	Interval      time.Duration
	// CancelChance and SilentCompleteChance are per-download probabilities
	// decided when a download starts.
	CancelChance         float64
	SilentCompleteChance float64
	Seed                 uint64
}

// DefaultSimConfig returns a lively but readable stream.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Packages:             DefaultSimPackages,
		MaxConcurrent:        2,
		Interval:             250 * time.Millisecond,
		CancelChance:         0.15,
		SilentCompleteChance: 0.2,
	}
}

type simDownload struct {
	n            Notification
	progress     int
	total        int64
	cancelAt     int // -1 never
	silentFinish bool
}

// Simulator synthesises overlapping downloads.
type Simulator struct {
	cfg    SimConfig
	rng    *rand.Rand
	active []*simDownload
}

// NewSimulator creates a simulator. A zero Seed seeds from the clock.
func NewSimulator(cfg SimConfig) *Simulator {
	if len(cfg.Packages) == 0 {
		cfg.Packages = DefaultSimPackages
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 250 * time.Millisecond
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Simulator{cfg: cfg, rng: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

// Active returns the number of downloads in flight.
func (s *Simulator) Active() int { return len(s.active) }

// Run implements Source. It never ends on its own.
func (s *Simulator) Run(ctx context.Context, l Listener) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Step(l)
		}
	}
}

// Step advances every download once and maybe starts a new one.
func (s *Simulator) Step(l Listener) {
	if len(s.active) < s.cfg.MaxConcurrent && (len(s.active) == 0 || s.rng.IntN(3) == 0) {
		s.active = append(s.active, s.start())
	}

	live := s.active[:0]
	for _, d := range s.active {
		if s.advance(d, l) {
			live = append(live, d)
		}
	}
	s.active = live
}

func (s *Simulator) start() *simDownload {
	id := uuid.New()
	ext := simExtensions[s.rng.IntN(len(simExtensions))]
	d := &simDownload{
		n: Notification{
			Package: s.cfg.Packages[s.rng.IntN(len(s.cfg.Packages))],
			ID:      int(id.ID() & 0x7fffffff),
			Title:   fmt.Sprintf("download-%s.%s", id.String()[:8], ext),
		},
		total:    int64(1+s.rng.IntN(500)) << 20,
		cancelAt: -1,
	}
	if s.rng.Float64() < s.cfg.CancelChance {
		d.cancelAt = 5 + s.rng.IntN(80)
	}
	d.silentFinish = s.rng.Float64() < s.cfg.SilentCompleteChance
	return d
}

// advance reports whether d is still active afterwards.
func (s *Simulator) advance(d *simDownload, l Listener) bool {
	if d.cancelAt >= 0 && d.progress >= d.cancelAt {
		l.NotificationRetracted(d.n.Identity())
		return false
	}

	d.progress += 2 + s.rng.IntN(12)
	if d.progress >= 100 {
		if d.silentFinish {
			// Replace the progress notification with a plain one
			done := d.n
			done.Title = "Download complete: " + d.n.Title
			done.Extras = nil
			l.NotificationPosted(done)
		} else {
			l.NotificationPosted(d.withProgress(d.total))
		}
		l.NotificationRetracted(d.n.Identity())
		return false
	}

	l.NotificationPosted(d.withProgress(d.total * int64(d.progress) / 100))
	return true
}

func (d *simDownload) withProgress(raw int64) Notification {
	n := d.n
	n.Extras = map[string]any{
		ExtraProgress:    raw,
		ExtraProgressMax: d.total,
	}
	return n
}

// Identities returns the identities in flight, mainly for tests.
func (s *Simulator) Identities() []types.Identity {
	ids := make([]types.Identity, 0, len(s.active))
	for _, d := range s.active {
		ids = append(ids, d.n.Identity())
	}
	return ids
}
