package notify

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/surge-downloader/halo/internal/engine/types"
	"github.com/surge-downloader/halo/internal/utils"
)

// Op is the kind of a feed event.
type Op string

const (
	OpPost    Op = "post"
	OpRetract Op = "retract"
)

// Event is one line of a JSON-lines feed:
//
//	{"op":"post","delay_ms":250,"package":"com.android.chrome","id":7,"title":"a.zip","extras":{"android.progress":40,"android.progressMax":100}}
//	{"op":"retract","package":"com.android.chrome","id":7}
type Event struct {
	Op      Op  `json:"op"`
	DelayMS int `json:"delay_ms,omitempty"`
	Notification
}

// Feed replays a recorded event stream. Malformed lines are skipped.
type Feed struct {
	r     io.Reader
	speed float64

	mu      sync.Mutex
	skipped int
}

// NewFeed creates a Feed reading from r at real-time speed.
func NewFeed(r io.Reader) *Feed {
	return &Feed{r: r, speed: 1}
}

// WithSpeed scales every delay by 1/speed. A speed of zero or less replays
// without waiting.
func (f *Feed) WithSpeed(speed float64) *Feed {
	f.speed = speed
	return f
}

// Skipped returns how many lines were ignored.
func (f *Feed) Skipped() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.skipped
}

// Run implements Source.
func (f *Feed) Run(ctx context.Context, l Listener) error {
	sc := bufio.NewScanner(f.r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		ev, err := decodeEvent(text)
		if err != nil {
			utils.Debug("feed: line %d: %v", line, err)
			f.skip()
			continue
		}

		if err := f.wait(ctx, time.Duration(ev.DelayMS)*time.Millisecond); err != nil {
			return err
		}

		switch ev.Op {
		case OpPost:
			l.NotificationPosted(ev.Notification)
		case OpRetract:
			l.NotificationRetracted(ev.Identity())
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading feed: %w", err)
	}
	return nil
}

func decodeEvent(text string) (Event, error) {
	var ev Event
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&ev); err != nil {
		return Event{}, err
	}
	switch ev.Op {
	case OpPost, OpRetract:
	default:
		return Event{}, fmt.Errorf("unknown op %q", ev.Op)
	}
	if ev.Package == "" {
		return Event{}, fmt.Errorf("missing package")
	}
	if ev.DelayMS < 0 {
		ev.DelayMS = 0
	}
	return ev, nil
}

func (f *Feed) skip() {
	f.mu.Lock()
	f.skipped++
	f.mu.Unlock()
}

func (f *Feed) wait(ctx context.Context, d time.Duration) error {
	if f.speed <= 0 || d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(time.Duration(float64(d) / f.speed))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Recorder writes every event it sees as a feed line, then forwards it.
type Recorder struct {
	mu   sync.Mutex
	enc  *json.Encoder
	next Listener
	now  func() time.Time
	last time.Time
}

// NewRecorder records to w and forwards to next, which may be nil.
func NewRecorder(w io.Writer, next Listener) *Recorder {
	return &Recorder{enc: json.NewEncoder(w), next: next, now: time.Now}
}

func (r *Recorder) NotificationPosted(n Notification) {
	r.write(Event{Op: OpPost, Notification: n})
	if r.next != nil {
		r.next.NotificationPosted(n)
	}
}

func (r *Recorder) NotificationRetracted(id types.Identity) {
	r.write(Event{Op: OpRetract, Notification: Notification{Package: id.Package, ID: id.ID}})
	if r.next != nil {
		r.next.NotificationRetracted(id)
	}
}

func (r *Recorder) write(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if !r.last.IsZero() {
		ev.DelayMS = int(now.Sub(r.last) / time.Millisecond)
	}
	r.last = now
	if err := r.enc.Encode(ev); err != nil {
		utils.Debug("feed: record failed: %v", err)
	}
}
