package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surge-downloader/halo/internal/engine/types"
	"github.com/surge-downloader/halo/internal/testutil"
)

func TestCleanFilename(t *testing.T) {
	tests := []struct {
		title, want string
	}{
		{"report.pdf", "report.pdf"},
		{"  Downloading movie.mp4  ", "movie.mp4"},
		{"archive.zip (42%)", "archive.zip"},
		{"archive.zip • 42%", "archive.zip"},
		{"Download complete: song.mp3", "song.mp3"},
		{"big file.iso…", "big file.iso"},
		{"https://example.com/files/My%20Photo.jpg?x=1", "My Photo.jpg"},
		{"https://example.com/", ""},
		{"/sdcard/Download/notes.txt", "notes.txt"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanFilename(tt.title); got != tt.want {
			t.Errorf("CleanFilename(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestCategory(t *testing.T) {
	tests := map[string]string{
		"photo.JPG":  CategoryImage,
		"movie.mp4":  CategoryVideo,
		"song.mp3":   CategoryAudio,
		"a.zip":      CategoryArchive,
		"notes.docx": CategoryDocument,
		"README":     CategoryFile,
		"data.qqq":   CategoryFile,
	}
	for name, want := range tests {
		assert.Equal(t, want, Category(name), name)
	}
}

func TestNotification_Progress(t *testing.T) {
	tests := []struct {
		name        string
		extras      map[string]any
		raw, rawMax int64
	}{
		{"ints", map[string]any{ExtraProgress: 40, ExtraProgressMax: 100}, 40, 100},
		{"json floats", map[string]any{ExtraProgress: 40.0, ExtraProgressMax: 200.0}, 40, 200},
		{"json numbers", map[string]any{ExtraProgress: json.Number("7"), ExtraProgressMax: json.Number("10")}, 7, 10},
		{"strings", map[string]any{ExtraProgress: "3", ExtraProgressMax: " 4 "}, 3, 4},
		{"missing max", map[string]any{ExtraProgress: 40}, -1, 0},
		{"garbage", map[string]any{ExtraProgress: []int{1}, ExtraProgressMax: 100}, -1, 0},
		{"indeterminate", map[string]any{ExtraProgress: 40, ExtraProgressMax: 100, ExtraIndeterminate: true}, -1, 0},
		{"nil extras", nil, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, rawMax := Notification{Package: "p", Extras: tt.extras}.Progress()
			assert.Equal(t, tt.raw, raw)
			assert.Equal(t, tt.rawMax, rawMax)
		})
	}
}

func TestNotification_FilenameFallsBackToExtra(t *testing.T) {
	n := Notification{Extras: map[string]any{ExtraTitle: "Downloading a.zip"}}
	assert.Equal(t, "a.zip", n.Filename())
}

type posted struct {
	id          types.Identity
	filename    string
	raw, rawMax int64
}

type fakeSink struct {
	posts     []posted
	retracts  []types.Identity
	panicNext bool
}

func (s *fakeSink) Posted(id types.Identity, filename string, raw, rawMax int64) {
	if s.panicNext {
		s.panicNext = false
		panic("sink exploded")
	}
	s.posts = append(s.posts, posted{id, filename, raw, rawMax})
}

func (s *fakeSink) Retracted(id types.Identity) {
	s.retracts = append(s.retracts, id)
}

func TestAdapter(t *testing.T) {
	sink := &fakeSink{}
	a := NewAdapter(sink)

	a.NotificationPosted(Notification{Package: "com.android.chrome", ID: 3, Title: "a.zip (10%)",
		Extras: map[string]any{ExtraProgress: 10, ExtraProgressMax: 100}})
	a.NotificationPosted(Notification{ID: 4})
	a.NotificationRetracted(types.Identity{Package: "com.android.chrome", ID: 3})
	a.NotificationRetracted(types.Identity{})

	require.Len(t, sink.posts, 1)
	assert.Equal(t, posted{types.Identity{Package: "com.android.chrome", ID: 3}, "a.zip", 10, 100}, sink.posts[0])
	assert.Len(t, sink.retracts, 1)

	sink.panicNext = true
	assert.NotPanics(t, func() {
		a.NotificationPosted(Notification{Package: "p", ID: 1})
	})
}

type recordingListener struct {
	posts    []Notification
	retracts []types.Identity
}

func (l *recordingListener) NotificationPosted(n Notification) { l.posts = append(l.posts, n) }
func (l *recordingListener) NotificationRetracted(id types.Identity) {
	l.retracts = append(l.retracts, id)
}

func TestFeed_ReplaySkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		`# recorded session`,
		`{"op":"post","package":"com.android.chrome","id":1,"title":"a.zip","extras":{"android.progress":25,"android.progressMax":100}}`,
		`{"op":"post","package":"com.android.chrome"`,
		`{"op":"explode","package":"x","id":1}`,
		`{"op":"post","id":1}`,
		``,
		`{"op":"retract","delay_ms":5000,"package":"com.android.chrome","id":1}`,
	}, "\n")

	l := &recordingListener{}
	feed := NewFeed(strings.NewReader(input)).WithSpeed(0)
	require.NoError(t, feed.Run(context.Background(), l))

	require.Len(t, l.posts, 1)
	raw, rawMax := l.posts[0].Progress()
	assert.Equal(t, int64(25), raw)
	assert.Equal(t, int64(100), rawMax)
	assert.Equal(t, []types.Identity{{Package: "com.android.chrome", ID: 1}}, l.retracts)
	assert.Equal(t, 3, feed.Skipped())
}

func TestFeed_ScalesDelaysBySpeed(t *testing.T) {
	path, err := testutil.WriteFeed(t.TempDir(), "session.jsonl",
		testutil.PostLine("org.mozilla.firefox", 3, "Downloading report.pdf", 10),
		testutil.Delayed(testutil.PostLine("org.mozilla.firefox", 3, "report.pdf", -1), 2000),
		testutil.Delayed(testutil.RetractLine("org.mozilla.firefox", 3), 2000),
	)
	require.NoError(t, err)
	require.True(t, testutil.FileExists(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	l := &recordingListener{}
	start := time.Now()
	require.NoError(t, NewFeed(f).WithSpeed(100).Run(context.Background(), l))
	assert.Less(t, time.Since(start), 2*time.Second)

	require.Len(t, l.posts, 2)
	assert.Equal(t, "report.pdf", l.posts[0].Filename())
	_, rawMax := l.posts[1].Progress()
	assert.Zero(t, rawMax)
	assert.Len(t, l.retracts, 1)
}

func TestFeed_HonoursContext(t *testing.T) {
	input := `{"op":"post","delay_ms":60000,"package":"p","id":1}`
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := NewFeed(strings.NewReader(input)).Run(ctx, &recordingListener{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRecorder_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	forward := &recordingListener{}
	rec := NewRecorder(&buf, forward)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rec.now = func() time.Time { return now }

	rec.NotificationPosted(Notification{Package: "p", ID: 1, Title: "a.zip",
		Extras: map[string]any{ExtraProgress: 50, ExtraProgressMax: 100}})
	now = now.Add(300 * time.Millisecond)
	rec.NotificationRetracted(types.Identity{Package: "p", ID: 1})

	assert.Len(t, forward.posts, 1)
	assert.Len(t, forward.retracts, 1)
	assert.Contains(t, buf.String(), `"delay_ms":300`)

	replayed := &recordingListener{}
	require.NoError(t, NewFeed(&buf).WithSpeed(0).Run(context.Background(), replayed))
	require.Len(t, replayed.posts, 1)
	assert.Equal(t, "a.zip", replayed.posts[0].Filename())
	raw, _ := replayed.posts[0].Progress()
	assert.Equal(t, int64(50), raw)
	assert.Equal(t, forward.retracts, replayed.retracts)
}

func TestSimulator_StepsAreConsistent(t *testing.T) {
	cfg := DefaultSimConfig()
	cfg.Seed = 42
	cfg.MaxConcurrent = 3
	sim := NewSimulator(cfg)

	l := &recordingListener{}
	seen := map[types.Identity]bool{}
	for i := 0; i < 500; i++ {
		before := len(l.posts)
		sim.Step(l)
		for _, n := range l.posts[before:] {
			seen[n.Identity()] = true
			assert.NotEmpty(t, n.Filename())
		}
		assert.LessOrEqual(t, sim.Active(), cfg.MaxConcurrent)
	}

	require.NotEmpty(t, l.retracts)
	for _, id := range l.retracts {
		assert.True(t, seen[id], "retracted %s was posted first", id)
	}
}
