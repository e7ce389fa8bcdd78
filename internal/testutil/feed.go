// Package testutil builds notification feeds for tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// Progress extras understood by the notification adapter.
const (
	extraProgress    = "android.progress"
	extraProgressMax = "android.progressMax"
)

type feedLine struct {
	Op      string         `json:"op"`
	DelayMS int            `json:"delay_ms,omitempty"`
	Package string         `json:"package"`
	ID      int            `json:"id"`
	Title   string         `json:"title,omitempty"`
	Extras  map[string]any `json:"extras,omitempty"`
}

// PostLine returns a feed line posting a download at progress percent.
// A negative progress posts the notification without progress extras.
func PostLine(pkg string, id int, title string, progress int) string {
	l := feedLine{Op: "post", Package: pkg, ID: id, Title: title}
	if progress >= 0 {
		l.Extras = map[string]any{extraProgress: progress, extraProgressMax: 100}
	}
	return encode(l)
}

// RetractLine returns a feed line retracting a notification.
func RetractLine(pkg string, id int) string {
	return encode(feedLine{Op: "retract", Package: pkg, ID: id})
}

// Delayed sets delay_ms on a line produced by PostLine or RetractLine.
func Delayed(line string, delayMS int) string {
	var l feedLine
	if err := json.Unmarshal([]byte(line), &l); err != nil {
		return line
	}
	l.DelayMS = delayMS
	return encode(l)
}

// WriteFeed joins lines into a JSON-lines file under dir and returns its path.
func WriteFeed(dir, name string, lines ...string) (string, error) {
	path := filepath.Join(dir, name)
	data := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func encode(l feedLine) string {
	b, err := json.Marshal(l)
	if err != nil {
		panic(err)
	}
	return string(b)
}
