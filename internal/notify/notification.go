// Package notify turns raw notification events into aggregator input. It
// contains the tolerant payload decoding, the adapter collaborators call
// into, and the feed and simulator sources used off-device.
package notify

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/surge-downloader/halo/internal/engine/types"
)

// Extra keys carried by progress notifications.
const (
	ExtraTitle         = "android.title"
	ExtraProgress      = "android.progress"
	ExtraProgressMax   = "android.progressMax"
	ExtraIndeterminate = "android.progressIndeterminate"
)

// Notification is one posted notification as delivered by a source.
type Notification struct {
	Package string         `json:"package"`
	ID      int            `json:"id"`
	Title   string         `json:"title,omitempty"`
	Extras  map[string]any `json:"extras,omitempty"`
}

// Identity returns the aggregator key of n.
func (n Notification) Identity() types.Identity {
	return types.Identity{Package: n.Package, ID: n.ID}
}

// Progress returns the raw progress extras. Missing, indeterminate or
// undecodable values report -1 and 0, which the aggregator treats as "no
// progress".
func (n Notification) Progress() (raw, rawMax int64) {
	if b, ok := extraBool(n.Extras[ExtraIndeterminate]); ok && b {
		return -1, 0
	}
	raw, okRaw := extraInt(n.Extras[ExtraProgress])
	rawMax, okMax := extraInt(n.Extras[ExtraProgressMax])
	if !okRaw || !okMax {
		return -1, 0
	}
	return raw, rawMax
}

// Filename returns the cleaned filename from the title or the title extra.
func (n Notification) Filename() string {
	if name := CleanFilename(n.Title); name != "" {
		return name
	}
	if s, ok := n.Extras[ExtraTitle].(string); ok {
		return CleanFilename(s)
	}
	return ""
}

func extraInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return int64(x), true
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			f, ferr := x.Float64()
			if ferr != nil {
				return 0, false
			}
			return int64(f), true
		}
		return n, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func extraBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		b, err := strconv.ParseBool(x)
		return b, err == nil
	default:
		return false, false
	}
}
