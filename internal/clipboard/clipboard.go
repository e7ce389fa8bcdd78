// Package clipboard moves triggers and filenames between the terminal UI and
// the system clipboard.
package clipboard

import (
	"errors"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/surge-downloader/halo/internal/config"
)

var (
	clipboardReadAll  = clipboard.ReadAll
	clipboardWriteAll = clipboard.WriteAll
)

// ErrEmpty is returned when the clipboard holds nothing usable.
var ErrEmpty = errors.New("clipboard holds no trigger")

const maxClipboardLen = 2048

// Validator decides whether a clipboard payload is a trigger.
type Validator struct {
	prefixes []string
}

func NewValidator() *Validator {
	return &Validator{prefixes: []string{"halo:", "halo://"}}
}

// ExtractTrigger parses text as a trigger such as "preview_dynamic" or
// "progress:40". A "halo:" or "halo://" prefix is accepted and stripped.
func (v *Validator) ExtractTrigger(text string) (config.Trigger, error) {
	text = strings.TrimSpace(text)
	if !plausible(text) || text == "" {
		return config.Trigger{}, ErrEmpty
	}
	// Longest prefix first
	for i := len(v.prefixes) - 1; i >= 0; i-- {
		if p := v.prefixes[i]; len(text) >= len(p) && strings.EqualFold(text[:len(p)], p) {
			text = text[len(p):]
			break
		}
	}
	return config.ParseTrigger(text)
}

// Too long or multi-line payloads are never commands.
func plausible(text string) bool {
	return len(text) <= maxClipboardLen && !strings.ContainsAny(text, "\n\r")
}

// ReadTrigger reads a trigger from the clipboard.
func ReadTrigger() (config.Trigger, error) {
	text, err := clipboardReadAll()
	if err != nil {
		return config.Trigger{}, err
	}
	return NewValidator().ExtractTrigger(text)
}

// Copy places text on the clipboard.
func Copy(text string) error {
	if text == "" {
		return ErrEmpty
	}
	return clipboardWriteAll(text)
}
