package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/surge-downloader/halo/internal/utils"
)

// TriggerKind names an ephemeral request sent through the store.
type TriggerKind string

const (
	TriggerPreviewDynamic  TriggerKind = "preview_dynamic"
	TriggerPreviewGeometry TriggerKind = "preview_geometry"
	TriggerCancelGeometry  TriggerKind = "cancel_geometry"
	TriggerProgress        TriggerKind = "progress" // Inject test progress, "progress:<n>"
	TriggerError           TriggerKind = "error"
	TriggerClear           TriggerKind = "clear"
)

// Trigger is a one-shot request. It is never persisted.
type Trigger struct {
	ID    string
	Kind  TriggerKind
	Value int
}

func (t Trigger) String() string {
	if t.Kind == TriggerProgress {
		return fmt.Sprintf("%s:%d", t.Kind, t.Value)
	}
	return string(t.Kind)
}

// ParseTrigger parses "preview_dynamic", "progress:42" and friends.
func ParseTrigger(s string) (Trigger, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	name, arg, hasArg := strings.Cut(s, ":")
	t := Trigger{ID: uuid.NewString(), Kind: TriggerKind(name)}

	switch t.Kind {
	case TriggerProgress:
		if !hasArg {
			return Trigger{}, fmt.Errorf("trigger %q: %w: missing progress value", s, ErrInvalidValue)
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 || n > 100 {
			return Trigger{}, fmt.Errorf("trigger %q: %w: progress must be 0-100", s, ErrInvalidValue)
		}
		t.Value = n
	case TriggerPreviewDynamic, TriggerPreviewGeometry, TriggerCancelGeometry, TriggerError, TriggerClear:
		if hasArg {
			return Trigger{}, fmt.Errorf("trigger %q: %w: unexpected argument", s, ErrInvalidValue)
		}
	default:
		return Trigger{}, fmt.Errorf("trigger %q: %w", s, ErrInvalidValue)
	}
	return t, nil
}

// Store is the live configuration provider. It is safe for concurrent use;
// subscribers are called on the goroutine that made the change and must not
// block.
type Store struct {
	mu       sync.RWMutex
	settings *Settings
	path     string // Empty keeps changes in memory only

	subMu     sync.Mutex
	nextID    int
	onChange  map[int]func(key string)
	onTrigger map[int]func(Trigger)
}

// NewStore wraps s without persistence.
func NewStore(s *Settings) *Store {
	if s == nil {
		s = DefaultSettings()
	}
	return &Store{
		settings:  s,
		onChange:  make(map[int]func(string)),
		onTrigger: make(map[int]func(Trigger)),
	}
}

// OpenStore loads settings from path and persists every Set back to it.
func OpenStore(path string) (*Store, error) {
	s, err := LoadSettingsFrom(path)
	if err != nil {
		return nil, err
	}
	st := NewStore(s)
	st.path = path
	return st, nil
}

// Settings returns a copy of the current settings.
func (st *Store) Settings() *Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.settings.Clone()
}

// Get returns the formatted value of key.
func (st *Store) Get(key string) (string, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.settings.Get(key)
}

// Set validates and applies value, persists it when the store is backed by a
// file, then notifies change subscribers with key.
func (st *Store) Set(key, value string) error {
	st.mu.Lock()
	next := st.settings.Clone()
	if err := next.Set(key, value); err != nil {
		st.mu.Unlock()
		return err
	}
	if st.path != "" {
		if err := SaveSettingsTo(st.path, next); err != nil {
			st.mu.Unlock()
			return fmt.Errorf("saving settings: %w", err)
		}
	}
	st.settings = next
	st.mu.Unlock()

	utils.Debug("config: %s = %s", key, value)
	for _, fn := range st.changeSubscribers() {
		fn(key)
	}
	return nil
}

// OnChange registers fn for setting changes and returns its cancel func.
func (st *Store) OnChange(fn func(key string)) func() {
	st.subMu.Lock()
	defer st.subMu.Unlock()
	st.nextID++
	id := st.nextID
	st.onChange[id] = fn
	return func() {
		st.subMu.Lock()
		delete(st.onChange, id)
		st.subMu.Unlock()
	}
}

// OnTrigger registers fn for triggers and returns its cancel func.
func (st *Store) OnTrigger(fn func(Trigger)) func() {
	st.subMu.Lock()
	defer st.subMu.Unlock()
	st.nextID++
	id := st.nextID
	st.onTrigger[id] = fn
	return func() {
		st.subMu.Lock()
		delete(st.onTrigger, id)
		st.subMu.Unlock()
	}
}

// Fire delivers t to every trigger subscriber.
func (st *Store) Fire(t Trigger) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	utils.Debug("config: trigger %s (%s)", t, t.ID)

	st.subMu.Lock()
	subs := make([]func(Trigger), 0, len(st.onTrigger))
	for _, fn := range st.onTrigger {
		subs = append(subs, fn)
	}
	st.subMu.Unlock()

	for _, fn := range subs {
		fn(t)
	}
}

func (st *Store) changeSubscribers() []func(string) {
	st.subMu.Lock()
	defer st.subMu.Unlock()
	subs := make([]func(string), 0, len(st.onChange))
	for _, fn := range st.onChange {
		subs = append(subs, fn)
	}
	return subs
}
