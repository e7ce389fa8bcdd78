package config

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrigger(t *testing.T) {
	tests := []struct {
		in      string
		kind    TriggerKind
		value   int
		wantErr bool
	}{
		{in: "preview_dynamic", kind: TriggerPreviewDynamic},
		{in: " Preview_Geometry ", kind: TriggerPreviewGeometry},
		{in: "cancel_geometry", kind: TriggerCancelGeometry},
		{in: "progress:42", kind: TriggerProgress, value: 42},
		{in: "error", kind: TriggerError},
		{in: "clear", kind: TriggerClear},
		{in: "progress", wantErr: true},
		{in: "progress:101", wantErr: true},
		{in: "progress:abc", wantErr: true},
		{in: "clear:1", wantErr: true},
		{in: "explode", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTrigger(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidValue), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.value, got.Value)
			assert.NotEmpty(t, got.ID)
		})
	}
}

func TestStore_SetNotifiesAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	st, err := OpenStore(path)
	require.NoError(t, err)

	var keys []string
	cancel := st.OnChange(func(key string) { keys = append(keys, key) })

	require.NoError(t, st.Set("stroke_width", "2"))
	assert.Error(t, st.Set("stroke_width", "99"))
	assert.Equal(t, []string{"stroke_width"}, keys, "failed sets do not notify")

	v, err := st.Get("stroke_width")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	reloaded, err := LoadSettingsFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 2.0, reloaded.Ring.StrokeWidth)

	cancel()
	require.NoError(t, st.Set("stroke_width", "3"))
	assert.Len(t, keys, 1)
}

func TestStore_SettingsReturnsCopy(t *testing.T) {
	st := NewStore(nil)
	s := st.Settings()
	s.Ring.StrokeWidth = 7
	assert.Equal(t, DefaultSettings().Ring.StrokeWidth, st.Settings().Ring.StrokeWidth)
}

func TestStore_Fire(t *testing.T) {
	st := NewStore(nil)

	var got []Trigger
	cancel := st.OnTrigger(func(tr Trigger) { got = append(got, tr) })

	st.Fire(Trigger{Kind: TriggerProgress, Value: 30})
	require.Len(t, got, 1)
	assert.Equal(t, "progress:30", got[0].String())
	assert.NotEmpty(t, got[0].ID, "missing ids are filled in")

	cancel()
	st.Fire(Trigger{Kind: TriggerClear})
	assert.Len(t, got, 1)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	st := NewStore(nil)
	st.OnChange(func(string) {})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if i%2 == 0 {
					_ = st.Set("clockwise", "true")
				} else {
					_, _ = st.Get("clockwise")
					_ = st.Settings()
				}
			}
		}(i)
	}
	wg.Wait()
}
