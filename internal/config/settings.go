package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/surge-downloader/halo/internal/animator"
	"github.com/surge-downloader/halo/internal/engine/types"
	"github.com/surge-downloader/halo/internal/indicator"
	"github.com/surge-downloader/halo/internal/ring"
)

var (
	// ErrUnknownSetting is returned for keys no category defines.
	ErrUnknownSetting = errors.New("unknown setting")
	// ErrInvalidValue is returned when a value fails parsing or validation.
	ErrInvalidValue = errors.New("invalid value")
)

// Settings holds all user-configurable overlay settings organized by category.
type Settings struct {
	General  GeneralSettings  `json:"general"`
	Ring     RingSettings     `json:"ring"`
	Timing   TimingSettings   `json:"timing"`
	Behavior BehaviorSettings `json:"behavior"`
	Sources  SourceSettings   `json:"sources"`
}

// GeneralSettings contains application behavior settings.
type GeneralSettings struct {
	Enabled           bool `json:"enabled"`
	PowerSaving       bool `json:"power_saving"`
	Theme             int  `json:"theme"`
	LogRetentionCount int  `json:"log_retention_count"`
}

const (
	ThemeAdaptive = 0
	ThemeLight    = 1
	ThemeDark     = 2
)

// RingSettings contains the visual parameters of the ring.
type RingSettings struct {
	ProgressColor  string  `json:"progress_color"`
	TrackColor     string  `json:"track_color"`
	FinishColor    string  `json:"finish_color"`
	ErrorColor     string  `json:"error_color"`
	HighlightColor string  `json:"highlight_color"`
	StrokeWidth    float64 `json:"stroke_width"`
	RingGap        float64 `json:"ring_gap"`
	Opacity        float64 `json:"opacity"`
	Clockwise      bool    `json:"clockwise"`
	ShowTrack      bool    `json:"show_track"`
	SegmentCount   int     `json:"segment_count"`
	SegmentGap     float64 `json:"segment_gap"`
}

// TimingSettings contains animation durations and curves.
type TimingSettings struct {
	MinVisibility    time.Duration `json:"min_visibility"`
	FinishStyle      string        `json:"finish_style"`
	FinishHold       time.Duration `json:"finish_hold"`
	FinishExit       time.Duration `json:"finish_exit"`
	CompletionPulse  bool          `json:"completion_pulse"`
	ProgressEasing   string        `json:"progress_easing"`
	ProgressAnim     time.Duration `json:"progress_anim"`
	PreviewDebounce  time.Duration `json:"preview_debounce"`
	PreviewRamp      time.Duration `json:"preview_ramp"`
	GeometryDuration time.Duration `json:"geometry_duration"`
}

// BehaviorSettings contains state machine and aggregation policy.
type BehaviorSettings struct {
	GeometryPersistent bool   `json:"geometry_persistent"`
	ErrorFlashOnCancel bool   `json:"error_flash_on_cancel"`
	CompletionPolicy   string `json:"completion_policy"`
	CompleteFloor      int    `json:"complete_floor"`
	CancelFloor        int    `json:"cancel_floor"`
}

// SourceSettings gates which notification sources are tracked.
type SourceSettings struct {
	AllowedPackages []string `json:"allowed_packages"`
}

// SettingMeta provides metadata for a single setting (for UI rendering).
type SettingMeta struct {
	Key         string   // JSON key name
	Label       string   // Human-readable label
	Description string   // Help text
	Type        string   // "string", "int", "bool", "duration", "float64", "color", "choice", "list"
	Choices     []string // Accepted values for "choice"
	Min, Max    float64  // Inclusive numeric range, ignored when both are zero
}

// GetSettingsMetadata returns metadata for all settings organized by category.
func GetSettingsMetadata() map[string][]SettingMeta {
	return map[string][]SettingMeta{
		"General": {
			{Key: "enabled", Label: "Enabled", Description: "Draw the ring at all.", Type: "bool"},
			{Key: "power_saving", Label: "Power Saving", Description: "Disable all animations and drawing.", Type: "bool"},
			{Key: "theme", Label: "App Theme", Description: "UI Theme (System, Light, Dark).", Type: "int", Min: 0, Max: 2},
			{Key: "log_retention_count", Label: "Log Retention Count", Description: "Number of recent log files to keep.", Type: "int", Min: 0, Max: 100},
		},
		"Ring": {
			{Key: "progress_color", Label: "Progress Color", Description: "Arc color while downloading (#rrggbb).", Type: "color"},
			{Key: "track_color", Label: "Track Color", Description: "Background track color (#rrggbb).", Type: "color"},
			{Key: "finish_color", Label: "Finish Color", Description: "Color blended in by the glow and shrink styles.", Type: "color"},
			{Key: "error_color", Label: "Error Color", Description: "Color of the error flash.", Type: "color"},
			{Key: "highlight_color", Label: "Highlight Color", Description: "Color of the highlighted segment in the segmented style.", Type: "color"},
			{Key: "stroke_width", Label: "Stroke Width", Description: "Ring thickness (1-8).", Type: "float64", Min: 1, Max: 8},
			{Key: "ring_gap", Label: "Ring Gap", Description: "Distance between the cutout edge and the ring (0-8).", Type: "float64", Min: 0, Max: 8},
			{Key: "opacity", Label: "Opacity", Description: "Overall ring opacity (0.0-1.0).", Type: "float64", Min: 0, Max: 1},
			{Key: "clockwise", Label: "Clockwise", Description: "Fill the ring clockwise from the top.", Type: "bool"},
			{Key: "show_track", Label: "Show Track", Description: "Draw the unfilled part of the ring.", Type: "bool"},
			{Key: "segment_count", Label: "Segment Count", Description: "Split the ring into segments (0 or 1 for a continuous arc, up to 60).", Type: "int", Min: 0, Max: 60},
			{Key: "segment_gap", Label: "Segment Gap", Description: "Angular gap between segments in degrees (0-30).", Type: "float64", Min: 0, Max: 30},
		},
		"Timing": {
			{Key: "min_visibility", Label: "Min Visibility", Description: "Minimum time a download stays visible before finishing (e.g., 500ms).", Type: "duration", Min: 0, Max: float64(10 * time.Second)},
			{Key: "finish_style", Label: "Finish Style", Description: "Completion effect.", Type: "choice", Choices: animator.StyleNames()},
			{Key: "finish_hold", Label: "Finish Hold", Description: "Hold part of the completion effect. Hold plus exit is capped at 800ms.", Type: "duration", Min: 0, Max: float64(5 * time.Second)},
			{Key: "finish_exit", Label: "Finish Exit", Description: "Exit part of the completion effect.", Type: "duration", Min: 0, Max: float64(5 * time.Second)},
			{Key: "completion_pulse", Label: "Completion Pulse", Description: "Dip and recover opacity before the completion effect.", Type: "bool"},
			{Key: "progress_easing", Label: "Progress Easing", Description: "Curve used when the arc moves to a new value.", Type: "choice", Choices: animator.EasingNames()},
			{Key: "progress_anim", Label: "Progress Animation", Description: "Duration of arc movement (0 to jump).", Type: "duration", Min: 0, Max: float64(2 * time.Second)},
			{Key: "preview_debounce", Label: "Preview Debounce", Description: "Delay before a dynamic preview starts.", Type: "duration", Min: 0, Max: float64(5 * time.Second)},
			{Key: "preview_ramp", Label: "Preview Ramp", Description: "Length of the synthetic 0-100 ramp.", Type: "duration", Min: float64(100 * time.Millisecond), Max: float64(30 * time.Second)},
			{Key: "geometry_duration", Label: "Geometry Preview", Description: "How long the geometry preview stays up.", Type: "duration", Min: float64(100 * time.Millisecond), Max: float64(time.Minute)},
		},
		"Behavior": {
			{Key: "geometry_persistent", Label: "Persistent Geometry", Description: "Keep the geometry preview until cancelled.", Type: "bool"},
			{Key: "error_flash_on_cancel", Label: "Flash on Cancel", Description: "Flash the error ring when a download is cancelled.", Type: "bool"},
			{Key: "completion_policy", Label: "Completion Policy", Description: "How updates without progress are treated.", Type: "choice", Choices: []string{types.PolicyImplicitComplete.String(), types.PolicyIgnore.String()}},
			{Key: "complete_floor", Label: "Complete Floor", Description: "Retracted downloads at or above this progress count as complete (1-100).", Type: "int", Min: 1, Max: 100},
			{Key: "cancel_floor", Label: "Cancel Floor", Description: "Retracted downloads below this progress are dropped silently (0 cancels always).", Type: "int", Min: 0, Max: 100},
		},
		"Sources": {
			{Key: "allowed_packages", Label: "Allowed Packages", Description: "Comma separated source packages. Empty tracks every source.", Type: "list"},
		},
	}
}

// CategoryOrder returns the order of categories for UI tabs.
func CategoryOrder() []string {
	return []string{"General", "Ring", "Timing", "Behavior", "Sources"}
}

// LookupMeta finds the metadata for key.
func LookupMeta(key string) (SettingMeta, bool) {
	for _, cat := range CategoryOrder() {
		for _, m := range GetSettingsMetadata()[cat] {
			if m.Key == key {
				return m, true
			}
		}
	}
	return SettingMeta{}, false
}

// DefaultSettings returns a new Settings instance with sensible defaults.
func DefaultSettings() *Settings {
	return &Settings{
		General: GeneralSettings{
			Enabled:           true,
			Theme:             ThemeAdaptive,
			LogRetentionCount: 5,
		},
		Ring: RingSettings{
			ProgressColor:  "#00ff88",
			TrackColor:     "#333333",
			FinishColor:    "#00c8ff",
			ErrorColor:     "#ff3355",
			HighlightColor: "#ffffff",
			StrokeWidth:    1,
			RingGap:        1,
			Opacity:        1,
			Clockwise:      true,
			SegmentGap:     6,
		},
		Timing: TimingSettings{
			MinVisibility:    500 * time.Millisecond,
			FinishStyle:      string(animator.StylePop),
			FinishHold:       400 * time.Millisecond,
			FinishExit:       400 * time.Millisecond,
			ProgressEasing:   animator.EaseAccelerateDecelerate,
			ProgressAnim:     200 * time.Millisecond,
			PreviewDebounce:  animator.DefaultPreviewDebounce,
			PreviewRamp:      animator.DefaultPreviewRamp,
			GeometryDuration: animator.DefaultGeometryDuration,
		},
		Behavior: BehaviorSettings{
			CompletionPolicy: types.PolicyImplicitComplete.String(),
			CompleteFloor:    100,
			CancelFloor:      0,
		},
	}
}

// Clone returns a deep copy.
func (s *Settings) Clone() *Settings {
	c := *s
	c.Sources.AllowedPackages = slices.Clone(s.Sources.AllowedPackages)
	return &c
}

// GetSettingsPath returns the path to the settings JSON file.
func GetSettingsPath() string {
	return filepath.Join(GetHaloDir(), "settings.json")
}

// LoadSettings loads settings from the default path.
func LoadSettings() (*Settings, error) {
	return LoadSettingsFrom(GetSettingsPath())
}

// LoadSettingsFrom loads settings from path. Returns defaults if the file
// doesn't exist.
func LoadSettingsFrom(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings() // Start with defaults to fill any missing fields
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return settings, nil
}

// SaveSettings saves settings to the default path.
func SaveSettings(s *Settings) error {
	return SaveSettingsTo(GetSettingsPath(), s)
}

// SaveSettingsTo saves settings to path atomically.
func SaveSettingsTo(path string, s *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	// Atomic write: write to temp file, then rename
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tempPath, path)
}

// Get returns the value of key formatted the way Set accepts it.
func (s *Settings) Get(key string) (string, error) {
	field, meta, err := s.field(key)
	if err != nil {
		return "", err
	}
	switch meta.Type {
	case "duration":
		return time.Duration(field.Int()).String(), nil
	case "list":
		return strings.Join(field.Interface().([]string), ","), nil
	case "float64":
		return strconv.FormatFloat(field.Float(), 'f', -1, 64), nil
	default:
		return fmt.Sprint(field.Interface()), nil
	}
}

// Set parses and validates value, then stores it under key.
func (s *Settings) Set(key, value string) error {
	field, meta, err := s.field(key)
	if err != nil {
		return err
	}
	value = strings.TrimSpace(value)

	switch meta.Type {
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w: %q is not a bool", key, ErrInvalidValue, value)
		}
		field.SetBool(b)

	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w: %q is not an integer", key, ErrInvalidValue, value)
		}
		if err := meta.checkRange(float64(n)); err != nil {
			return err
		}
		field.SetInt(int64(n))

	case "float64":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: %w: %q is not a number", key, ErrInvalidValue, value)
		}
		if err := meta.checkRange(f); err != nil {
			return err
		}
		field.SetFloat(f)

	case "duration":
		d, err := time.ParseDuration(value)
		if err != nil {
			// Bare numbers are milliseconds
			ms, convErr := strconv.Atoi(value)
			if convErr != nil {
				return fmt.Errorf("%s: %w: %q is not a duration", key, ErrInvalidValue, value)
			}
			d = time.Duration(ms) * time.Millisecond
		}
		if err := meta.checkRange(float64(d)); err != nil {
			return err
		}
		field.SetInt(int64(d))

	case "color":
		if !ring.ValidColor(value) {
			return fmt.Errorf("%s: %w: %q is not a #rrggbb color", key, ErrInvalidValue, value)
		}
		field.SetString(strings.ToLower(value))

	case "choice":
		v := strings.ToLower(value)
		if !slices.Contains(meta.Choices, v) {
			return fmt.Errorf("%s: %w: %q (choose from %s)", key, ErrInvalidValue, value, strings.Join(meta.Choices, ", "))
		}
		field.SetString(v)

	case "list":
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		field.Set(reflect.ValueOf(items))

	default:
		field.SetString(value)
	}
	return nil
}

func (m SettingMeta) checkRange(v float64) error {
	if m.Min == 0 && m.Max == 0 {
		return nil
	}
	if v < m.Min || v > m.Max {
		return fmt.Errorf("%s: %w: out of range", m.Key, ErrInvalidValue)
	}
	return nil
}

// field locates the struct field tagged with key across all categories.
func (s *Settings) field(key string) (reflect.Value, SettingMeta, error) {
	meta, ok := LookupMeta(key)
	if !ok {
		return reflect.Value{}, SettingMeta{}, fmt.Errorf("%w: %s", ErrUnknownSetting, key)
	}
	root := reflect.ValueOf(s).Elem()
	for i := 0; i < root.NumField(); i++ {
		category := root.Field(i)
		ct := category.Type()
		for j := 0; j < ct.NumField(); j++ {
			tag := strings.Split(ct.Field(j).Tag.Get("json"), ",")[0]
			if tag == key {
				return category.Field(j), meta, nil
			}
		}
	}
	return reflect.Value{}, SettingMeta{}, fmt.Errorf("%w: %s", ErrUnknownSetting, key)
}

// ToRuntimeConfig creates the aggregator policy from user Settings
func (s *Settings) ToRuntimeConfig() *types.RuntimeConfig {
	rc := types.DefaultRuntimeConfig()
	rc.AllowedPackages = slices.Clone(s.Sources.AllowedPackages)
	rc.Completion = types.ParseCompletionPolicy(s.Behavior.CompletionPolicy)
	rc.CompleteFloor = s.Behavior.CompleteFloor
	rc.CancelFloor = s.Behavior.CancelFloor
	return rc
}

// ToIndicatorConfig creates the coordinator configuration from user Settings
func (s *Settings) ToIndicatorConfig() indicator.Config {
	style := animator.ParseStyle(s.Timing.FinishStyle)
	timing := animator.Timing{
		Hold:     s.Timing.FinishHold,
		Exit:     s.Timing.FinishExit,
		Pulse:    s.Timing.CompletionPulse,
		Segments: s.Ring.SegmentCount,
	}
	return indicator.Config{
		Enabled:            s.General.Enabled,
		PowerSaving:        s.General.PowerSaving,
		MinVisibility:      s.Timing.MinVisibility,
		FinishStyle:        style,
		FinishTiming:       timing,
		ProgressEasing:     animator.ParseEasing(s.Timing.ProgressEasing),
		ProgressAnim:       s.Timing.ProgressAnim,
		ErrorFlashOnCancel: s.Behavior.ErrorFlashOnCancel,
		Ring: ring.Style{
			ProgressColor:  s.Ring.ProgressColor,
			TrackColor:     s.Ring.TrackColor,
			FinishColor:    s.Ring.FinishColor,
			ErrorColor:     s.Ring.ErrorColor,
			HighlightColor: s.Ring.HighlightColor,
			StrokeWidth:    s.Ring.StrokeWidth,
			Gap:            s.Ring.RingGap,
			Opacity:        s.Ring.Opacity,
			Clockwise:      s.Ring.Clockwise,
			ShowTrack:      s.Ring.ShowTrack,
			SegmentCount:   s.Ring.SegmentCount,
			SegmentGapDeg:  s.Ring.SegmentGap,
		},
		Preview: animator.PreviewConfig{
			Debounce:           s.Timing.PreviewDebounce,
			Ramp:               s.Timing.PreviewRamp,
			GeometryDuration:   s.Timing.GeometryDuration,
			GeometryPersistent: s.Behavior.GeometryPersistent,
			Style:              style,
			Timing:             timing,
		},
	}
}
