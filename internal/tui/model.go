package tui

import (
	"context"
	"math"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/surge-downloader/halo/internal/config"
	"github.com/surge-downloader/halo/internal/core"
	"github.com/surge-downloader/halo/internal/indicator"
	"github.com/surge-downloader/halo/internal/ring"
)

const (
	// DefaultCanvasCols and DefaultCanvasRows size the ring preview.
	DefaultCanvasCols = 28
	DefaultCanvasRows = 12

	historyLen       = 60
	maxLogRows       = 6
	ProgressBarWidth = 32
)

type RootModel struct {
	Service core.OverlayService
	canvas  *ring.Canvas
	events  <-chan interface{}
	cleanup func()

	frame      indicator.Frame
	progress   progress.Model
	help       help.Model
	keys       DashboardKeyMap
	history    []float64
	logEntries []string
	completed  int
	cancelled  int
	status     string

	width  int
	height int
}

// NewRootModel subscribes to svc's event stream. canvas is the surface the
// overlay draws into; the model only reads it.
func NewRootModel(svc core.OverlayService, canvas *ring.Canvas) (RootModel, error) {
	ch, cleanup, err := svc.StreamEvents(context.Background())
	if err != nil {
		return RootModel{}, err
	}
	bar := progress.New(
		progress.WithGradient(ProgressStart.Dark, ProgressEnd.Dark),
		progress.WithWidth(ProgressBarWidth),
	)
	return RootModel{
		Service:  svc,
		canvas:   canvas,
		events:   ch,
		cleanup:  cleanup,
		progress: bar,
		help:     help.New(),
		keys:     Keys,
		history:  make([]float64, historyLen),
	}, nil
}

func (m RootModel) Init() tea.Cmd {
	return tea.Batch(listenForActivity(m.events), historyTick())
}

// CanvasCutout places a cutout in the middle of canvas leaving room for the
// ring gap and stroke.
func CanvasCutout(canvas *ring.Canvas, shape ring.CutoutShape) ring.Cutout {
	b := canvas.Bounds()
	side := math.Min(b.Width(), b.Height()) * 0.5
	w := side
	if shape == ring.ShapePill {
		w = math.Min(b.Width()*0.6, side*2)
	}
	c := b.Center()
	return ring.Cutout{
		Bounds: ring.Rect{Left: c.X - w/2, Top: c.Y - side/2, Right: c.X + w/2, Bottom: c.Y + side/2},
		Shape:  shape,
	}
}

// ApplyTheme switches lipgloss between the light and dark palettes.
func ApplyTheme(theme int) {
	switch theme {
	case config.ThemeLight:
		lipgloss.SetHasDarkBackground(false)
	case config.ThemeDark:
		lipgloss.SetHasDarkBackground(true)
	default:
		lipgloss.SetHasDarkBackground(termenv.HasDarkBackground())
	}
}
