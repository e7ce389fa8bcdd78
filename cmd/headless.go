package cmd

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/muesli/termenv"

	"github.com/surge-downloader/halo/internal/animator"
	"github.com/surge-downloader/halo/internal/config"
	"github.com/surge-downloader/halo/internal/core"
	"github.com/surge-downloader/halo/internal/engine/loop"
	"github.com/surge-downloader/halo/internal/indicator"
	"github.com/surge-downloader/halo/internal/notify"
	"github.com/surge-downloader/halo/internal/ring"
	"github.com/surge-downloader/halo/internal/tui"
	"github.com/surge-downloader/halo/internal/utils"
)

const settlePoll = 20 * time.Millisecond

type headlessOptions struct {
	Frames bool // Print a line per rendered frame
	Canvas bool // Redraw the ring raster in place on every frame
	// Drain bounds how long to wait for the ring to settle after the
	// source ends.
	Drain time.Duration
	// WaitVisible keeps waiting until the ring has been shown at least once.
	WaitVisible bool
}

// runHeadless drives an overlay from src and prints its event stream to w
// until the source ends and the ring settles.
func runHeadless(ctx context.Context, w io.Writer, store *config.Store, src notify.Source, opts headlessOptions) error {
	canvas := ring.NewCanvas(tui.DefaultCanvasCols, tui.DefaultCanvasRows)
	l := loop.New()
	overlay := core.New(store, canvas, l)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := overlay.Run(ctx); err != nil && ctx.Err() == nil {
			utils.Debug("Overlay loop ended: %v", err)
		}
	}()

	stream, cleanup, err := overlay.StreamEvents(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	var seenVisible atomic.Bool
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		out := termenv.NewOutput(w)
		for msg := range stream {
			if fm, ok := msg.(core.FrameMsg); ok {
				if fm.Frame.Visible {
					seenVisible.Store(true)
				}
				if opts.Canvas {
					out.ClearScreen()
					out.MoveCursor(1, 1)
					fmt.Fprintln(w, canvas.String())
				}
			}
			if line, ok := formatEvent(msg, opts.Frames); ok {
				fmt.Fprintln(w, line)
			}
		}
	}()

	overlay.Attach()
	overlay.SetGeometry(tui.CanvasCutout(canvas, ring.ShapeCircle))
	// Round-trip the loop so trigger subscriptions exist before src fires
	if _, err := overlay.State(ctx); err != nil {
		_ = overlay.Shutdown()
		<-printed
		return err
	}

	runErr := src.Run(ctx, overlay)
	if runErr == nil {
		// The first round-trip drains queued input, the second the render it scheduled
		for i := 0; i < 2; i++ {
			if _, err := overlay.State(ctx); err != nil {
				break
			}
		}
		waitSettled(ctx, overlay, &seenVisible, opts)
	}

	_ = overlay.Shutdown()
	<-printed
	return runErr
}

// waitSettled blocks until the ring is idle and hidden, or Drain elapses.
func waitSettled(ctx context.Context, o *core.Overlay, seenVisible *atomic.Bool, opts headlessOptions) {
	deadline := time.NewTimer(opts.Drain)
	defer deadline.Stop()
	ticker := time.NewTicker(settlePoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			utils.Debug("Headless run did not settle within %s", opts.Drain)
			return
		case <-ticker.C:
			if opts.WaitVisible && !seenVisible.Load() {
				continue
			}
			if settled(o.Frame()) {
				return
			}
		}
	}
}

func settled(f indicator.Frame) bool {
	return !f.Visible && f.State == indicator.StateIdle && f.Preview == animator.PreviewNone && !f.Error
}

// triggerSource fires one trigger and ends.
type triggerSource struct {
	store   *config.Store
	trigger config.Trigger
}

func (s triggerSource) Run(ctx context.Context, _ notify.Listener) error {
	s.store.Fire(s.trigger)
	return ctx.Err()
}
