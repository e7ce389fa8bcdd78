package core

import (
	"context"

	"github.com/surge-downloader/halo/internal/config"
	"github.com/surge-downloader/halo/internal/indicator"
	"github.com/surge-downloader/halo/internal/notify"
	"github.com/surge-downloader/halo/internal/ring"
)

// OverlayService defines what a host drives the overlay through. Every
// method is safe to call from any goroutine.
type OverlayService interface {
	// NotificationPosted and NotificationRetracted feed the notification
	// stream into the overlay.
	notify.Listener

	// Fire delivers an ephemeral trigger (preview, error, test progress).
	Fire(t config.Trigger)

	// SetGeometry reports the cutout geometry. Call again whenever it changes.
	SetGeometry(c ring.Cutout)

	// Frame returns the last rendered snapshot.
	Frame() indicator.Frame

	// StreamEvents returns a channel that receives aggregate events and
	// rendered frames, and a cleanup func that unregisters it.
	StreamEvents(ctx context.Context) (<-chan interface{}, func(), error)

	// Shutdown detaches the overlay and stops the broadcaster.
	Shutdown() error
}

var _ OverlayService = (*Overlay)(nil)
