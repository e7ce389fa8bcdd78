package notify

import (
	"context"

	"github.com/surge-downloader/halo/internal/engine/types"
	"github.com/surge-downloader/halo/internal/utils"
)

// Listener is the notification source interface: what a source calls for
// every posted or retracted notification.
type Listener interface {
	NotificationPosted(n Notification)
	NotificationRetracted(id types.Identity)
}

// Source delivers notifications to a Listener until ctx is done or the
// source is exhausted.
type Source interface {
	Run(ctx context.Context, l Listener) error
}

// Sink receives decoded events. Implemented by the overlay, which forwards
// them to the aggregator on its loop.
type Sink interface {
	Posted(id types.Identity, filename string, rawProgress, rawMax int64)
	Retracted(id types.Identity)
}

// Adapter decodes notifications for a Sink. Any failure inside decoding
// drops that single event.
type Adapter struct {
	sink Sink
}

// NewAdapter creates an Adapter feeding sink.
func NewAdapter(sink Sink) *Adapter {
	return &Adapter{sink: sink}
}

func (a *Adapter) NotificationPosted(n Notification) {
	defer utils.Recover("notify.NotificationPosted")

	if n.Package == "" {
		utils.Debug("notify: dropping notification without package (id %d)", n.ID)
		return
	}
	raw, rawMax := n.Progress()
	a.sink.Posted(n.Identity(), n.Filename(), raw, rawMax)
}

func (a *Adapter) NotificationRetracted(id types.Identity) {
	defer utils.Recover("notify.NotificationRetracted")

	if id.Package == "" {
		return
	}
	a.sink.Retracted(id)
}
