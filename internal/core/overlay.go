// Package core wires the overlay together: one context object owns the loop,
// the aggregator, the coordinator and every collaborator subscription for the
// lifetime of a single attachment.
package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/surge-downloader/halo/internal/config"
	"github.com/surge-downloader/halo/internal/engine/aggregator"
	"github.com/surge-downloader/halo/internal/engine/events"
	"github.com/surge-downloader/halo/internal/engine/loop"
	"github.com/surge-downloader/halo/internal/engine/types"
	"github.com/surge-downloader/halo/internal/indicator"
	"github.com/surge-downloader/halo/internal/notify"
	"github.com/surge-downloader/halo/internal/ring"
	"github.com/surge-downloader/halo/internal/utils"
)

// ErrShutdown is returned by calls made after Shutdown.
var ErrShutdown = errors.New("overlay is shut down")

const shutdownTimeout = time.Second

// FrameMsg is broadcast after every render.
type FrameMsg struct {
	Frame indicator.Frame
}

// TriggerMsg is broadcast for every trigger the overlay handled.
type TriggerMsg struct {
	Trigger config.Trigger
}

// Overlay is the explicit context object of one overlay attachment.
type Overlay struct {
	sched   loop.Scheduler
	store   *config.Store
	surface ring.Surface

	// Loop-owned
	agg           *aggregator.Aggregator
	coord         *indicator.Coordinator
	adapter       *notify.Adapter
	renderPending bool
	attached      bool
	unsubs        []func()

	frame atomic.Pointer[indicator.Frame]

	// Broadcast fields
	InputCh    chan interface{}
	listeners  []chan interface{}
	listenerMu sync.Mutex

	// Lifecycle
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once
}

// New creates an overlay drawing onto surface, running on sched and reading
// settings from store. Call Attach to start it.
func New(store *config.Store, surface ring.Surface, sched loop.Scheduler) *Overlay {
	if store == nil {
		store = config.NewStore(nil)
	}
	settings := store.Settings()

	o := &Overlay{
		sched:   sched,
		store:   store,
		surface: surface,
		InputCh: make(chan interface{}, types.EventChannelBuffer),
	}
	o.agg = aggregator.New(sched, settings.ToRuntimeConfig())
	o.coord = indicator.New(sched, settings.ToIndicatorConfig())
	o.adapter = notify.NewAdapter(o.agg)

	o.ctx, o.cancel = context.WithCancel(context.Background())
	go o.broadcastLoop()
	return o
}

// Attach subscribes to the aggregator and the config store and binds the
// coordinator to the surface.
func (o *Overlay) Attach() {
	o.post(func() {
		if o.attached {
			return
		}
		o.attached = true
		o.unsubs = append(o.unsubs,
			o.agg.Subscribe(o.coord),
			o.agg.Subscribe(eventRelay{o}),
			o.store.OnChange(func(key string) { o.post(func() { o.applySettings(key) }) }),
			o.store.OnTrigger(func(t config.Trigger) { o.post(func() { o.handleTrigger(t) }) }),
		)
		o.coord.Attach(renderSurface{Surface: o.surface, o: o})
		utils.Debug("overlay: attached")
	})
}

// Detach cancels every timer and subscription. The overlay can be attached
// again afterwards.
func (o *Overlay) Detach() {
	o.post(o.detach)
}

func (o *Overlay) detach() {
	if !o.attached {
		return
	}
	o.attached = false
	for _, unsub := range o.unsubs {
		unsub()
	}
	o.unsubs = nil
	o.coord.Detach()
	o.renderPending = false
	utils.Debug("overlay: detached")
}

// Run drives the scheduler when it is a real Loop. It returns when ctx is
// done or the overlay is shut down.
func (o *Overlay) Run(ctx context.Context) error {
	if l, ok := o.sched.(*loop.Loop); ok {
		return l.Run(ctx)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-o.ctx.Done():
		return nil
	}
}

func (o *Overlay) post(fn func()) {
	if !o.sched.Post(fn) {
		utils.Debug("overlay: dropped work after shutdown")
	}
}

func (o *Overlay) NotificationPosted(n notify.Notification) {
	o.post(func() {
		if o.attached {
			o.adapter.NotificationPosted(n)
		}
	})
}

func (o *Overlay) NotificationRetracted(id types.Identity) {
	o.post(func() {
		if o.attached {
			o.adapter.NotificationRetracted(id)
		}
	})
}

// Fire delivers t through the config store so every trigger subscriber sees it.
func (o *Overlay) Fire(t config.Trigger) {
	o.store.Fire(t)
}

func (o *Overlay) SetGeometry(c ring.Cutout) {
	o.post(func() { o.coord.SetGeometry(c) })
}

// Frame returns the last rendered snapshot.
func (o *Overlay) Frame() indicator.Frame {
	if f := o.frame.Load(); f != nil {
		return *f
	}
	return indicator.Frame{}
}

// State returns the aggregate on the loop thread and waits for it.
func (o *Overlay) State(ctx context.Context) (types.AggregateState, error) {
	result := make(chan types.AggregateState, 1)
	if !o.sched.Post(func() { result <- o.agg.State() }) {
		return types.AggregateState{}, ErrShutdown
	}
	select {
	case s := <-result:
		return s, nil
	case <-ctx.Done():
		return types.AggregateState{}, ctx.Err()
	}
}

func (o *Overlay) applySettings(key string) {
	s := o.store.Settings()
	o.agg.SetRuntime(s.ToRuntimeConfig())
	o.coord.ApplySettings(s.ToIndicatorConfig())
	utils.Debug("overlay: applied %s", key)
}

func (o *Overlay) handleTrigger(t config.Trigger) {
	if !o.attached {
		return
	}
	switch t.Kind {
	case config.TriggerPreviewDynamic:
		o.coord.TriggerDynamicPreview()
	case config.TriggerPreviewGeometry:
		o.coord.TriggerGeometryPreview()
	case config.TriggerCancelGeometry:
		o.coord.CancelGeometryPreview()
	case config.TriggerProgress:
		o.coord.SetProgress(t.Value)
	case config.TriggerError:
		if !o.coord.TriggerError() {
			utils.Debug("overlay: error flash refused in state %s", o.coord.State())
		}
	case config.TriggerClear:
		o.agg.Clear()
	default:
		utils.Debug("overlay: unknown trigger %q", t.Kind)
		return
	}
	o.publish(TriggerMsg{Trigger: t})
}

// scheduleRender coalesces invalidations into one render per loop turn.
func (o *Overlay) scheduleRender() {
	if o.renderPending {
		return
	}
	o.renderPending = true
	o.post(o.render)
}

func (o *Overlay) render() {
	if !o.renderPending {
		return
	}
	o.renderPending = false
	o.coord.Draw(o.surface)
	f := o.coord.Frame()
	o.frame.Store(&f)
	o.surface.Invalidate()
	o.publish(FrameMsg{Frame: f})
}

// renderSurface routes the coordinator's invalidations through the overlay
// so drawing always happens on the loop.
type renderSurface struct {
	ring.Surface
	o *Overlay
}

func (r renderSurface) Invalidate() { r.o.scheduleRender() }

// eventRelay republishes aggregator signals on the broadcast channel.
type eventRelay struct{ o *Overlay }

func (r eventRelay) ProgressChanged(m events.ProgressChangedMsg)       { r.o.publish(m) }
func (r eventRelay) ActiveCountChanged(m events.ActiveCountChangedMsg) { r.o.publish(m) }
func (r eventRelay) FilenameChanged(m events.FilenameChangedMsg)       { r.o.publish(m) }
func (r eventRelay) DownloadComplete(m events.DownloadCompleteMsg)     { r.o.publish(m) }
func (r eventRelay) DownloadCancelled(m events.DownloadCancelledMsg)   { r.o.publish(m) }

func (o *Overlay) publish(msg interface{}) {
	select {
	case <-o.ctx.Done():
		return
	default:
	}
	// Non-blocking: a slow host must never stall the loop
	select {
	case o.InputCh <- msg:
	default:
	}
}

func (o *Overlay) broadcastLoop() {
	for {
		select {
		case <-o.ctx.Done():
			o.listenerMu.Lock()
			for _, ch := range o.listeners {
				close(ch)
			}
			o.listeners = nil
			o.listenerMu.Unlock()
			return
		case msg := <-o.InputCh:
			o.listenerMu.Lock()
			for _, ch := range o.listeners {
				// Non-blocking send to avoid stalling if a client is slow
				select {
				case ch <- msg:
				default:
				}
			}
			o.listenerMu.Unlock()
		}
	}
}

// StreamEvents returns a channel that receives real-time overlay events.
func (o *Overlay) StreamEvents(ctx context.Context) (<-chan interface{}, func(), error) {
	select {
	case <-o.ctx.Done():
		return nil, func() {}, ErrShutdown
	default:
	}

	ch := make(chan interface{}, types.EventChannelBuffer)
	o.listenerMu.Lock()
	o.listeners = append(o.listeners, ch)
	o.listenerMu.Unlock()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			o.listenerMu.Lock()
			defer o.listenerMu.Unlock()
			for i, listener := range o.listeners {
				if listener == ch {
					o.listeners = append(o.listeners[:i], o.listeners[i+1:]...)
					close(ch)
					break
				}
			}
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cleanup()
		case <-o.ctx.Done():
		}
	}()

	return ch, cleanup, nil
}

// Shutdown detaches the overlay, stops the scheduler when it owns a real
// Loop, and closes every event stream. It is idempotent.
func (o *Overlay) Shutdown() error {
	o.shutdownOnce.Do(func() {
		if l, ok := o.sched.(*loop.Loop); ok {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			if err := l.Sync(ctx, o.detach); err != nil {
				utils.Debug("overlay: detach on shutdown: %v", err)
			}
			cancel()
			l.Stop()
		} else {
			o.post(o.detach)
		}
		o.cancel()
	})
	return nil
}
