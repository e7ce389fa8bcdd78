// Package aggregator reconciles noisy per-notification progress updates into
// one aggregate progress signal.
//
// An Aggregator is not safe for concurrent use. Every method must be called
// from the overlay loop thread; listeners are invoked synchronously on it.
package aggregator

import (
	"time"

	"github.com/surge-downloader/halo/internal/engine/events"
	"github.com/surge-downloader/halo/internal/engine/loop"
	"github.com/surge-downloader/halo/internal/engine/types"
	"github.com/surge-downloader/halo/internal/utils"
)

// Listener receives aggregate signals.
type Listener interface {
	ProgressChanged(events.ProgressChangedMsg)
	ActiveCountChanged(events.ActiveCountChangedMsg)
	FilenameChanged(events.FilenameChangedMsg)
	DownloadComplete(events.DownloadCompleteMsg)
	DownloadCancelled(events.DownloadCancelledMsg)
}

// Aggregator owns the ProgressRecord store.
type Aggregator struct {
	clock   loop.Clock
	runtime *types.RuntimeConfig
	records map[types.Identity]*types.ProgressRecord

	listeners []*subscription
	nextSubID int
}

type subscription struct {
	id int
	l  Listener
}

// New creates an Aggregator. A nil runtime config uses the defaults.
func New(clock loop.Clock, runtime *types.RuntimeConfig) *Aggregator {
	if runtime == nil {
		runtime = types.DefaultRuntimeConfig()
	}
	return &Aggregator{
		clock:   clock,
		runtime: runtime,
		records: make(map[types.Identity]*types.ProgressRecord),
	}
}

// SetRuntime swaps the aggregator policy. Existing records are kept.
func (a *Aggregator) SetRuntime(runtime *types.RuntimeConfig) {
	if runtime == nil {
		runtime = types.DefaultRuntimeConfig()
	}
	a.runtime = runtime
}

// Subscribe registers l and returns a function that removes it.
func (a *Aggregator) Subscribe(l Listener) (unsubscribe func()) {
	a.nextSubID++
	id := a.nextSubID
	a.listeners = append(a.listeners, &subscription{id: id, l: l})
	return func() {
		for i, s := range a.listeners {
			if s.id == id {
				a.listeners = append(a.listeners[:i], a.listeners[i+1:]...)
				return
			}
		}
	}
}

// State returns the current aggregate.
func (a *Aggregator) State() types.AggregateState {
	return types.Aggregate(a.records)
}

// Records returns a copy of the store, for inspection only.
func (a *Aggregator) Records() []types.ProgressRecord {
	out := make([]types.ProgressRecord, 0, len(a.records))
	for _, r := range a.records {
		out = append(out, *r)
	}
	return out
}

// Posted ingests a notification update. rawProgress < 0 or rawMax <= 0 means
// the update carried no usable progress.
func (a *Aggregator) Posted(id types.Identity, filename string, rawProgress, rawMax int64) {
	if !a.runtime.Allows(id.Package) {
		return
	}

	percent, ok := types.Percent(rawProgress, rawMax)
	if !ok {
		a.postedWithoutProgress(id)
		return
	}

	now := a.clock.Now()
	evicted := a.sweepStale(id, now)

	rec, exists := a.records[id]
	isNew := !exists
	if exists && rec.Progress-percent >= a.runtime.GetDropThreshold() {
		// Same identity reused by an unrelated download
		utils.Debug("aggregator: %s dropped %d -> %d, treating as new download", id, rec.Progress, percent)
		if filename == "" {
			filename = rec.Filename
		}
		delete(a.records, id)
		isNew = true
	}

	changed := false
	if isNew {
		rec = &types.ProgressRecord{Identity: id, Filename: filename}
		rec.SetProgress(percent)
		a.records[id] = rec
		changed = true
	} else {
		changed = rec.SetProgress(percent)
		if filename != "" {
			rec.Filename = filename
		}
	}
	rec.LastUpdate = now

	state := a.State()
	if isNew || evicted > 0 {
		a.emitActiveCount(state.ActiveCount)
	}
	if changed || evicted > 0 {
		a.emitProgress(state.MeanProgress)
	}
	a.emitFilename(state.LeadingFilename)

	if rec.Progress == 100 {
		a.complete(rec, false)
	}
}

func (a *Aggregator) postedWithoutProgress(id types.Identity) {
	if a.runtime.Completion != types.PolicyImplicitComplete {
		return
	}
	rec, exists := a.records[id]
	if !exists {
		return
	}
	// Some sources replace the progress notification with a plain
	// "complete" one that reuses the id. Nothing reported 100 yet, so force it
	// the way a completed retraction does.
	a.complete(rec, true)
}

// complete removes rec and announces its completion. With forceFull a
// ProgressChanged(100) follows; otherwise the mean of the remaining records is
// re-emitted, since the last progress signal still counted rec.
func (a *Aggregator) complete(rec *types.ProgressRecord, forceFull bool) {
	delete(a.records, rec.Identity)
	state := a.State()
	a.emitActiveCount(state.ActiveCount)
	a.emit(func(l Listener) {
		l.DownloadComplete(events.DownloadCompleteMsg{Identity: rec.Identity, Filename: rec.Filename})
	})
	switch {
	case forceFull:
		a.emitProgress(100)
	case state.ActiveCount > 0:
		a.emitProgress(state.MeanProgress)
	}
	a.emitFilename(state.LeadingFilename)
}

// Retracted handles removal of a notification.
func (a *Aggregator) Retracted(id types.Identity) {
	rec, exists := a.records[id]
	if !exists {
		return
	}
	delete(a.records, id)
	state := a.State()

	switch {
	case rec.Progress >= a.runtime.GetCompleteFloor():
		a.emit(func(l Listener) {
			l.DownloadComplete(events.DownloadCompleteMsg{Identity: id, Filename: rec.Filename})
		})
		a.emitProgress(100)
	default:
		if rec.Progress >= a.runtime.CancelFloor {
			a.emit(func(l Listener) {
				l.DownloadCancelled(events.DownloadCancelledMsg{Identity: id, Filename: rec.Filename, Progress: rec.Progress})
			})
		} else {
			utils.Debug("aggregator: %s retracted at %d%%, below cancel floor", id, rec.Progress)
		}
		a.emitProgress(state.MeanProgress)
	}

	a.emitActiveCount(state.ActiveCount)
	a.emitFilename(state.LeadingFilename)
}

// Clear empties the store and announces the zero state.
func (a *Aggregator) Clear() {
	a.records = make(map[types.Identity]*types.ProgressRecord)
	a.emitActiveCount(0)
	a.emitProgress(0)
	a.emitFilename("")
}

// sweepStale evicts records of the same package that have not been touched
// within the staleness window. The updated identity itself is exempt.
func (a *Aggregator) sweepStale(updated types.Identity, now time.Time) (evicted int) {
	limit := a.runtime.GetStaleAfter()
	for id, r := range a.records {
		if id == updated || id.Package != updated.Package {
			continue
		}
		if now.Sub(r.LastUpdate) > limit {
			utils.Debug("aggregator: evicting stale %s (last update %s ago)", id, now.Sub(r.LastUpdate))
			delete(a.records, id)
			evicted++
		}
	}
	return evicted
}

func (a *Aggregator) emitProgress(p int) {
	a.emit(func(l Listener) { l.ProgressChanged(events.ProgressChangedMsg{Progress: p}) })
}

func (a *Aggregator) emitActiveCount(n int) {
	a.emit(func(l Listener) { l.ActiveCountChanged(events.ActiveCountChangedMsg{Count: n}) })
}

func (a *Aggregator) emitFilename(name string) {
	a.emit(func(l Listener) { l.FilenameChanged(events.FilenameChangedMsg{Filename: name}) })
}

// emit fans a signal out to a snapshot of the listeners so a listener may
// unsubscribe from inside its callback.
func (a *Aggregator) emit(fn func(Listener)) {
	subs := make([]*subscription, len(a.listeners))
	copy(subs, a.listeners)
	for _, s := range subs {
		a.deliver(s.l, fn)
	}
}

func (a *Aggregator) deliver(l Listener, fn func(Listener)) {
	defer utils.Recover("aggregator listener")
	fn(l)
}
