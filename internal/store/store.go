// Package store owns the tracker's single mutable state: the selected
// currency, the latest price snapshot, the historical series, and the
// in-flight bookkeeping for the two fetch kinds.
package store

import (
	"sync"

	"PricePulse/internal/model"
)

// Observer is notified with a read-only view after every committed mutation.
type Observer func(model.PipelineView)

// Ticket identifies one begun fetch. The completion call must present the
// ticket it was issued; a ticket whose fetch has been superseded by a later
// one of the same kind no longer owns the slot and its result is discarded.
type Ticket struct {
	Kind     model.FetchKind
	Currency model.CurrencyCode
	gen      uint64
}

// inFlightEntry records which fetch currently owns a kind's slot.
type inFlightEntry struct {
	currency model.CurrencyCode
	gen      uint64
}

// PriceStore serializes all state mutation behind one mutex. The scheduler
// and the selection controller write through it; the presentation layer and
// the recorder read from it via Snapshot or Subscribe.
type PriceStore struct {
	mu        sync.Mutex
	selected  model.CurrencyCode
	current   *model.CurrentPriceSnapshot
	history   model.HistoricalSeries
	inFlight  map[model.FetchKind]inFlightEntry
	lastErrs  map[model.FetchKind]string
	nextGen   uint64
	observers []Observer
}

// New creates a store with the given startup currency, no snapshot, and an
// empty history.
func New(defaultCurrency model.CurrencyCode) *PriceStore {
	return &PriceStore{
		selected: defaultCurrency,
		history:  model.HistoricalSeries{},
		inFlight: make(map[model.FetchKind]inFlightEntry),
		lastErrs: make(map[model.FetchKind]string),
	}
}

// Subscribe registers an observer. Observers are invoked outside the store's
// lock, in registration order, with an independent copy of the state.
func (s *PriceStore) Subscribe(obs Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, obs)
}

// Snapshot returns a read-only copy of the current state.
func (s *PriceStore) Snapshot() model.PipelineView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// BeginFetch marks the given kind in-flight for the currently selected
// currency and issues a ticket for it. When the kind is already in flight
// for the same currency it reports false and the caller must not start
// another fetch: at most one fetch per kind may be active. A fetch begun
// for a previously selected currency is superseded instead; its eventual
// completion no longer owns the slot.
func (s *PriceStore) BeginFetch(kind model.FetchKind) (Ticket, bool) {
	s.mu.Lock()
	if e, active := s.inFlight[kind]; active && e.currency == s.selected {
		s.mu.Unlock()
		return Ticket{}, false
	}
	s.nextGen++
	ticket := Ticket{Kind: kind, Currency: s.selected, gen: s.nextGen}
	s.inFlight[kind] = inFlightEntry{currency: s.selected, gen: s.nextGen}
	view, obs := s.commitLocked()
	s.mu.Unlock()
	notify(view, obs)
	return ticket, true
}

// CompleteCurrent publishes a finished current-price fetch. The result is
// discarded when the ticket has been superseded by a later fetch of the
// same kind, or when the selection has moved to another currency since the
// fetch began: a fetch started for currency X must never write state
// labelled Y, and an older fetch must never overwrite a newer one's result.
// Reports whether the result was applied.
func (s *PriceStore) CompleteCurrent(ticket Ticket, snap model.CurrentPriceSnapshot, fetchErr error) bool {
	s.mu.Lock()
	if !s.settleLocked(model.FetchCurrent, ticket) {
		s.mu.Unlock()
		return false
	}
	s.current = &snap
	s.setErrLocked(model.FetchCurrent, fetchErr)
	view, obs := s.commitLocked()
	s.mu.Unlock()
	notify(view, obs)
	return true
}

// CompleteHistory publishes a finished historical-series fetch, subject to
// the same supersession and staleness discards as CompleteCurrent.
func (s *PriceStore) CompleteHistory(ticket Ticket, series model.HistoricalSeries, fetchErr error) bool {
	s.mu.Lock()
	if !s.settleLocked(model.FetchHistory, ticket) {
		s.mu.Unlock()
		return false
	}
	if series == nil {
		series = model.HistoricalSeries{}
	}
	s.history = series
	s.setErrLocked(model.FetchHistory, fetchErr)
	view, obs := s.commitLocked()
	s.mu.Unlock()
	notify(view, obs)
	return true
}

// settleLocked resolves a completion against the kind's slot. Only the
// ticket holding the slot may clear it; a superseded ticket leaves the
// outstanding fetch's bookkeeping intact. Reports whether the result may be
// applied.
func (s *PriceStore) settleLocked(kind model.FetchKind, ticket Ticket) bool {
	e, active := s.inFlight[kind]
	owns := active && e.gen == ticket.gen
	if owns {
		delete(s.inFlight, kind)
	}
	return owns && ticket.Currency == s.selected
}

// SetSelectedCurrency switches the selection. A no-op when the currency is
// unchanged. Otherwise the snapshot and history are cleared so stale data is
// never shown under the new currency's label. Reports whether the selection
// changed.
func (s *PriceStore) SetSelectedCurrency(currency model.CurrencyCode) bool {
	s.mu.Lock()
	if currency == s.selected {
		s.mu.Unlock()
		return false
	}
	s.selected = currency
	s.current = nil
	s.history = model.HistoricalSeries{}
	s.lastErrs = make(map[model.FetchKind]string)
	view, obs := s.commitLocked()
	s.mu.Unlock()
	notify(view, obs)
	return true
}

func (s *PriceStore) setErrLocked(kind model.FetchKind, fetchErr error) {
	if fetchErr != nil {
		s.lastErrs[kind] = fetchErr.Error()
	} else {
		delete(s.lastErrs, kind)
	}
}

func (s *PriceStore) viewLocked() model.PipelineView {
	view := model.PipelineView{
		SelectedCurrency: s.selected,
		History:          make(model.HistoricalSeries, len(s.history)),
		InFlight:         make(map[model.FetchKind]bool, len(s.inFlight)),
		LastErrors:       make(map[model.FetchKind]string, len(s.lastErrs)),
	}
	copy(view.History, s.history)
	if s.current != nil {
		snap := *s.current
		view.Current = &snap
	}
	for kind := range s.inFlight {
		view.InFlight[kind] = true
	}
	for kind, msg := range s.lastErrs {
		view.LastErrors[kind] = msg
	}
	return view
}

func (s *PriceStore) commitLocked() (model.PipelineView, []Observer) {
	obs := make([]Observer, len(s.observers))
	copy(obs, s.observers)
	return s.viewLocked(), obs
}

func notify(view model.PipelineView, observers []Observer) {
	for _, obs := range observers {
		obs(view)
	}
}
