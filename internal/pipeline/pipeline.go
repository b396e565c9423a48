// Package pipeline coordinates the fetch cycle: it starts fetches through
// the store's in-flight bookkeeping, normalizes responses, and publishes
// results back. Errors are converted to safe defaults here, at the boundary,
// so the layers below stay testable.
package pipeline

import (
	"context"
	"log"
	"sync"
	"time"

	"PricePulse/internal/collector"
	"PricePulse/internal/model"
	"PricePulse/internal/normalizer"
	"PricePulse/internal/recorder"
	"PricePulse/internal/store"
)

// Pipeline drives the two fetch kinds for whichever currency is selected.
type Pipeline struct {
	Fetcher  collector.Fetcher
	Store    *store.PriceStore
	Recorder recorder.Recorder
	Days     int
	Ctx      context.Context

	wg sync.WaitGroup
}

// New creates a Pipeline. historyDays is the length of the daily series to
// request.
func New(ctx context.Context, fetcher collector.Fetcher, st *store.PriceStore, rec recorder.Recorder, historyDays int) *Pipeline {
	return &Pipeline{
		Fetcher:  fetcher,
		Store:    st,
		Recorder: rec,
		Days:     historyDays,
		Ctx:      ctx,
	}
}

// SelectCurrency handles a user currency change: it switches the store's
// selection and immediately refetches both kinds, without waiting for the
// next scheduled tick. A no-op when the currency is already selected.
// Fetches still in flight for the previous currency are discarded by the
// store when they complete.
func (p *Pipeline) SelectCurrency(currency model.CurrencyCode) {
	if !p.Store.SetSelectedCurrency(currency) {
		return
	}
	log.Printf("[INFO] currency selected: %s", currency.Upper())
	p.RefreshCurrent()
	p.RefreshHistory()
}

// RefreshCurrent starts a current-price fetch for the selected currency.
// Returns immediately; the result is published asynchronously. A no-op when
// a current-price fetch is already in flight for that currency.
func (p *Pipeline) RefreshCurrent() {
	ticket, ok := p.Store.BeginFetch(model.FetchCurrent)
	if !ok {
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		price, err := p.Fetcher.FetchCurrentPrice(p.Ctx, ticket.Currency)
		if err != nil {
			log.Printf("[WARN] current price fetch (%s): %v", ticket.Currency, err)
			price = 0
		}
		snap := model.CurrentPriceSnapshot{
			Price:      price,
			ObservedAt: time.Now().Format(model.TimestampLayout),
		}
		if !p.Store.CompleteCurrent(ticket, snap, err) {
			log.Printf("[INFO] discarded stale current price for %s", ticket.Currency)
			return
		}
		p.recordTick(ticket.Currency, snap, err)
	}()
}

// RefreshHistory starts a historical-series fetch for the selected currency.
// Same contract as RefreshCurrent.
func (p *Pipeline) RefreshHistory() {
	ticket, ok := p.Store.BeginFetch(model.FetchHistory)
	if !ok {
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		raw, err := p.Fetcher.FetchHistoricalSeries(p.Ctx, ticket.Currency, p.Days)
		series := model.HistoricalSeries{}
		if err != nil {
			log.Printf("[WARN] historical series fetch (%s): %v", ticket.Currency, err)
		} else {
			series = normalizer.Normalize(raw, time.Now())
		}
		if !p.Store.CompleteHistory(ticket, series, err) {
			log.Printf("[INFO] discarded stale history for %s", ticket.Currency)
			return
		}
		p.recordHistory(ticket.Currency, series, err)
	}()
}

// Wait blocks until all in-flight fetch goroutines have finished. Used
// during shutdown after the pipeline context is cancelled.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

func (p *Pipeline) recordTick(currency model.CurrencyCode, snap model.CurrentPriceSnapshot, fetchErr error) {
	tick := &recorder.PriceTick{
		Currency:   string(currency),
		Price:      snap.Price,
		ObservedAt: snap.ObservedAt,
	}
	if fetchErr != nil {
		tick.FetchError = fetchErr.Error()
	}
	if err := p.Recorder.RecordTick(tick); err != nil {
		log.Printf("[ERROR] record price tick: %v", err)
	}
}

func (p *Pipeline) recordHistory(currency model.CurrencyCode, series model.HistoricalSeries, fetchErr error) {
	evt := &recorder.HistoryRefresh{
		Currency: string(currency),
		Points:   len(series),
	}
	if len(series) > 0 {
		sorted := series.SortedByDateDesc()
		evt.NewestDate = sorted[0].Date
		evt.OldestDate = sorted[len(sorted)-1].Date
	}
	if fetchErr != nil {
		evt.FetchError = fetchErr.Error()
	}
	if err := p.Recorder.RecordHistoryRefresh(evt); err != nil {
		log.Printf("[ERROR] record history refresh: %v", err)
	}
}
