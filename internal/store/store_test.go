package store

import (
	"errors"
	"testing"

	"PricePulse/internal/model"
)

func TestSetSelectedCurrency_ResetsState(t *testing.T) {
	for _, currency := range model.Currencies {
		s := New(model.DefaultCurrency())
		ticket, _ := s.BeginFetch(model.FetchCurrent)
		s.CompleteCurrent(ticket, model.CurrentPriceSnapshot{Price: 123}, nil)

		changed := s.SetSelectedCurrency(currency)
		if currency == model.DefaultCurrency() {
			if changed {
				t.Errorf("%s: selecting the selected currency must be a no-op", currency)
			}
			continue
		}
		if !changed {
			t.Errorf("%s: expected selection change", currency)
		}

		view := s.Snapshot()
		if view.SelectedCurrency != currency {
			t.Errorf("expected %s selected, got %s", currency, view.SelectedCurrency)
		}
		if view.Current != nil {
			t.Errorf("%s: expected cleared snapshot, got %+v", currency, view.Current)
		}
		if len(view.History) != 0 {
			t.Errorf("%s: expected cleared history, got %d points", currency, len(view.History))
		}
	}
}

func TestBeginFetch_Idempotent(t *testing.T) {
	s := New(model.EUR)

	ticket, ok := s.BeginFetch(model.FetchHistory)
	if !ok || ticket.Currency != model.EUR {
		t.Fatalf("first begin: got %s, ok=%v", ticket.Currency, ok)
	}
	if _, ok := s.BeginFetch(model.FetchHistory); ok {
		t.Error("second begin without completion must report false")
	}
	if !s.Snapshot().InFlight[model.FetchHistory] {
		t.Error("expected history marked in-flight")
	}

	// The other kind is independent.
	if _, ok := s.BeginFetch(model.FetchCurrent); !ok {
		t.Error("current-kind begin must not be blocked by history")
	}
}

func TestCompleteHistory_StaleResultDiscarded(t *testing.T) {
	s := New(model.EUR)
	ticket, _ := s.BeginFetch(model.FetchHistory)

	s.SetSelectedCurrency(model.USD)

	applied := s.CompleteHistory(ticket, model.HistoricalSeries{{Date: "01-01-2024", Price: "1.00"}}, nil)
	if applied {
		t.Error("completion for an abandoned currency must be discarded")
	}
	view := s.Snapshot()
	if len(view.History) != 0 {
		t.Errorf("stale series leaked into state: %d points", len(view.History))
	}
	if view.SelectedCurrency != model.USD {
		t.Errorf("expected usd selected, got %s", view.SelectedCurrency)
	}

	// The discarded completion must not block a fetch for the new currency.
	if _, ok := s.BeginFetch(model.FetchHistory); !ok {
		t.Error("expected begin to succeed for the new currency")
	}
}

func TestCompleteCurrent_SupersededTicketDiscarded(t *testing.T) {
	// Reselecting the first currency while its fetch is still running must
	// not let that older fetch clear the newer fetch's slot or publish over
	// its result.
	s := New(model.EUR)
	first, _ := s.BeginFetch(model.FetchCurrent) // eur, still running

	s.SetSelectedCurrency(model.USD)
	if _, ok := s.BeginFetch(model.FetchCurrent); !ok {
		t.Fatal("expected begin for usd to supersede the eur fetch")
	}
	s.SetSelectedCurrency(model.EUR)
	third, ok := s.BeginFetch(model.FetchCurrent)
	if !ok {
		t.Fatal("expected begin for the reselected eur to supersede the usd fetch")
	}

	if s.CompleteCurrent(first, model.CurrentPriceSnapshot{Price: 1}, nil) {
		t.Error("superseded eur completion must be discarded despite matching currency")
	}
	view := s.Snapshot()
	if view.Current != nil {
		t.Errorf("superseded result leaked into state: %+v", view.Current)
	}
	if !view.InFlight[model.FetchCurrent] {
		t.Error("slot must still show the outstanding fetch after the superseded completion")
	}
	if _, ok := s.BeginFetch(model.FetchCurrent); ok {
		t.Error("duplicate fetch began while the superseding one is outstanding")
	}

	// The fetch that owns the slot still publishes.
	if !s.CompleteCurrent(third, model.CurrentPriceSnapshot{Price: 2}, nil) {
		t.Fatal("owning completion must apply")
	}
	view = s.Snapshot()
	if view.Current == nil || view.Current.Price != 2 {
		t.Errorf("expected the owning fetch's result, got %+v", view.Current)
	}
	if view.InFlight[model.FetchCurrent] {
		t.Error("expected in-flight cleared after the owning completion")
	}
}

func TestBeginFetch_ReselectionWithoutNewFetchKeepsOwner(t *testing.T) {
	// eur -> usd -> eur with no begin in between: the original eur fetch
	// still owns the slot, so no duplicate starts and its result (for the
	// right currency) is published.
	s := New(model.EUR)
	first, _ := s.BeginFetch(model.FetchCurrent)

	s.SetSelectedCurrency(model.USD)
	s.SetSelectedCurrency(model.EUR)

	if _, ok := s.BeginFetch(model.FetchCurrent); ok {
		t.Error("begin must report false while the eur fetch is still outstanding")
	}
	if !s.CompleteCurrent(first, model.CurrentPriceSnapshot{Price: 3}, nil) {
		t.Fatal("outstanding eur fetch must still apply under eur")
	}
	if view := s.Snapshot(); view.Current == nil || view.Current.Price != 3 {
		t.Errorf("expected published snapshot, got %+v", view.Current)
	}
}

func TestCompleteCurrent_AppliesAndClearsInFlight(t *testing.T) {
	s := New(model.EUR)
	ticket, _ := s.BeginFetch(model.FetchCurrent)

	snap := model.CurrentPriceSnapshot{Price: 42000.5, ObservedAt: "15-01-2024 14:30"}
	if !s.CompleteCurrent(ticket, snap, nil) {
		t.Fatal("expected completion to apply")
	}

	view := s.Snapshot()
	if view.Current == nil || view.Current.Price != 42000.5 {
		t.Fatalf("expected published snapshot, got %+v", view.Current)
	}
	if view.InFlight[model.FetchCurrent] {
		t.Error("expected in-flight cleared after completion")
	}
	if len(view.LastErrors) != 0 {
		t.Errorf("unexpected error markers: %v", view.LastErrors)
	}
}

func TestCompleteCurrent_FailureKeepsErrorMarker(t *testing.T) {
	s := New(model.EUR)
	ticket, _ := s.BeginFetch(model.FetchCurrent)

	snap := model.CurrentPriceSnapshot{Price: 0, ObservedAt: "15-01-2024 14:30"}
	s.CompleteCurrent(ticket, snap, errors.New("status 429"))

	view := s.Snapshot()
	if view.Current == nil || view.Current.Price != 0 {
		t.Fatalf("expected fail-soft zero snapshot, got %+v", view.Current)
	}
	if view.LastErrors[model.FetchCurrent] != "status 429" {
		t.Errorf("expected error marker, got %v", view.LastErrors)
	}

	// A later success clears the marker.
	ticket, _ = s.BeginFetch(model.FetchCurrent)
	s.CompleteCurrent(ticket, model.CurrentPriceSnapshot{Price: 10}, nil)
	if msgs := s.Snapshot().LastErrors; len(msgs) != 0 {
		t.Errorf("expected marker cleared on success, got %v", msgs)
	}
}

func TestObservers_NotifiedPerCommit(t *testing.T) {
	s := New(model.EUR)
	var views []model.PipelineView
	s.Subscribe(func(v model.PipelineView) { views = append(views, v) })

	ticket, _ := s.BeginFetch(model.FetchCurrent)                        // commit 1
	s.CompleteCurrent(ticket, model.CurrentPriceSnapshot{Price: 5}, nil) // commit 2
	s.SetSelectedCurrency(model.EUR)                                     // no-op, no commit
	s.SetSelectedCurrency(model.JPY)                                     // commit 3

	if len(views) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(views))
	}
	if !views[0].InFlight[model.FetchCurrent] {
		t.Error("first view should show the fetch in flight")
	}
	if views[1].Current == nil || views[1].Current.Price != 5 {
		t.Error("second view should carry the published snapshot")
	}
	if views[2].SelectedCurrency != model.JPY || views[2].Current != nil {
		t.Error("third view should show the cleared state under jpy")
	}
}

func TestSnapshot_ReturnsIndependentCopy(t *testing.T) {
	s := New(model.EUR)
	ticket, _ := s.BeginFetch(model.FetchHistory)
	s.CompleteHistory(ticket, model.HistoricalSeries{{Date: "01-01-2024", Price: "1.00"}}, nil)

	view := s.Snapshot()
	view.History[0].Price = "tampered"
	view.InFlight[model.FetchCurrent] = true
	if view.Current != nil {
		view.Current.Price = -1
	}

	fresh := s.Snapshot()
	if fresh.History[0].Price != "1.00" {
		t.Error("mutating a snapshot must not affect store state")
	}
	if fresh.InFlight[model.FetchCurrent] {
		t.Error("mutating a snapshot's in-flight map must not affect store state")
	}
}
