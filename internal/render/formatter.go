// Package render formats published pipeline state for the console, the
// stand-in presentation layer.
package render

import (
	"fmt"
	"strings"

	"PricePulse/internal/model"
)

// FormatSnapshot renders a published view: selection header, current price
// with its observation time, then the historical series most-recent-first.
func FormatSnapshot(view model.PipelineView) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Currency: %s\n", view.SelectedCurrency.Upper()))

	if view.Current == nil {
		line := "Current Price: --"
		if view.InFlight[model.FetchCurrent] {
			line += " (fetching)"
		}
		b.WriteString(line + "\n")
	} else {
		b.WriteString(fmt.Sprintf("Current Price: %s %v\n", view.SelectedCurrency.Upper(), view.Current.Price))
		b.WriteString(fmt.Sprintf("Last Updated: %s\n", view.Current.ObservedAt))
	}
	if msg, ok := view.LastErrors[model.FetchCurrent]; ok {
		b.WriteString(fmt.Sprintf("  (stale: %s)\n", msg))
	}

	for _, point := range view.History.SortedByDateDesc() {
		b.WriteString(fmt.Sprintf("  %s %s  %s\n", view.SelectedCurrency.Upper(), point.Price, point.Date))
	}
	if msg, ok := view.LastErrors[model.FetchHistory]; ok {
		b.WriteString(fmt.Sprintf("  (history stale: %s)\n", msg))
	}

	return b.String()
}
