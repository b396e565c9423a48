package model

import "strings"

// CurrencyCode identifies a reference currency for price quotes.
type CurrencyCode string

const (
	EUR CurrencyCode = "eur"
	USD CurrencyCode = "usd"
	GBP CurrencyCode = "gbp"
	JPY CurrencyCode = "jpy"
	CAD CurrencyCode = "cad"
	AUD CurrencyCode = "aud"
)

// Currencies is the fixed set of supported reference currencies.
// Index 0 is the default selection at startup.
var Currencies = []CurrencyCode{EUR, USD, GBP, JPY, CAD, AUD}

// DefaultCurrency returns the startup selection.
func DefaultCurrency() CurrencyCode { return Currencies[0] }

// ParseCurrency maps user input to a supported currency code.
// Selection never accepts free-form strings.
func ParseCurrency(s string) (CurrencyCode, bool) {
	c := CurrencyCode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Currencies {
		if c == known {
			return known, true
		}
	}
	return "", false
}

// Upper returns the display form of the code (e.g. "EUR").
func (c CurrencyCode) Upper() string { return strings.ToUpper(string(c)) }
