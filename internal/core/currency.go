package core

import (
	"fmt"
	"strconv"
	"strings"
)

// CurrencyFormat describes how a currency renders: a BCP 47 locale hint
// for clients and the symbol used in server-side formatting. This is a
// display lookup only; no conversion between currencies happens anywhere.
type CurrencyFormat struct {
	Locale string
	Symbol string
}

var currencyFormats = map[string]CurrencyFormat{
	"USD": {Locale: "en-US", Symbol: "$"},
	"EUR": {Locale: "de-DE", Symbol: "€"},
	"GBP": {Locale: "en-GB", Symbol: "£"},
	"JPY": {Locale: "ja-JP", Symbol: "¥"},
	"INR": {Locale: "en-IN", Symbol: "₹"},
	"CAD": {Locale: "en-CA", Symbol: "C$"},
	"AUD": {Locale: "en-AU", Symbol: "A$"},
	"CNY": {Locale: "zh-CN", Symbol: "¥"},
}

// LookupCurrency returns the display format for an ISO currency code.
// Unknown codes fall back to USD.
func LookupCurrency(code string) CurrencyFormat {
	if f, ok := currencyFormats[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return f
	}
	return currencyFormats["USD"]
}

// NormalizeCurrency upper-cases a known ISO code and falls back to USD
// for anything unrecognized.
func NormalizeCurrency(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if _, ok := currencyFormats[c]; ok {
		return c
	}
	return "USD"
}

// FormatMoney renders cents as a currency string, e.g. "$12.34" or
// "-€5.00" for EUR.
func FormatMoney(m Money, code string) string {
	f := LookupCurrency(code)
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-" + f.Symbol + s
	}
	return f.Symbol + s
}
