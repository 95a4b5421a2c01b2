// Package currency converts and formats the monetary amounts shown on
// listings. Rates are quoted as units of a currency per one US dollar.
package currency

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrRateNotFound    = errors.New("exchange rate not found")
	ErrInvalidRate     = errors.New("exchange rate must be positive")
)

// Code is an ISO 4217 currency code.
type Code string

const (
	GYD Code = "GYD"
	JMD Code = "JMD"
	USD Code = "USD"
)

type meta struct {
	symbol string
	places int32
}

var supported = map[Code]meta{
	GYD: {symbol: "G$", places: 2},
	JMD: {symbol: "J$", places: 2},
	USD: {symbol: "US$", places: 2},
}

// ParseCode normalises s and checks it is a supported currency.
func ParseCode(s string) (Code, error) {
	c := Code(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := supported[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, s)
	}
	return c, nil
}

// Symbol returns the display prefix, e.g. "G$".
func (c Code) Symbol() string {
	return supported[c].symbol
}

// Places returns the number of decimal places amounts are shown with.
func (c Code) Places() int32 {
	if m, ok := supported[c]; ok {
		return m.places
	}
	return 2
}

// Rate is one row of the exchange rates table.
type Rate struct {
	Code        Code            `json:"code"`
	UnitsPerUSD decimal.Decimal `json:"units_per_usd"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (r Rate) validate() error {
	if _, ok := supported[r.Code]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCurrency, r.Code)
	}
	if !r.UnitsPerUSD.IsPositive() {
		return fmt.Errorf("%w: %s=%s", ErrInvalidRate, r.Code, r.UnitsPerUSD)
	}
	if r.Code == USD && !r.UnitsPerUSD.Equal(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: USD is fixed at 1, got %s", ErrInvalidRate, r.UnitsPerUSD)
	}
	return nil
}

// DefaultRates seeds stores that start empty. USD is pinned at 1.
func DefaultRates() []Rate {
	now := time.Now().UTC()
	return []Rate{
		{Code: USD, UnitsPerUSD: decimal.NewFromInt(1), UpdatedAt: now},
		{Code: GYD, UnitsPerUSD: decimal.RequireFromString("209.25"), UpdatedAt: now},
		{Code: JMD, UnitsPerUSD: decimal.RequireFromString("157.40"), UpdatedAt: now},
	}
}
