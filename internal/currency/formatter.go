package currency

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Format renders amount with the currency symbol and thousands separators,
// e.g. G$20,000,000.00.
func Format(amount decimal.Decimal, code Code) string {
	fixed := amount.Abs().StringFixed(code.Places())

	intPart, frac, hasFrac := strings.Cut(fixed, ".")

	var b strings.Builder
	if amount.Round(code.Places()).IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(code.Symbol())
	b.WriteString(groupThousands(intPart))
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// FormatFloat is Format for float amounts coming out of the calculator.
func FormatFloat(amount float64, code Code) string {
	return Format(decimal.NewFromFloat(amount), code)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	lead := len(digits) % 3
	var b strings.Builder
	b.Grow(len(digits) + len(digits)/3)
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Converter converts amounts between currencies using a RateStore.
type Converter struct {
	store RateStore
}

func NewConverter(store RateStore) *Converter {
	return &Converter{store: store}
}

// Convert returns amount expressed in to, rounded to to's display precision.
// Same-currency conversions skip the store.
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to Code) (decimal.Decimal, error) {
	if from == to {
		if _, ok := supported[from]; !ok {
			return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, from)
		}
		return amount.Round(to.Places()), nil
	}

	fromRate, err := c.store.GetRate(ctx, from)
	if err != nil {
		return decimal.Decimal{}, err
	}
	toRate, err := c.store.GetRate(ctx, to)
	if err != nil {
		return decimal.Decimal{}, err
	}

	// Divide with enough precision that large GYD amounts survive the USD hop.
	usd := amount.DivRound(fromRate.UnitsPerUSD, 16)
	return usd.Mul(toRate.UnitsPerUSD).Round(to.Places()), nil
}

// Rates lists every stored rate.
func (c *Converter) Rates(ctx context.Context) ([]Rate, error) {
	return c.store.ListRates(ctx)
}

// SetRate validates and stores rate, stamping UpdatedAt when unset.
func (c *Converter) SetRate(ctx context.Context, rate Rate) error {
	if err := rate.validate(); err != nil {
		return err
	}
	if rate.UpdatedAt.IsZero() {
		rate.UpdatedAt = time.Now().UTC()
	}
	return c.store.SetRate(ctx, rate)
}

// Ping checks the backing store is reachable.
func (c *Converter) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}
