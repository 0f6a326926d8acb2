package business

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/numera/numera-api/internal/constants"
)

// Money is an exact amount in 2-decimal minor units (cents) of a single
// ISO 4217 currency. Arithmetic never touches binary floating point; decimal
// strings exist only at serialization boundaries.
type Money struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

// CurrencyMismatchError is returned when arithmetic is attempted between two
// Money values of different currencies.
type CurrencyMismatchError struct {
	Left  string
	Right string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("currency mismatch: %s vs %s", e.Left, e.Right)
}

// NewMoney creates a Money value, validating the currency against the fixed
// lookup table.
func NewMoney(amountCents int64, currency string) (Money, error) {
	if !constants.IsSupportedCurrency(currency) {
		return Money{}, &UnknownJurisdictionError{Field: "currency", Code: currency}
	}
	return Money{AmountCents: amountCents, Currency: currency}, nil
}

// ZeroMoney returns a zero amount in the given currency without validation.
// Used where the currency has already been validated upstream.
func ZeroMoney(currency string) Money {
	return Money{AmountCents: 0, Currency: currency}
}

// Add returns m + other. Fails if the currencies differ.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, &CurrencyMismatchError{Left: m.Currency, Right: other.Currency}
	}
	return Money{AmountCents: m.AmountCents + other.AmountCents, Currency: m.Currency}, nil
}

// Subtract returns m - other. Fails if the currencies differ.
func (m Money) Subtract(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, &CurrencyMismatchError{Left: m.Currency, Right: other.Currency}
	}
	return Money{AmountCents: m.AmountCents - other.AmountCents, Currency: m.Currency}, nil
}

// MultiplyByQuantity returns m scaled by an integer quantity
func (m Money) MultiplyByQuantity(quantity int64) Money {
	return Money{AmountCents: m.AmountCents * quantity, Currency: m.Currency}
}

// IsZero reports whether the amount is exactly zero
func (m Money) IsZero() bool {
	return m.AmountCents == 0
}

// PercentageOf applies a rate expressed in basis points (1900 = 19%) and
// returns the exact, unrounded intermediate. Rounding to minor units happens
// exactly once, at RoundToMinorUnit.
func (m Money) PercentageOf(rateBasisPoints int64) ScaledMoney {
	return ScaledMoney{
		numerator: m.AmountCents * rateBasisPoints,
		currency:  m.Currency,
	}
}

// ScaledMoney is an exact intermediate amount in units of one ten-thousandth
// of a cent, produced by PercentageOf. It cannot be used in further arithmetic;
// the only way out is RoundToMinorUnit.
type ScaledMoney struct {
	numerator int64
	currency  string
}

// RoundToMinorUnit rounds the intermediate to whole cents using banker's
// rounding (round half to even).
func (s ScaledMoney) RoundToMinorUnit() Money {
	return Money{AmountCents: divRoundHalfEven(s.numerator, 10000), Currency: s.currency}
}

// divRoundHalfEven divides num by den (den > 0) rounding half to even
func divRoundHalfEven(num, den int64) int64 {
	neg := num < 0
	if neg {
		num = -num
	}
	quo := num / den
	rem := num % den
	switch {
	case rem*2 > den:
		quo++
	case rem*2 == den && quo%2 == 1:
		quo++
	}
	if neg {
		return -quo
	}
	return quo
}

// DecimalString renders the amount as a decimal string, e.g. "238.00". Used
// only at serialization boundaries.
func (m Money) DecimalString() string {
	cents := m.AmountCents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// String renders the amount with its currency, e.g. "238.00 EUR"
func (m Money) String() string {
	return m.DecimalString() + " " + m.Currency
}

// ParseMoney parses a decimal string ("123.45", "-0.10", "7") into a Money
// value in the given currency.
func ParseMoney(decimal, currency string) (Money, error) {
	if !constants.IsSupportedCurrency(currency) {
		return Money{}, &UnknownJurisdictionError{Field: "currency", Code: currency}
	}

	s := strings.TrimSpace(decimal)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return Money{}, fmt.Errorf("amount %q has more than 2 decimal places", decimal)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	wholeUnits, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", decimal, err)
	}
	fracCents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", decimal, err)
	}

	cents := wholeUnits*100 + fracCents
	if neg {
		cents = -cents
	}
	return Money{AmountCents: cents, Currency: currency}, nil
}
