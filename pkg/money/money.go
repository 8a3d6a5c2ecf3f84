package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an immutable amount in a currency, always held at the minor unit.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// New rounds amount to the minor unit and binds it to currency.
func New(amount decimal.Decimal, currency Currency) Money {
	return Money{amount: Round(amount), currency: currency}
}

// NewFromString parses an amount string and currency code.
func NewFromString(amount string, currency string) (Money, error) {
	cur, err := NewCurrency(currency)
	if err != nil {
		return Money{}, fmt.Errorf("invalid currency: %w", err)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if !d.Equal(Round(d)) {
		return Money{}, fmt.Errorf("invalid amount %q: more than %d decimal places", amount, Scale)
	}

	return Money{amount: d, currency: cur}, nil
}

// Zero returns zero in the given currency.
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }
func (m Money) IsZero() bool            { return m.amount.IsZero() }
func (m Money) IsPositive() bool        { return m.amount.IsPositive() }
func (m Money) IsNegative() bool        { return m.amount.IsNegative() }

// Add returns m+other. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("currency mismatch: cannot add %s to %s", other.currency, m.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns m-other. Currencies must match.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("currency mismatch: cannot subtract %s from %s", other.currency, m.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Multiply returns m*factor rounded to the minor unit.
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: Round(m.amount.Mul(factor)), currency: m.currency}
}

// Equal compares amount and currency.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String formats as "1000.00 PEN".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(Scale), m.currency.Code())
}
