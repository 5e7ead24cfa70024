// Package money holds currency amounts as integer cents so that sums and
// products of line items are exact.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a currency value in minor units (cents).
type Amount int64

// Zero is the zero amount.
const Zero Amount = 0

// MaxAmount bounds every amount, in either sign: 9,999,999,999.99.
const MaxAmount Amount = 999_999_999_999

var (
	// ErrTooPrecise is returned for values with more than two fractional digits.
	ErrTooPrecise = errors.New("money: amount has more than two decimal places")
	// ErrOutOfRange is returned for values beyond MaxAmount.
	ErrOutOfRange = errors.New("money: amount out of range")
)

var maxCents = decimal.NewFromInt(int64(MaxAmount))

// FromDecimal converts a decimal value into cents.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	if !d.Equal(d.Truncate(2)) {
		return 0, ErrTooPrecise
	}
	cents := d.Shift(2)
	if cents.Abs().GreaterThan(maxCents) {
		return 0, ErrOutOfRange
	}
	return Amount(cents.IntPart()), nil
}

// Parse reads a decimal string such as "4.99".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("money: invalid amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Cents returns the amount as a plain integer.
func (a Amount) Cents() int64 {
	return int64(a)
}

// Mul returns the amount multiplied by a quantity, or ErrOutOfRange.
func (a Amount) Mul(qty int) (Amount, error) {
	return FromDecimal(a.Decimal().Mul(decimal.NewFromInt(int64(qty))))
}

// Sum adds up amounts, or fails with ErrOutOfRange.
func Sum(amounts ...Amount) (Amount, error) {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a.Decimal())
	}
	return FromDecimal(total)
}

// DivRound divides the amount by n and rounds to whole cents.
// Dividing by zero yields Zero.
func (a Amount) DivRound(n int64) Amount {
	if n == 0 {
		return Zero
	}
	q := a.Decimal().DivRound(decimal.NewFromInt(n), 2)
	return Amount(q.Shift(2).IntPart())
}

// Decimal returns the amount as a decimal in currency units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// Float64 is used for spreadsheet cells only.
func (a Amount) Float64() float64 {
	f, _ := a.Decimal().Float64()
	return f
}

// String formats the amount with two decimals, e.g. "4.00".
func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}

// Euro formats the amount the way receipts show it, e.g. "4.00€".
func (a Amount) Euro() string {
	return a.String() + "€"
}

// MarshalJSON writes the amount as a JSON number with two decimals.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts JSON numbers and numeric strings.
func (a *Amount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("money: %w", err)
	}
	v, err := FromDecimal(d)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// MarshalCSV writes the amount for CSV exports.
func (a Amount) MarshalCSV() (string, error) {
	return a.String(), nil
}
