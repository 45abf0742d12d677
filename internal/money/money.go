package money

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrAmountOverflow = errors.New("monetary amount overflows representable range")
)

// Amount is a monetary value expressed as an integer count of minor currency
// units (e.g. cents). Totals must reconcile exactly across arbitrarily many
// line items, so floating-point representations are never used.
type Amount int64

// Add returns a+b, failing instead of wrapping around on overflow.
func Add(a, b Amount) (Amount, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, ErrAmountOverflow
	}
	return sum, nil
}

// Sub returns a-b, failing instead of wrapping around on overflow.
func Sub(a, b Amount) (Amount, error) {
	diff := a - b
	if (b < 0 && diff < a) || (b > 0 && diff > a) {
		return 0, ErrAmountOverflow
	}
	return diff, nil
}

// Sum adds a sequence of amounts with the same overflow guarantee as Add.
func Sum(amounts ...Amount) (Amount, error) {
	var total Amount
	for _, a := range amounts {
		var err error
		total, err = Add(total, a)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

// MulQuantity returns the price of qty units at unitPrice, rounded half up to
// the nearest minor unit. Quantities may be fractional (weight-sold goods).
func MulQuantity(unitPrice Amount, qty decimal.Decimal) (Amount, error) {
	product := decimal.NewFromInt(int64(unitPrice)).Mul(qty)
	return roundToAmount(product)
}

// ApplyRateBps applies a rate expressed in basis points (1300 = 13%) to an
// amount, rounding half up.
func ApplyRateBps(a Amount, bps int64) (Amount, error) {
	scaled := decimal.NewFromInt(int64(a)).
		Mul(decimal.NewFromInt(bps)).
		Div(decimal.NewFromInt(10000))
	return roundToAmount(scaled)
}

// roundToAmount rounds half away from zero to zero decimal places and rejects
// values outside the int64 range. Never banker's rounding: 0.5 rounds up.
func roundToAmount(d decimal.Decimal) (Amount, error) {
	rounded := d.Round(0)
	if rounded.Cmp(decimal.NewFromInt(math.MaxInt64)) > 0 ||
		rounded.Cmp(decimal.NewFromInt(math.MinInt64)) < 0 {
		return 0, ErrAmountOverflow
	}
	return Amount(rounded.IntPart()), nil
}
