package money

import "github.com/shopspring/decimal"

// Scale is the number of decimal places of the currency minor unit.
const Scale int32 = 2

var (
	// MinorUnit is the smallest representable amount (0.01).
	MinorUnit = decimal.New(1, -Scale)

	// Epsilon is the tolerance used when comparing amounts that went through
	// independent rounding steps.
	Epsilon = MinorUnit
)

// Round rounds half away from zero to the minor unit.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Floor truncates toward negative infinity at the minor unit.
func Floor(d decimal.Decimal) decimal.Decimal {
	return d.RoundFloor(Scale)
}

// Split divides total into n parts of Floor(total/n); the last part absorbs
// the remainder. It returns the repeated base and the last part. n must be
// positive.
func Split(total decimal.Decimal, n int) (base, last decimal.Decimal) {
	if n == 1 {
		return total, total
	}
	count := decimal.NewFromInt(int64(n))
	base = Floor(total.Div(count))
	last = total.Sub(base.Mul(decimal.NewFromInt(int64(n - 1))))
	return base, last
}

// WithinTolerance reports whether |a-b| <= tol.
func WithinTolerance(a, b, tol decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tol)
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// Sum adds all values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
