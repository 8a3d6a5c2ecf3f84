package money

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ---------------------------------------------------------------------------
// Currency
// ---------------------------------------------------------------------------

func TestNewCurrency(t *testing.T) {
	for _, code := range []string{"PEN", "USD", "EUR"} {
		c, err := NewCurrency(code)
		if err != nil {
			t.Errorf("NewCurrency(%q) unexpected error: %v", code, err)
		}
		if c.Code() != code {
			t.Errorf("NewCurrency(%q).Code() = %q", code, c.Code())
		}
	}

	for _, code := range []string{"", "pen", "PE", "PENN", "P3N"} {
		if _, err := NewCurrency(code); err == nil {
			t.Errorf("NewCurrency(%q) expected error, got nil", code)
		}
	}
}

func TestMustCurrency_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustCurrency(\"bad\") did not panic")
		}
	}()
	MustCurrency("bad")
}

// ---------------------------------------------------------------------------
// Rounding
// ---------------------------------------------------------------------------

func TestRound(t *testing.T) {
	tests := []struct{ in, want string }{
		{"9.8630136", "9.86"},
		{"0.005", "0.01"},
		{"0.004", "0"},
		{"-0.005", "-0.01"},
		{"333.335", "333.34"},
	}
	for _, tt := range tests {
		if got := Round(d(tt.in)); !got.Equal(d(tt.want)) {
			t.Errorf("Round(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestFloor(t *testing.T) {
	tests := []struct{ in, want string }{
		{"333.3333", "333.33"},
		{"333.339", "333.33"},
		{"-0.001", "-0.01"},
	}
	for _, tt := range tests {
		if got := Floor(d(tt.in)); !got.Equal(d(tt.want)) {
			t.Errorf("Floor(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		total      string
		n          int
		base, last string
	}{
		{"exact", "9000", 10, "900", "900"},
		{"remainder to last", "1000", 3, "333.33", "333.34"},
		{"single", "150.55", 1, "150.55", "150.55"},
		{"tiny", "0.05", 4, "0.01", "0.02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, last := Split(d(tt.total), tt.n)
			if !base.Equal(d(tt.base)) || !last.Equal(d(tt.last)) {
				t.Fatalf("Split(%s, %d) = (%s, %s), want (%s, %s)", tt.total, tt.n, base, last, tt.base, tt.last)
			}
			sum := base.Mul(decimal.NewFromInt(int64(tt.n - 1))).Add(last)
			if tt.n > 1 && !sum.Equal(d(tt.total)) {
				t.Errorf("parts sum to %s, want %s", sum, tt.total)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	if !WithinTolerance(d("10.00"), d("10.01"), Epsilon) {
		t.Error("one minor unit apart should be within tolerance")
	}
	if WithinTolerance(d("10.00"), d("10.02"), Epsilon) {
		t.Error("two minor units apart should not be within tolerance")
	}
}

func TestMinMaxSum(t *testing.T) {
	if !Min(d("1"), d("2")).Equal(d("1")) || !Max(d("1"), d("2")).Equal(d("2")) {
		t.Error("Min/Max returned the wrong operand")
	}
	if got := Sum(d("0.10"), d("0.20"), d("0.30")); !got.Equal(d("0.60")) {
		t.Errorf("Sum = %s, want 0.60", got)
	}
	if !Sum().IsZero() {
		t.Error("empty Sum should be zero")
	}
}

// ---------------------------------------------------------------------------
// Money
// ---------------------------------------------------------------------------

func TestNewFromString(t *testing.T) {
	m, err := NewFromString("1000", "PEN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.String() != "1000.00 PEN" {
		t.Errorf("String() = %q, want %q", m.String(), "1000.00 PEN")
	}

	if _, err := NewFromString("10.001", "PEN"); err == nil {
		t.Error("expected error for sub-cent amount")
	}
	if _, err := NewFromString("abc", "PEN"); err == nil {
		t.Error("expected error for invalid amount")
	}
	if _, err := NewFromString("1", "pen"); err == nil {
		t.Error("expected error for invalid currency")
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := New(d("100.50"), PEN)
	b := New(d("0.50"), PEN)

	sum, err := a.Add(b)
	if err != nil || !sum.Equal(New(d("101"), PEN)) {
		t.Errorf("Add = %v, %v", sum, err)
	}
	diff, err := a.Subtract(b)
	if err != nil || !diff.Equal(New(d("100"), PEN)) {
		t.Errorf("Subtract = %v, %v", diff, err)
	}
	if _, err := a.Add(New(d("1"), USD)); err == nil {
		t.Error("expected currency mismatch")
	}
	if got := a.Multiply(d("0.333")); !got.Amount().Equal(d("33.47")) {
		t.Errorf("Multiply = %s, want 33.47", got.Amount())
	}
	if !Zero(USD).IsZero() || New(d("-1"), USD).IsPositive() || !New(d("-1"), USD).IsNegative() {
		t.Error("predicate mismatch")
	}
}

func TestSplit_Concurrent(t *testing.T) {
	total := d("1000")
	const goroutines = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)
	errs := make(chan string, goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			base, last := Split(total, 3)
			if !base.Equal(d("333.33")) || !last.Equal(d("333.34")) {
				errs <- base.String() + "/" + last.String()
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Errorf("unexpected split %s", e)
	}
	if !total.Equal(d("1000")) {
		t.Error("input mutated")
	}
}
