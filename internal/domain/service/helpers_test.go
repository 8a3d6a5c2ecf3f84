package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/service"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/valueobject"
	"github.com/PremHer/kasvarealty-sub001/pkg/money"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func rate(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.StringFixed(2), msgAndArgs)
}

type accountSpec struct {
	total, initial string
	count          int
	first          time.Time
	params         model.AmortizationParams
	lateRate       decimal.NullDecimal
}

// openAccount builds an account the way sale creation does.
func openAccount(t *testing.T, spec accountSpec) model.SaleAccount {
	t.Helper()
	if spec.first.IsZero() {
		spec.first = day(2025, time.February, 1)
	}
	if spec.params.Frequency == (valueobject.Frequency{}) {
		spec.params.Frequency = valueobject.FrequencyMonthly
	}
	total, initial := dec(spec.total), dec(spec.initial)

	engine := service.NewEngine()
	result, err := engine.BuildSchedule(model.SaleTerms{
		FinancedBalance: total.Sub(initial),
		Count:           spec.count,
		Frequency:       spec.params.Frequency,
		FirstDueDate:    spec.first,
	}, spec.params)
	require.NoError(t, err)

	prop, err := valueobject.NewProperty(valueobject.PropertyLot, "MZ-C-LT-11")
	require.NoError(t, err)

	acc, err := model.NewSaleAccount(model.NewSaleAccountParams{
		TenantID:         uuid.New(),
		Property:         prop,
		CustomerRef:      "CUST-1",
		Currency:         money.PEN,
		TotalPrice:       total,
		InitialPayment:   initial,
		InterestRate:     spec.params.Rate,
		LateInterestRate: spec.lateRate,
		Model:            spec.params.Model,
		Frequency:        spec.params.Frequency,
		BalloonFraction:  spec.params.BalloonFraction,
		Installments:     result.Installments,
		Now:              day(2025, time.January, 10),
	})
	require.NoError(t, err)
	return acc.ClearEvents()
}

// interestFree is 3000 financed over three monthly installments of 1000
// starting 2025-02-01.
func interestFree(t *testing.T) model.SaleAccount {
	return openAccount(t, accountSpec{total: "4000", initial: "1000", count: 3})
}

// assertSameSchedule compares installments by value; decimals with equal
// value may differ in representation.
func assertSameSchedule(t *testing.T, want, got []model.Installment) {
	t.Helper()
	require.Len(t, got, len(want))
	for k := range want {
		w, g := want[k], got[k]
		require.Equal(t, w.ID, g.ID)
		require.Equal(t, w.DueDate, g.DueDate, "installment #%d", w.Number)
		require.Equal(t, w.State, g.State, "installment #%d", w.Number)
		for _, pair := range [][2]decimal.Decimal{
			{w.Amount, g.Amount},
			{w.Principal.Decimal, g.Principal.Decimal},
			{w.Interest.Decimal, g.Interest.Decimal},
			{w.AmountPaid, g.AmountPaid},
			{w.BalanceBefore, g.BalanceBefore},
			{w.BalanceAfter, g.BalanceAfter},
		} {
			require.Truef(t, pair[0].Equal(pair[1]), "installment #%d: want %s, got %s", w.Number, pair[0], pair[1])
		}
	}
}
