package service_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/service"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/valueobject"
)

func schedule(t *testing.T, balance string, n int) []model.Installment {
	t.Helper()
	out, err := service.NewScheduleGenerator().Generate(model.SaleTerms{
		FinancedBalance: dec(balance),
		Count:           n,
		Frequency:       valueobject.FrequencyMonthly,
		FirstDueDate:    day(2025, time.February, 1),
	})
	require.NoError(t, err)
	return out
}

func monthly(m valueobject.AmortizationModel, annual string) model.AmortizationParams {
	return model.AmortizationParams{Rate: rate(annual), Model: m, Frequency: valueobject.FrequencyMonthly}
}

func TestAmortize_French(t *testing.T) {
	res, err := service.AmortizationCalculator{}.Amortize(schedule(t, "1000", 2), monthly(valueobject.AmortizationFrench, "0.12"))
	require.NoError(t, err)
	require.Len(t, res.Installments, 2)

	first, last := res.Installments[0], res.Installments[1]
	assertDec(t, "507.51", first.Amount)
	assertDec(t, "10.00", first.Interest.Decimal)
	assertDec(t, "497.51", first.Principal.Decimal)
	assertDec(t, "502.49", first.BalanceAfter)

	assertDec(t, "5.02", last.Interest.Decimal)
	assertDec(t, "502.49", last.Principal.Decimal)
	assertDec(t, "507.51", last.Amount)
	assertDec(t, "0", last.BalanceAfter)
	assert.NoError(t, res.Err())
}

func TestAmortize_FrenchLongTermRetiresBalance(t *testing.T) {
	res, err := service.AmortizationCalculator{}.Amortize(schedule(t, "100000", 360), monthly(valueobject.AmortizationFrench, "0.05"))
	require.NoError(t, err)

	// 100,000 at 5% over 30 years is roughly 536.82 a month.
	assert.True(t, res.Installments[0].Amount.Sub(dec("536.82")).Abs().LessThanOrEqual(dec("0.01")),
		"got %s", res.Installments[0].Amount)

	sum := decimal.Zero
	for _, inst := range res.Installments {
		sum = sum.Add(inst.Principal.Decimal)
		assert.True(t, inst.Principal.Decimal.Add(inst.Interest.Decimal).Equal(inst.Amount))
	}
	assertDec(t, "100000", sum)
	assertDec(t, "0", res.Installments[359].BalanceAfter)
	assert.NoError(t, res.Err())
}

func TestAmortize_German(t *testing.T) {
	res, err := service.AmortizationCalculator{}.Amortize(schedule(t, "1000", 3), monthly(valueobject.AmortizationGerman, "0.12"))
	require.NoError(t, err)

	want := []struct{ principal, interest, amount string }{
		{"333.33", "10.00", "343.33"},
		{"333.33", "6.67", "340.00"},
		{"333.34", "3.33", "336.67"},
	}
	for k, w := range want {
		inst := res.Installments[k]
		assertDec(t, w.principal, inst.Principal.Decimal, k)
		assertDec(t, w.interest, inst.Interest.Decimal, k)
		assertDec(t, w.amount, inst.Amount, k)
	}
	assertDec(t, "0.01", res.Drift)
	assert.NoError(t, res.Err())
}

func TestAmortize_Japanese(t *testing.T) {
	params := monthly(valueobject.AmortizationJapanese, "0.12")
	params.BalloonFraction = rate("0.5")

	res, err := service.AmortizationCalculator{}.Amortize(schedule(t, "1000", 3), params)
	require.NoError(t, err)

	assertDec(t, "250", res.Installments[0].Principal.Decimal)
	assertDec(t, "260.00", res.Installments[0].Amount)
	assertDec(t, "250", res.Installments[1].Principal.Decimal)
	assertDec(t, "257.50", res.Installments[1].Amount)
	assertDec(t, "500", res.Installments[2].Principal.Decimal)
	assertDec(t, "5.00", res.Installments[2].Interest.Decimal)
	assertDec(t, "505.00", res.Installments[2].Amount)
	assertDec(t, "0", res.Installments[2].BalanceAfter)
}

func TestAmortize_InterestFree(t *testing.T) {
	for _, params := range []model.AmortizationParams{
		{},
		{Rate: rate("0"), Model: valueobject.AmortizationFrench},
		{Model: valueobject.ParseAmortizationModel("WHATEVER")},
	} {
		res, err := service.AmortizationCalculator{}.Amortize(schedule(t, "1000", 3), params)
		require.NoError(t, err)
		assertDec(t, "333.34", res.Installments[2].Amount)
		for _, inst := range res.Installments {
			assert.True(t, inst.Interest.Decimal.IsZero())
			assert.True(t, inst.Principal.Decimal.Equal(inst.Amount))
		}
		assertDec(t, "0", res.Installments[2].BalanceAfter)
	}
}

func TestAmortize_Errors(t *testing.T) {
	calc := service.AmortizationCalculator{}
	insts := schedule(t, "1000", 3)

	_, err := calc.Amortize(insts, model.AmortizationParams{Rate: rate("0.1")})
	assert.ErrorIs(t, err, model.ErrModelMismatch)

	_, err = calc.Amortize(insts, monthly(valueobject.ParseAmortizationModel("AMERICAN"), "0.1"))
	assert.ErrorIs(t, err, model.ErrModelMismatch)

	_, err = calc.Amortize(insts, monthly(valueobject.AmortizationFrench, "-0.01"))
	assert.ErrorIs(t, err, model.ErrInvalidRate)

	_, err = calc.Amortize(insts, monthly(valueobject.AmortizationJapanese, "0.1"))
	assert.ErrorIs(t, err, model.ErrInvalidSchedule)

	params := monthly(valueobject.AmortizationJapanese, "0.1")
	params.BalloonFraction = rate("1")
	_, err = calc.Amortize(insts, params)
	assert.ErrorIs(t, err, model.ErrInvalidSchedule)

	_, err = calc.Amortize(nil, monthly(valueobject.AmortizationFrench, "0.1"))
	assert.ErrorIs(t, err, model.ErrInvalidSchedule)
}

func TestAmortize_DoesNotMutateInput(t *testing.T) {
	insts := schedule(t, "1000", 2)
	_, err := service.AmortizationCalculator{}.Amortize(insts, monthly(valueobject.AmortizationFrench, "0.12"))
	require.NoError(t, err)
	assertDec(t, "500", insts[0].Amount)
	assert.False(t, insts[0].Principal.Valid)
}

func TestAmortizationResult_Err(t *testing.T) {
	res := service.AmortizationResult{
		Installments: make([]model.Installment, 2),
		Drift:        dec("0.05"),
	}
	err := res.Err()
	var drift *model.BalanceDriftError
	require.ErrorAs(t, err, &drift)
	assertDec(t, "0.02", drift.Tolerance)

	res.Drift = dec("0.02")
	assert.NoError(t, res.Err())
}
