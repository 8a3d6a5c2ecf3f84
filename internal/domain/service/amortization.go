package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/valueobject"
	"github.com/PremHer/kasvarealty-sub001/pkg/money"
)

var one = decimal.NewFromInt(1)

// AmortizationResult is an amortized schedule. Drift is the rounding residual
// absorbed by the last installment.
type AmortizationResult struct {
	Installments []model.Installment
	Drift        decimal.Decimal
}

// Err reports a drift larger than one minor unit per installment. The
// schedule is usable either way.
func (r AmortizationResult) Err() error {
	tolerance := money.MinorUnit.Mul(decimal.NewFromInt(int64(len(r.Installments))))
	if r.Drift.GreaterThan(tolerance) {
		return &model.BalanceDriftError{Drift: r.Drift, Tolerance: tolerance}
	}
	return nil
}

// AmortizationCalculator splits installments into principal and interest.
type AmortizationCalculator struct{}

// Amortize splits the principal B (the sum of the input amounts) over the
// installments according to params. FRENCH and GERMAN overwrite the amounts.
func (AmortizationCalculator) Amortize(installments []model.Installment, params model.AmortizationParams) (AmortizationResult, error) {
	if len(installments) == 0 {
		return AmortizationResult{}, model.Fail(model.ErrInvalidSchedule, "installments", "at least one installment is required")
	}
	if err := validateParams(params); err != nil {
		return AmortizationResult{}, err
	}

	out := model.CloneInstallments(installments)
	principal := decimal.Zero
	for _, inst := range out {
		principal = principal.Add(inst.Amount)
	}

	if !params.HasInterest() {
		return amortizeFlat(out, principal), nil
	}
	params.Frequency = frequencyOrDefault(params.Frequency)
	rate := params.PeriodRate()

	switch {
	case params.Model.Equal(valueobject.AmortizationFrench):
		return amortizeFrench(out, principal, rate), nil
	case params.Model.Equal(valueobject.AmortizationGerman):
		return amortizeConstantPrincipal(out, principal, decimal.Zero, rate), nil
	default:
		balloon := money.Round(principal.Mul(params.BalloonFraction.Decimal))
		return amortizeConstantPrincipal(out, principal, balloon, rate), nil
	}
}

func validateParams(params model.AmortizationParams) error {
	if params.Rate.Valid && params.Rate.Decimal.IsNegative() {
		return model.Fail(model.ErrInvalidRate, "interest_rate", "must not be negative")
	}
	if !params.HasInterest() {
		return nil
	}
	if !params.Model.Known() {
		return model.Fail(model.ErrModelMismatch, "amortization_model",
			fmt.Sprintf("an interest-bearing account needs FRENCH, GERMAN or JAPANESE, got %q", params.Model.String()))
	}
	if params.Model.Equal(valueobject.AmortizationJapanese) {
		f := params.BalloonFraction
		if !f.Valid || !f.Decimal.IsPositive() || f.Decimal.GreaterThanOrEqual(one) {
			return model.Fail(model.ErrInvalidSchedule, "balloon_fraction", "must be between 0 and 1")
		}
	}
	return nil
}

func amortizeFlat(out []model.Installment, principal decimal.Decimal) AmortizationResult {
	balance := principal
	for k := range out {
		out[k].Principal = decimal.NewNullDecimal(out[k].Amount)
		out[k].Interest = decimal.NewNullDecimal(decimal.Zero)
		out[k].BalanceBefore = balance
		balance = balance.Sub(out[k].Amount)
		out[k].BalanceAfter = balance
	}
	return AmortizationResult{Installments: out, Drift: decimal.Zero}
}

// amortizeFrench applies the constant-payment annuity
// A = B*i*(1+i)^n / ((1+i)^n - 1).
func amortizeFrench(out []model.Installment, principal, rate decimal.Decimal) AmortizationResult {
	n := len(out)
	factor := one.Add(rate).Pow(decimal.NewFromInt(int64(n)))
	payment := money.Round(principal.Mul(rate).Mul(factor).Div(factor.Sub(one)))

	var drift decimal.Decimal
	balance := principal
	for k := range out {
		interest := money.Round(balance.Mul(rate))
		part := payment.Sub(interest)
		if k == n-1 {
			drift = balance.Sub(part).Abs()
			part = balance
		}
		out[k].Amount = part.Add(interest)
		out[k].Principal = decimal.NewNullDecimal(part)
		out[k].Interest = decimal.NewNullDecimal(interest)
		out[k].BalanceBefore = balance
		balance = balance.Sub(part)
		out[k].BalanceAfter = balance
	}
	return AmortizationResult{Installments: out, Drift: drift}
}

// amortizeConstantPrincipal retires principal-balloon in equal floored parts
// over all installments but the last, which carries the balloon and the
// remainder. GERMAN is the case balloon = 0 spread over all n.
func amortizeConstantPrincipal(out []model.Installment, principal, balloon, rate decimal.Decimal) AmortizationResult {
	n := len(out)
	parts := make([]decimal.Decimal, n)
	var base, last, expected decimal.Decimal
	switch {
	case balloon.IsZero():
		base, last = money.Split(principal, n)
		expected = base
	case n == 1:
		last = principal
		expected = principal
	default:
		base = money.Floor(principal.Sub(balloon).Div(decimal.NewFromInt(int64(n - 1))))
		last = principal.Sub(base.Mul(decimal.NewFromInt(int64(n - 1))))
		expected = balloon
	}
	for k := range parts {
		parts[k] = base
	}
	parts[n-1] = last

	balance := principal
	for k := range out {
		interest := money.Round(balance.Mul(rate))
		out[k].Amount = parts[k].Add(interest)
		out[k].Principal = decimal.NewNullDecimal(parts[k])
		out[k].Interest = decimal.NewNullDecimal(interest)
		out[k].BalanceBefore = balance
		balance = balance.Sub(parts[k])
		out[k].BalanceAfter = balance
	}
	return AmortizationResult{Installments: out, Drift: last.Sub(expected).Abs()}
}
