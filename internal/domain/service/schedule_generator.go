package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/valueobject"
	"github.com/PremHer/kasvarealty-sub001/pkg/money"
)

// ScheduleGenerator turns sale terms into PENDING installments.
type ScheduleGenerator struct {
	strictDateOrder bool
}

// GeneratorOption configures a ScheduleGenerator.
type GeneratorOption func(*ScheduleGenerator)

// WithStrictDateOrder rejects custom schedules whose due dates decrease.
func WithStrictDateOrder() GeneratorOption {
	return func(g *ScheduleGenerator) { g.strictDateOrder = true }
}

// NewScheduleGenerator creates a generator. By default custom due dates are
// accepted in any order.
func NewScheduleGenerator(opts ...GeneratorOption) *ScheduleGenerator {
	g := &ScheduleGenerator{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds the installments for terms. In regular mode the balance is
// floored into equal parts and the remainder goes to the last installment.
// Principal and interest are left unset.
func (g *ScheduleGenerator) Generate(terms model.SaleTerms) ([]model.Installment, error) {
	if !terms.FinancedBalance.IsPositive() {
		return nil, model.Fail(model.ErrInvalidSchedule, "financed_balance", "must be positive")
	}
	if terms.IsCustom() {
		return g.custom(terms)
	}
	return g.regular(terms)
}

func (g *ScheduleGenerator) regular(terms model.SaleTerms) ([]model.Installment, error) {
	n := terms.Count
	if n <= 0 {
		return nil, model.Fail(model.ErrInvalidSchedule, "count", "must be at least 1")
	}
	if terms.FirstDueDate.IsZero() {
		return nil, model.Fail(model.ErrInvalidSchedule, "first_due_date", "is required")
	}
	base, last := money.Split(terms.FinancedBalance, n)
	if n > 1 && !base.IsPositive() {
		return nil, model.Fail(model.ErrInvalidSchedule, "count",
			fmt.Sprintf("%s cannot be split into %d installments", terms.FinancedBalance.StringFixed(2), n))
	}

	out := make([]model.Installment, n)
	for i := 0; i < n; i++ {
		amount := base
		if i == n-1 {
			amount = last
		}
		out[i] = model.NewInstallment(i+1, terms.Frequency.DueDate(terms.FirstDueDate, i), amount)
	}
	return out, nil
}

func (g *ScheduleGenerator) custom(terms model.SaleTerms) ([]model.Installment, error) {
	out := make([]model.Installment, len(terms.Custom))
	sum := decimal.Zero
	for i, c := range terms.Custom {
		inst := model.NewInstallment(i+1, c.DueDate, c.Amount)
		if !c.Amount.IsPositive() {
			return nil, model.FailAt(model.ErrInvalidSchedule, inst, "amount", "must be positive")
		}
		if !c.Amount.Equal(money.Round(c.Amount)) {
			return nil, model.FailAt(model.ErrInvalidSchedule, inst, "amount", "has more than two decimal places")
		}
		if c.DueDate.IsZero() {
			return nil, model.FailAt(model.ErrInvalidSchedule, inst, "due_date", "is required")
		}
		if g.strictDateOrder && i > 0 && inst.DueDate.Before(out[i-1].DueDate) {
			return nil, model.FailAt(model.ErrInvalidSchedule, inst, "due_date", "precedes the previous installment")
		}
		sum = sum.Add(c.Amount)
		out[i] = inst
	}
	if !sum.Equal(terms.FinancedBalance) {
		return nil, model.Fail(model.ErrInvalidSchedule, "custom",
			fmt.Sprintf("installments add up to %s, financed balance is %s",
				sum.StringFixed(2), terms.FinancedBalance.StringFixed(2)))
	}
	return out, nil
}

// frequencyOrDefault keeps callers from passing the zero Frequency around.
func frequencyOrDefault(f valueobject.Frequency) valueobject.Frequency {
	return valueobject.ParseFrequency(f.String())
}
