package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
)

// Engine is the installment engine: schedule generation, amortization, mora,
// payments, reprogramming and balance recalculation. It performs no I/O and
// holds no per-account state, so one Engine serves every account.
type Engine struct {
	generator    *ScheduleGenerator
	amortizer    AmortizationCalculator
	mora         MoraCalculator
	ledger       PaymentLedger
	reprogrammer *ReprogrammingEngine
	recalculator BalanceRecalculator
}

// NewEngine wires the engine components. Generator options apply to both
// sale creation and plan changes.
func NewEngine(opts ...GeneratorOption) *Engine {
	gen := NewScheduleGenerator(opts...)
	e := &Engine{generator: gen}
	e.reprogrammer = &ReprogrammingEngine{
		generator:    gen,
		amortizer:    e.amortizer,
		recalculator: e.recalculator,
	}
	return e
}

// GenerateSchedule builds the PENDING installments for terms.
func (e *Engine) GenerateSchedule(terms model.SaleTerms) ([]model.Installment, error) {
	return e.generator.Generate(terms)
}

// Amortize splits installments into principal and interest.
func (e *Engine) Amortize(installments []model.Installment, params model.AmortizationParams) (AmortizationResult, error) {
	return e.amortizer.Amortize(installments, params)
}

// ComputeMora returns accrued late interest per overdue installment.
func (e *Engine) ComputeMora(installments []model.Installment, asOf time.Time, annualRate decimal.Decimal) (map[uuid.UUID]decimal.Decimal, error) {
	return e.mora.Compute(installments, asOf, annualRate)
}

// MoraFor is the late interest of a single installment.
func (e *Engine) MoraFor(inst model.Installment, asOf time.Time, annualRate decimal.Decimal) decimal.Decimal {
	return e.mora.ForInstallment(inst, asOf, annualRate)
}

// QuotePayment prices what settling inst costs on date. fallback applies
// when the account has no late rate.
func (e *Engine) QuotePayment(account model.SaleAccount, inst model.Installment, date time.Time, fallback decimal.NullDecimal) PaymentQuote {
	return e.ledger.Quote(account, inst, date, fallback)
}

// ApplyPayment records a payment against one installment.
func (e *Engine) ApplyPayment(account model.SaleAccount, in PaymentInput, now time.Time) (model.SaleAccount, model.Installment, error) {
	return e.ledger.ApplyPayment(account, in, now)
}

// Reprogram applies a batch edit and recalculates balances.
func (e *Engine) Reprogram(account model.SaleAccount, req ReprogramRequest, asOf time.Time) (model.SaleAccount, model.Reprogramming, error) {
	return e.reprogrammer.Reprogram(account, req, asOf)
}

// RecalculateBalances rebuilds the account's balance chain.
func (e *Engine) RecalculateBalances(account model.SaleAccount) (model.SaleAccount, error) {
	return e.recalculator.RecalculateAccount(account)
}

// BuildSchedule generates and amortizes the schedule of a new sale. Custom
// schedules cannot carry interest. The returned result may still report
// drift through Err.
func (e *Engine) BuildSchedule(terms model.SaleTerms, params model.AmortizationParams) (AmortizationResult, error) {
	if terms.IsCustom() && params.HasInterest() {
		return AmortizationResult{}, model.Fail(model.ErrModelMismatch, "custom",
			"custom schedules cannot be combined with an interest rate")
	}
	installments, err := e.generator.Generate(terms)
	if err != nil {
		return AmortizationResult{}, err
	}
	result, err := e.amortizer.Amortize(installments, params)
	if err != nil {
		return AmortizationResult{}, err
	}
	result.Installments = e.recalculator.Recalculate(result.Installments, terms.FinancedBalance, params)
	return result, nil
}
