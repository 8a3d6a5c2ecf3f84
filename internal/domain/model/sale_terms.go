package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/valueobject"
)

// SaleTerms is the input of schedule generation. When Custom is non-empty
// Count, Frequency and FirstDueDate are ignored.
type SaleTerms struct {
	FinancedBalance decimal.Decimal
	Count           int
	Frequency       valueobject.Frequency
	FirstDueDate    time.Time
	Custom          []CustomInstallment
}

// IsCustom reports whether the schedule is caller-supplied.
func (t SaleTerms) IsCustom() bool { return len(t.Custom) > 0 }

// AmortizationParams configures the principal/interest split.
type AmortizationParams struct {
	Rate            decimal.NullDecimal
	Model           valueobject.AmortizationModel
	Frequency       valueobject.Frequency
	BalloonFraction decimal.NullDecimal
}

// HasInterest reports whether a positive rate is configured.
func (p AmortizationParams) HasInterest() bool {
	return p.Rate.Valid && p.Rate.Decimal.IsPositive()
}

// PeriodRate is the annual rate divided by the periods per year.
func (p AmortizationParams) PeriodRate() decimal.Decimal {
	if !p.HasInterest() {
		return decimal.Zero
	}
	return p.Rate.Decimal.Div(decimal.NewFromInt(int64(p.Frequency.PeriodsPerYear())))
}
