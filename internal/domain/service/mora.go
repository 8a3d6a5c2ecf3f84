package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/valueobject"
	"github.com/PremHer/kasvarealty-sub001/pkg/money"
)

var daysPerYear = decimal.NewFromInt(365)

// MoraCalculator accrues simple late interest on overdue installments.
type MoraCalculator struct{}

// Compute returns the accrued mora of every installment overdue at asOf,
// keyed by installment ID. Installments that are not overdue are omitted.
func (c MoraCalculator) Compute(installments []model.Installment, asOf time.Time, annualRate decimal.Decimal) (map[uuid.UUID]decimal.Decimal, error) {
	if !annualRate.IsPositive() {
		return nil, model.Fail(model.ErrInvalidRate, "late_interest_rate", "must be positive")
	}
	out := make(map[uuid.UUID]decimal.Decimal)
	for _, inst := range installments {
		if !inst.IsOverdue(asOf) {
			continue
		}
		out[inst.ID] = c.ForInstallment(inst, asOf, annualRate)
	}
	return out, nil
}

// ForInstallment is Round(pending * rate/365 * daysLate), or zero when the
// installment is not overdue or the rate is not positive.
func (MoraCalculator) ForInstallment(inst model.Installment, asOf time.Time, annualRate decimal.Decimal) decimal.Decimal {
	if !annualRate.IsPositive() || !inst.IsOverdue(asOf) {
		return decimal.Zero
	}
	days := DaysLate(inst, asOf)
	return money.Round(inst.Pending().Mul(annualRate).Mul(decimal.NewFromInt(int64(days))).Div(daysPerYear))
}

// DaysLate counts whole days since the due date; zero when not yet due.
func DaysLate(inst model.Installment, asOf time.Time) int {
	d := valueobject.DaysBetween(inst.DueDate, asOf)
	if d < 0 {
		return 0
	}
	return d
}
