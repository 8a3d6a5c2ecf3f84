package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/valueobject"
)

// Modification records a change to an installment's amount or due date.
type Modification struct {
	InstallmentID   uuid.UUID
	Number          int
	PreviousAmount  decimal.Decimal
	NewAmount       decimal.Decimal
	PreviousDueDate time.Time
	NewDueDate      time.Time
}

// Discount records an amount forgiven on one installment.
type Discount struct {
	InstallmentID uuid.UUID
	Number        int
	Amount        decimal.Decimal
	Reason        string
}

// PlanChange carries new terms for re-amortizing the unpaid installments.
// Zero fields keep the account's current value; FirstDueDate nil keeps the
// first unpaid installment's due date.
type PlanChange struct {
	Model           valueobject.AmortizationModel
	Rate            decimal.NullDecimal
	Frequency       *valueobject.Frequency
	FirstDueDate    *time.Time
	BalloonFraction decimal.NullDecimal
}

// Reprogramming is an append-only audit record of one batch edit.
type Reprogramming struct {
	ID            uuid.UUID
	SaleAccountID uuid.UUID
	Reason        string
	ActorID       uuid.UUID
	CreatedAt     time.Time
	PlanChange    *PlanChange
	Modifications []Modification
	Discounts     []Discount
}

func (r Reprogramming) clone() Reprogramming {
	out := r
	if r.PlanChange != nil {
		pc := *r.PlanChange
		out.PlanChange = &pc
	}
	out.Modifications = append([]Modification(nil), r.Modifications...)
	out.Discounts = append([]Discount(nil), r.Discounts...)
	return out
}
