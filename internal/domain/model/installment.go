package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Installment – entity owned by SaleAccount
// ---------------------------------------------------------------------------

// Installment is one scheduled payment obligation. It is handled by value;
// the aggregate hands out copies.
//
// Amount is the nominal amount due. Principal and Interest are unset until
// the schedule has been amortized. Discounted accumulates forgiven amounts,
// which have already been taken off Amount and Principal.
type Installment struct {
	ID            uuid.UUID
	Number        int
	DueDate       time.Time
	Amount        decimal.Decimal
	Principal     decimal.NullDecimal
	Interest      decimal.NullDecimal
	AmountPaid    decimal.Decimal
	Discounted    decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	State         valueobject.InstallmentState
	Payments      []Payment
}

// NewInstallment returns a PENDING installment with a fresh ID.
func NewInstallment(number int, due time.Time, amount decimal.Decimal) Installment {
	return Installment{
		ID:         uuid.New(),
		Number:     number,
		DueDate:    valueobject.Date(due),
		Amount:     amount,
		AmountPaid: decimal.Zero,
		Discounted: decimal.Zero,
		State:      valueobject.StatePending,
	}
}

// Pending is the nominal amount not yet paid.
func (i Installment) Pending() decimal.Decimal {
	p := i.Amount.Sub(i.AmountPaid)
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}

// IsPaid reports whether the installment is settled.
func (i Installment) IsPaid() bool { return i.State.IsPaid() }

// IsOverdue reports whether the due date is strictly before asOf and a
// balance remains.
func (i Installment) IsOverdue(asOf time.Time) bool {
	return !i.IsPaid() &&
		i.Pending().IsPositive() &&
		valueobject.Date(i.DueDate).Before(valueobject.Date(asOf))
}

// StatusAt returns the stored state, or OVERDUE when applicable.
func (i Installment) StatusAt(asOf time.Time) valueobject.InstallmentLabel {
	if i.IsOverdue(asOf) {
		return valueobject.LabelOverdue
	}
	return valueobject.InstallmentLabel(i.State.String())
}

// SettleState derives PENDING, PARTIAL or PAID from the amounts.
func (i Installment) SettleState() valueobject.InstallmentState {
	switch {
	case i.AmountPaid.GreaterThanOrEqual(i.Amount):
		return valueobject.StatePaid
	case i.AmountPaid.IsPositive():
		return valueobject.StatePartial
	default:
		return valueobject.StatePending
	}
}

// Clone returns a deep copy.
func (i Installment) Clone() Installment {
	out := i
	if i.Payments != nil {
		out.Payments = make([]Payment, len(i.Payments))
		copy(out.Payments, i.Payments)
	}
	return out
}

// CloneInstallments deep-copies a schedule.
func CloneInstallments(in []Installment) []Installment {
	if in == nil {
		return nil
	}
	out := make([]Installment, len(in))
	for k, inst := range in {
		out[k] = inst.Clone()
	}
	return out
}

// CustomInstallment is one caller-supplied installment of a custom schedule.
type CustomInstallment struct {
	Amount  decimal.Decimal
	DueDate time.Time
}
