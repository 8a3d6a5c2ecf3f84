package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/valueobject"
	"github.com/PremHer/kasvarealty-sub001/pkg/money"
)

// PaymentInput is one payment to apply.
type PaymentInput struct {
	InstallmentID uuid.UUID
	Amount        decimal.Decimal
	Date          time.Time
	Method        valueobject.PaymentMethod
	Note          string
	ReceiptRef    string
	// DefaultLateRate prices mora when the account has no late rate of its own.
	DefaultLateRate decimal.NullDecimal
}

// PaymentQuote is what settling an installment costs on a date.
type PaymentQuote struct {
	PendingBase  decimal.Decimal
	PendingMora  decimal.Decimal
	PendingTotal decimal.Decimal
}

// PaymentLedger applies payments one installment at a time, in sequence.
type PaymentLedger struct {
	mora MoraCalculator
}

// Quote prices the pending balance of inst on date, mora included. The
// account's late rate wins over fallback.
func (l PaymentLedger) Quote(account model.SaleAccount, inst model.Installment, date time.Time, fallback decimal.NullDecimal) PaymentQuote {
	base := inst.Pending()
	mora := decimal.Zero
	rate := account.LateInterestRate()
	if !rate.Valid {
		rate = fallback
	}
	if rate.Valid {
		mora = l.mora.ForInstallment(inst, date, rate.Decimal)
	}
	return PaymentQuote{
		PendingBase:  base,
		PendingMora:  mora,
		PendingTotal: money.Round(base.Add(mora)),
	}
}

// ApplyPayment validates in against the account and records it. The amount
// settles the installment first and any remainder settles accrued mora. No
// other installment is touched. A receipt reference already recorded on the
// account is rejected with model.ErrDuplicatePayment.
func (l PaymentLedger) ApplyPayment(account model.SaleAccount, in PaymentInput, now time.Time) (model.SaleAccount, model.Installment, error) {
	if prior, ok := account.PaymentByReceipt(in.ReceiptRef); ok {
		return account, model.Installment{}, &model.InstallmentError{
			Err:           model.ErrDuplicatePayment,
			InstallmentID: prior.InstallmentID,
			Field:         "receipt_ref",
			Detail:        fmt.Sprintf("%s was recorded as payment %s", in.ReceiptRef, prior.ID),
		}
	}
	inst, ok := account.Installment(in.InstallmentID)
	if !ok {
		return account, model.Installment{}, &model.InstallmentError{
			Err:           model.ErrInstallmentNotFound,
			InstallmentID: in.InstallmentID,
		}
	}
	if inst.IsPaid() {
		return account, inst, model.FailAt(model.ErrImmutableInstallment, inst, "state", "installment is already paid")
	}

	date := in.Date
	if date.IsZero() {
		date = now
	}
	quote := l.Quote(account, inst, date, in.DefaultLateRate)

	if inst.Number > 1 {
		prev := account.Installments()[inst.Number-2]
		if !prev.IsPaid() {
			return account, inst, model.FailAt(model.ErrOutOfOrderPayment, inst, "installment_id",
				fmt.Sprintf("installment #%d is %s", prev.Number, prev.State))
		}
	}
	if !in.Amount.IsPositive() {
		return account, inst, model.FailAt(model.ErrInvalidAmount, inst, "amount", "must be positive")
	}
	if !in.Amount.Equal(money.Round(in.Amount)) {
		return account, inst, model.FailAt(model.ErrInvalidAmount, inst, "amount", "has more than two decimal places")
	}
	if in.Amount.Sub(quote.PendingTotal).GreaterThan(money.MinorUnit) {
		return account, inst, model.FailAt(model.ErrOverpayment, inst, "amount",
			fmt.Sprintf("%s exceeds pending %s (base %s, mora %s)",
				in.Amount.StringFixed(2), quote.PendingTotal.StringFixed(2),
				quote.PendingBase.StringFixed(2), quote.PendingMora.StringFixed(2)))
	}

	method := in.Method
	if method.IsZero() {
		method = valueobject.PaymentOther
	}
	applied := money.Min(in.Amount, quote.PendingBase)
	payment := model.Payment{
		ID:            uuid.New(),
		InstallmentID: inst.ID,
		Amount:        in.Amount,
		Applied:       applied,
		LateInterest:  in.Amount.Sub(applied),
		Date:          valueobject.Date(date),
		Method:        method,
		Note:          in.Note,
		ReceiptRef:    in.ReceiptRef,
		RecordedAt:    now.UTC(),
	}

	next, err := account.RecordPayment(payment, now)
	if err != nil {
		return account, inst, err
	}
	updated, _ := next.Installment(inst.ID)
	return next, updated, nil
}
