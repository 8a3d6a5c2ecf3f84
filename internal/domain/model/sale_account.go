package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/event"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/valueobject"
	"github.com/PremHer/kasvarealty-sub001/pkg/events"
	"github.com/PremHer/kasvarealty-sub001/pkg/money"
)

// ---------------------------------------------------------------------------
// SaleAccount aggregate root
// ---------------------------------------------------------------------------

// SaleAccount is the credit side of one property sale: the financed balance
// and the installments that retire it. It is immutable; transitions return
// a new copy carrying the events they raised.
type SaleAccount struct {
	id               uuid.UUID
	tenantID         uuid.UUID
	property         valueobject.Property
	customerRef      string
	currency         money.Currency
	totalPrice       decimal.Decimal
	initialPayment   decimal.Decimal
	financedBalance  decimal.Decimal
	interestRate     decimal.NullDecimal
	lateInterestRate decimal.NullDecimal
	model            valueobject.AmortizationModel
	frequency        valueobject.Frequency
	balloonFraction  decimal.NullDecimal
	installments     []Installment
	reprogrammings   []Reprogramming
	version          int
	createdAt        time.Time
	updatedAt        time.Time
	events           events.Collector
}

// NewSaleAccountParams groups the inputs of NewSaleAccount.
type NewSaleAccountParams struct {
	TenantID         uuid.UUID
	Property         valueobject.Property
	CustomerRef      string
	Currency         money.Currency
	TotalPrice       decimal.Decimal
	InitialPayment   decimal.Decimal
	InterestRate     decimal.NullDecimal
	LateInterestRate decimal.NullDecimal
	Model            valueobject.AmortizationModel
	Frequency        valueobject.Frequency
	BalloonFraction  decimal.NullDecimal
	Installments     []Installment
	Now              time.Time
}

// NewSaleAccount opens an account over an already generated schedule. The
// principal retired by the schedule must equal the financed balance.
func NewSaleAccount(p NewSaleAccountParams) (SaleAccount, error) {
	if p.TenantID == uuid.Nil {
		return SaleAccount{}, Fail(ErrInvalidArgument, "tenant_id", "is required")
	}
	if p.Property.IsZero() {
		return SaleAccount{}, Fail(ErrInvalidArgument, "property", "is required")
	}
	if strings.TrimSpace(p.CustomerRef) == "" {
		return SaleAccount{}, Fail(ErrInvalidArgument, "customer_ref", "is required")
	}
	if p.Currency.IsZero() {
		return SaleAccount{}, Fail(ErrInvalidArgument, "currency", "is required")
	}
	if !p.TotalPrice.IsPositive() {
		return SaleAccount{}, Fail(ErrInvalidAmount, "total_price", "must be positive")
	}
	if p.InitialPayment.IsNegative() {
		return SaleAccount{}, Fail(ErrInvalidAmount, "initial_payment", "must not be negative")
	}
	financed := p.TotalPrice.Sub(p.InitialPayment)
	if !financed.IsPositive() {
		return SaleAccount{}, Fail(ErrInvalidAmount, "initial_payment", "must be lower than the total price")
	}
	if p.InterestRate.Valid && p.InterestRate.Decimal.IsNegative() {
		return SaleAccount{}, Fail(ErrInvalidRate, "interest_rate", "must not be negative")
	}
	if p.LateInterestRate.Valid && p.LateInterestRate.Decimal.IsNegative() {
		return SaleAccount{}, Fail(ErrInvalidRate, "late_interest_rate", "must not be negative")
	}
	if len(p.Installments) == 0 {
		return SaleAccount{}, Fail(ErrInvalidSchedule, "installments", "at least one installment is required")
	}

	retired := decimal.Zero
	for _, inst := range p.Installments {
		if inst.Principal.Valid {
			retired = retired.Add(inst.Principal.Decimal)
		} else {
			retired = retired.Add(inst.Amount)
		}
	}
	if !retired.Equal(financed) {
		return SaleAccount{}, Fail(ErrInvalidSchedule, "installments",
			fmt.Sprintf("schedule retires %s, financed balance is %s", retired.StringFixed(2), financed.StringFixed(2)))
	}

	now := p.Now.UTC()
	acc := SaleAccount{
		id:               uuid.New(),
		tenantID:         p.TenantID,
		property:         p.Property,
		customerRef:      strings.TrimSpace(p.CustomerRef),
		currency:         p.Currency,
		totalPrice:       p.TotalPrice,
		initialPayment:   p.InitialPayment,
		financedBalance:  financed,
		interestRate:     p.InterestRate,
		lateInterestRate: p.LateInterestRate,
		model:            p.Model,
		frequency:        p.Frequency,
		balloonFraction:  p.BalloonFraction,
		installments:     CloneInstallments(p.Installments),
		createdAt:        now,
		updatedAt:        now,
	}
	if err := acc.Validate(); err != nil {
		return SaleAccount{}, err
	}

	acc.events.Record(event.NewSaleAccountCreated(
		acc.id, acc.tenantID,
		acc.property.Kind().String(), acc.property.Ref(), acc.customerRef, acc.currency.Code(),
		financed, len(acc.installments),
		acc.model.String(), acc.interestRate,
		now,
	))
	return acc, nil
}

// SaleAccountSnapshot is the persisted form of a SaleAccount.
type SaleAccountSnapshot struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	Property         valueobject.Property
	CustomerRef      string
	Currency         money.Currency
	TotalPrice       decimal.Decimal
	InitialPayment   decimal.Decimal
	FinancedBalance  decimal.Decimal
	InterestRate     decimal.NullDecimal
	LateInterestRate decimal.NullDecimal
	Model            valueobject.AmortizationModel
	Frequency        valueobject.Frequency
	BalloonFraction  decimal.NullDecimal
	Installments     []Installment
	Reprogrammings   []Reprogramming
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ReconstructSaleAccount rebuilds a SaleAccount from persistence.
func ReconstructSaleAccount(s SaleAccountSnapshot) SaleAccount {
	reprogrammings := make([]Reprogramming, len(s.Reprogrammings))
	for k, r := range s.Reprogrammings {
		reprogrammings[k] = r.clone()
	}
	return SaleAccount{
		id:               s.ID,
		tenantID:         s.TenantID,
		property:         s.Property,
		customerRef:      s.CustomerRef,
		currency:         s.Currency,
		totalPrice:       s.TotalPrice,
		initialPayment:   s.InitialPayment,
		financedBalance:  s.FinancedBalance,
		interestRate:     s.InterestRate,
		lateInterestRate: s.LateInterestRate,
		model:            s.Model,
		frequency:        s.Frequency,
		balloonFraction:  s.BalloonFraction,
		installments:     CloneInstallments(s.Installments),
		reprogrammings:   reprogrammings,
		version:          s.Version,
		createdAt:        s.CreatedAt,
		updatedAt:        s.UpdatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// RecordPayment appends p to its installment and advances the installment
// state. The caller has already split p into Applied and LateInterest.
func (a SaleAccount) RecordPayment(p Payment, now time.Time) (SaleAccount, error) {
	idx := a.indexOf(p.InstallmentID)
	if idx < 0 {
		return a, &InstallmentError{Err: ErrInstallmentNotFound, InstallmentID: p.InstallmentID}
	}
	inst := a.installments[idx]
	if inst.IsPaid() {
		return a, FailAt(ErrImmutableInstallment, inst, "state", "installment is already paid")
	}
	if !p.Amount.IsPositive() || p.Applied.IsNegative() || p.LateInterest.IsNegative() {
		return a, FailAt(ErrInvalidAmount, inst, "amount", "payment amounts must be positive")
	}
	if !p.Applied.Add(p.LateInterest).Equal(p.Amount) {
		return a, FailAt(ErrInvalidAmount, inst, "amount", "applied and late interest must add up to the amount")
	}
	if p.Applied.GreaterThan(inst.Pending()) {
		return a, FailAt(ErrOverpayment, inst, "amount",
			fmt.Sprintf("applied %s exceeds pending %s", p.Applied.StringFixed(2), inst.Pending().StringFixed(2)))
	}

	now = now.UTC()
	next := a.fork()
	updated := next.installments[idx]
	updated.Payments = append(updated.Payments, p)
	updated.AmountPaid = updated.AmountPaid.Add(p.Applied)
	updated.State = updated.SettleState()
	next.installments[idx] = updated
	next.updatedAt = now

	next.events.Record(event.NewPaymentApplied(
		a.id, a.tenantID, p.ID, updated.ID, updated.Number,
		p.Amount, p.Applied, p.LateInterest,
		p.Method.String(), p.ReceiptRef, updated.State.String(),
		now,
	))
	if updated.IsPaid() {
		next.events.Record(event.NewInstallmentPaid(a.id, a.tenantID, updated.ID, updated.Number, false, now))
		if next.Status() == valueobject.AccountSettled {
			next.events.Record(event.NewSaleAccountSettled(a.id, a.tenantID, now))
		}
	}
	return next, nil
}

// Reschedule replaces the installments with their reprogrammed versions and
// appends r to the history. Installments are never added or removed. When
// terms is non-nil the account's amortization terms are replaced too.
func (a SaleAccount) Reschedule(installments []Installment, r Reprogramming, terms *AmortizationParams, now time.Time) (SaleAccount, error) {
	if err := a.sameInstallments(installments); err != nil {
		return a, err
	}
	if strings.TrimSpace(r.Reason) == "" {
		return a, Fail(ErrMissingReason, "reason", "")
	}

	now = now.UTC()
	next := a.fork()
	next.installments = CloneInstallments(installments)
	if terms != nil {
		next.interestRate = terms.Rate
		next.model = terms.Model
		next.frequency = terms.Frequency
		next.balloonFraction = terms.BalloonFraction
	}
	r.SaleAccountID = a.id
	next.reprogrammings = append(next.reprogrammings, r.clone())
	next.updatedAt = now
	if err := next.Validate(); err != nil {
		return a, err
	}

	next.events.Record(event.NewSaleAccountReprogrammed(
		a.id, a.tenantID, r.ID, r.ActorID, r.Reason,
		len(r.Modifications), len(r.Discounts), r.PlanChange != nil,
		now,
	))
	for k, inst := range next.installments {
		if inst.IsPaid() && !a.installments[k].IsPaid() {
			next.events.Record(event.NewInstallmentPaid(a.id, a.tenantID, inst.ID, inst.Number, true, now))
		}
	}
	if a.Status() != valueobject.AccountSettled && next.Status() == valueobject.AccountSettled {
		next.events.Record(event.NewSaleAccountSettled(a.id, a.tenantID, now))
	}
	return next, nil
}

// WithBalances replaces the installments with a recalculated copy. Only the
// principal/interest split and the balance chain are expected to differ.
func (a SaleAccount) WithBalances(installments []Installment) (SaleAccount, error) {
	if err := a.sameInstallments(installments); err != nil {
		return a, err
	}
	next := a.fork()
	next.installments = CloneInstallments(installments)
	if err := next.Validate(); err != nil {
		return a, err
	}
	return next, nil
}

// RecordBalanceDrift raises BalanceDriftDetected.
func (a SaleAccount) RecordBalanceDrift(drift *BalanceDriftError, now time.Time) SaleAccount {
	next := a.fork()
	next.events.Record(event.NewBalanceDriftDetected(a.id, a.tenantID, drift.Drift, drift.Tolerance, now))
	return next
}

// ---------------------------------------------------------------------------
// Invariants
// ---------------------------------------------------------------------------

// Validate checks the structural invariants of the installment set.
func (a SaleAccount) Validate() error {
	for k, inst := range a.installments {
		if inst.Number != k+1 {
			return FailAt(ErrInvalidSchedule, inst, "number",
				fmt.Sprintf("expected sequence number %d", k+1))
		}
		if inst.Amount.IsNegative() {
			return FailAt(ErrInvalidAmount, inst, "amount", "must not be negative")
		}
		if inst.AmountPaid.GreaterThan(inst.Amount) {
			return FailAt(ErrOverpayment, inst, "amount_paid",
				fmt.Sprintf("paid %s exceeds amount %s", inst.AmountPaid.StringFixed(2), inst.Amount.StringFixed(2)))
		}
		if inst.Principal.Valid && inst.Interest.Valid &&
			!inst.Principal.Decimal.Add(inst.Interest.Decimal).Equal(inst.Amount) {
			return FailAt(ErrInvalidSchedule, inst, "principal",
				"principal and interest must add up to the amount")
		}
		applied := decimal.Zero
		for _, p := range inst.Payments {
			applied = applied.Add(p.Amount.Sub(p.LateInterest))
		}
		if !applied.Equal(inst.AmountPaid) {
			return FailAt(ErrInvalidSchedule, inst, "payments",
				fmt.Sprintf("payments apply %s, amount paid is %s", applied.StringFixed(2), inst.AmountPaid.StringFixed(2)))
		}
		if !inst.State.Equal(inst.SettleState()) {
			return FailAt(ErrInvalidSchedule, inst, "state",
				fmt.Sprintf("state %s does not match amounts", inst.State))
		}
	}
	return nil
}

func (a SaleAccount) sameInstallments(installments []Installment) error {
	if len(installments) != len(a.installments) {
		return Fail(ErrInvalidSchedule, "installments", "installments cannot be added or removed")
	}
	for k, inst := range installments {
		if inst.ID != a.installments[k].ID {
			return FailAt(ErrInvalidSchedule, inst, "id", "installment order or identity changed")
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (a SaleAccount) ID() uuid.UUID                         { return a.id }
func (a SaleAccount) TenantID() uuid.UUID                   { return a.tenantID }
func (a SaleAccount) Property() valueobject.Property        { return a.property }
func (a SaleAccount) CustomerRef() string                   { return a.customerRef }
func (a SaleAccount) Currency() money.Currency              { return a.currency }
func (a SaleAccount) TotalPrice() decimal.Decimal           { return a.totalPrice }
func (a SaleAccount) InitialPayment() decimal.Decimal       { return a.initialPayment }
func (a SaleAccount) FinancedBalance() decimal.Decimal      { return a.financedBalance }
func (a SaleAccount) InterestRate() decimal.NullDecimal     { return a.interestRate }
func (a SaleAccount) LateInterestRate() decimal.NullDecimal { return a.lateInterestRate }
func (a SaleAccount) Model() valueobject.AmortizationModel  { return a.model }
func (a SaleAccount) Frequency() valueobject.Frequency      { return a.frequency }
func (a SaleAccount) BalloonFraction() decimal.NullDecimal  { return a.balloonFraction }
func (a SaleAccount) Version() int                          { return a.version }
func (a SaleAccount) CreatedAt() time.Time                  { return a.createdAt }
func (a SaleAccount) UpdatedAt() time.Time                  { return a.updatedAt }
func (a SaleAccount) DomainEvents() []event.DomainEvent     { return a.events.Events() }
func (a SaleAccount) InstallmentCount() int                 { return len(a.installments) }

// AmortizationParams returns the account's active amortization terms.
func (a SaleAccount) AmortizationParams() AmortizationParams {
	return AmortizationParams{
		Rate:            a.interestRate,
		Model:           a.model,
		Frequency:       a.frequency,
		BalloonFraction: a.balloonFraction,
	}
}

// Installments returns a deep copy of the schedule in sequence order.
func (a SaleAccount) Installments() []Installment {
	return CloneInstallments(a.installments)
}

// PaymentByReceipt finds the payment recorded under a non-empty receipt
// reference.
func (a SaleAccount) PaymentByReceipt(ref string) (Payment, bool) {
	if ref == "" {
		return Payment{}, false
	}
	for _, inst := range a.installments {
		for _, p := range inst.Payments {
			if p.ReceiptRef == ref {
				return p, true
			}
		}
	}
	return Payment{}, false
}

// Installment looks an installment up by ID.
func (a SaleAccount) Installment(id uuid.UUID) (Installment, bool) {
	idx := a.indexOf(id)
	if idx < 0 {
		return Installment{}, false
	}
	return a.installments[idx].Clone(), true
}

// Reprogrammings returns the audit history, oldest first.
func (a SaleAccount) Reprogrammings() []Reprogramming {
	out := make([]Reprogramming, len(a.reprogrammings))
	for k, r := range a.reprogrammings {
		out[k] = r.clone()
	}
	return out
}

// Status is SETTLED once every installment is PAID.
func (a SaleAccount) Status() valueobject.AccountStatus {
	for _, inst := range a.installments {
		if !inst.IsPaid() {
			return valueobject.AccountActive
		}
	}
	return valueobject.AccountSettled
}

// ClearEvents returns a copy with an empty event list.
func (a SaleAccount) ClearEvents() SaleAccount {
	next := a
	next.events = events.Collector{}
	return next
}

func (a SaleAccount) indexOf(id uuid.UUID) int {
	for k, inst := range a.installments {
		if inst.ID == id {
			return k
		}
	}
	return -1
}

func (a SaleAccount) fork() SaleAccount {
	next := a
	next.installments = CloneInstallments(a.installments)
	next.reprogrammings = append([]Reprogramming(nil), a.reprogrammings...)
	next.events = a.events.Fork()
	return next
}
