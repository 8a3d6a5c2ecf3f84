package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/PremHer/kasvarealty-sub001/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// AggregateSaleAccount is the aggregate type stamped on every event here.
const AggregateSaleAccount = "SaleAccount"

const (
	TypeSaleAccountCreated   = "installment.sale_account.created"
	TypePaymentApplied       = "installment.payment.applied"
	TypeInstallmentPaid      = "installment.installment.paid"
	TypeSaleAccountSettled   = "installment.sale_account.settled"
	TypeSaleAccountReprogram = "installment.sale_account.reprogrammed"
	TypeBalanceDriftDetected = "installment.sale_account.balance_drift_detected"
	TypeInstallmentsOverdue  = "installment.installments.overdue"
)

// ---------------------------------------------------------------------------
// Sale account lifecycle
// ---------------------------------------------------------------------------

// SaleAccountCreated is raised once the schedule of a new sale is stored.
type SaleAccountCreated struct {
	events.BaseEvent
	PropertyKind     string          `json:"property_kind"`
	PropertyRef      string          `json:"property_ref"`
	CustomerRef      string          `json:"customer_ref"`
	Currency         string          `json:"currency"`
	FinancedBalance  decimal.Decimal `json:"financed_balance"`
	InstallmentCount int             `json:"installment_count"`
	Model            string          `json:"amortization_model,omitempty"`
	InterestRate     *string         `json:"interest_rate,omitempty"`
}

func NewSaleAccountCreated(
	accountID, tenantID uuid.UUID,
	propertyKind, propertyRef, customerRef, currency string,
	financed decimal.Decimal, count int,
	model string, rate decimal.NullDecimal,
	at time.Time,
) SaleAccountCreated {
	e := SaleAccountCreated{
		BaseEvent:        events.NewBaseEvent(TypeSaleAccountCreated, accountID, AggregateSaleAccount, tenantID, at),
		PropertyKind:     propertyKind,
		PropertyRef:      propertyRef,
		CustomerRef:      customerRef,
		Currency:         currency,
		FinancedBalance:  financed,
		InstallmentCount: count,
		Model:            model,
	}
	if rate.Valid {
		s := rate.Decimal.String()
		e.InterestRate = &s
	}
	return e
}

// SaleAccountSettled is raised when the last installment becomes PAID.
type SaleAccountSettled struct {
	events.BaseEvent
}

func NewSaleAccountSettled(accountID, tenantID uuid.UUID, at time.Time) SaleAccountSettled {
	return SaleAccountSettled{
		BaseEvent: events.NewBaseEvent(TypeSaleAccountSettled, accountID, AggregateSaleAccount, tenantID, at),
	}
}

// ---------------------------------------------------------------------------
// Payments
// ---------------------------------------------------------------------------

// PaymentApplied is raised for every accepted payment.
type PaymentApplied struct {
	events.BaseEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	InstallmentID uuid.UUID       `json:"installment_id"`
	Number        int             `json:"installment_number"`
	Amount        decimal.Decimal `json:"amount"`
	Applied       decimal.Decimal `json:"applied"`
	LateInterest  decimal.Decimal `json:"late_interest"`
	Method        string          `json:"method"`
	ReceiptRef    string          `json:"receipt_ref,omitempty"`
	State         string          `json:"state"`
}

func NewPaymentApplied(
	accountID, tenantID, paymentID, installmentID uuid.UUID,
	number int,
	amount, applied, lateInterest decimal.Decimal,
	method, receiptRef, state string,
	at time.Time,
) PaymentApplied {
	return PaymentApplied{
		BaseEvent:     events.NewBaseEvent(TypePaymentApplied, accountID, AggregateSaleAccount, tenantID, at),
		PaymentID:     paymentID,
		InstallmentID: installmentID,
		Number:        number,
		Amount:        amount,
		Applied:       applied,
		LateInterest:  lateInterest,
		Method:        method,
		ReceiptRef:    receiptRef,
		State:         state,
	}
}

// InstallmentPaid is raised when an installment reaches PAID, by payment or
// by discount.
type InstallmentPaid struct {
	events.BaseEvent
	InstallmentID uuid.UUID `json:"installment_id"`
	Number        int       `json:"installment_number"`
	ByDiscount    bool      `json:"by_discount"`
}

func NewInstallmentPaid(accountID, tenantID, installmentID uuid.UUID, number int, byDiscount bool, at time.Time) InstallmentPaid {
	return InstallmentPaid{
		BaseEvent:     events.NewBaseEvent(TypeInstallmentPaid, accountID, AggregateSaleAccount, tenantID, at),
		InstallmentID: installmentID,
		Number:        number,
		ByDiscount:    byDiscount,
	}
}

// ---------------------------------------------------------------------------
// Reprogramming and balances
// ---------------------------------------------------------------------------

// SaleAccountReprogrammed summarises one reprogramming batch.
type SaleAccountReprogrammed struct {
	events.BaseEvent
	ReprogrammingID uuid.UUID `json:"reprogramming_id"`
	ActorID         uuid.UUID `json:"actor_id"`
	Reason          string    `json:"reason"`
	Modifications   int       `json:"modifications"`
	Discounts       int       `json:"discounts"`
	PlanChanged     bool      `json:"plan_changed"`
}

func NewSaleAccountReprogrammed(
	accountID, tenantID, reprogrammingID, actorID uuid.UUID,
	reason string, modifications, discounts int, planChanged bool,
	at time.Time,
) SaleAccountReprogrammed {
	return SaleAccountReprogrammed{
		BaseEvent:       events.NewBaseEvent(TypeSaleAccountReprogram, accountID, AggregateSaleAccount, tenantID, at),
		ReprogrammingID: reprogrammingID,
		ActorID:         actorID,
		Reason:          reason,
		Modifications:   modifications,
		Discounts:       discounts,
		PlanChanged:     planChanged,
	}
}

// BalanceDriftDetected flags an amortization rounding residual above
// tolerance.
type BalanceDriftDetected struct {
	events.BaseEvent
	Drift     decimal.Decimal `json:"drift"`
	Tolerance decimal.Decimal `json:"tolerance"`
}

func NewBalanceDriftDetected(accountID, tenantID uuid.UUID, drift, tolerance decimal.Decimal, at time.Time) BalanceDriftDetected {
	return BalanceDriftDetected{
		BaseEvent: events.NewBaseEvent(TypeBalanceDriftDetected, accountID, AggregateSaleAccount, tenantID, at),
		Drift:     drift,
		Tolerance: tolerance,
	}
}

// ---------------------------------------------------------------------------
// Overdue sweep
// ---------------------------------------------------------------------------

// OverdueInstallment is one line of an InstallmentsOverdue event.
type OverdueInstallment struct {
	InstallmentID uuid.UUID       `json:"installment_id"`
	Number        int             `json:"installment_number"`
	DueDate       time.Time       `json:"due_date"`
	DaysLate      int             `json:"days_late"`
	Pending       decimal.Decimal `json:"pending"`
	Mora          decimal.Decimal `json:"mora"`
}

// InstallmentsOverdue lists the overdue installments of one account as of
// a date.
type InstallmentsOverdue struct {
	events.BaseEvent
	AsOf         time.Time            `json:"as_of"`
	Installments []OverdueInstallment `json:"installments"`
	TotalPending decimal.Decimal      `json:"total_pending"`
	TotalMora    decimal.Decimal      `json:"total_mora"`
}

func NewInstallmentsOverdue(
	accountID, tenantID uuid.UUID,
	asOf time.Time,
	lines []OverdueInstallment,
	at time.Time,
) InstallmentsOverdue {
	pending, mora := decimal.Zero, decimal.Zero
	for _, l := range lines {
		pending = pending.Add(l.Pending)
		mora = mora.Add(l.Mora)
	}
	return InstallmentsOverdue{
		BaseEvent:    events.NewBaseEvent(TypeInstallmentsOverdue, accountID, AggregateSaleAccount, tenantID, at),
		AsOf:         asOf,
		Installments: lines,
		TotalPending: pending,
		TotalMora:    mora,
	}
}
