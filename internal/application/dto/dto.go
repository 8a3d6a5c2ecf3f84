package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// CustomInstallmentRequest is one caller-defined installment.
type CustomInstallmentRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	DueDate time.Time       `json:"due_date"`
}

// ScheduleTerms are the credit terms shared by creation and preview.
// CustomInstallments, when present, replace InstallmentCount, Frequency and
// FirstDueDate.
type ScheduleTerms struct {
	TotalPrice         decimal.Decimal            `json:"total_price"`
	InitialPayment     decimal.Decimal            `json:"initial_payment"`
	InstallmentCount   int                        `json:"installment_count"`
	Frequency          string                     `json:"frequency"`
	FirstDueDate       time.Time                  `json:"first_due_date"`
	CustomInstallments []CustomInstallmentRequest `json:"custom_installments,omitempty"`
	InterestRate       *decimal.Decimal           `json:"interest_rate,omitempty"`
	AmortizationModel  string                     `json:"amortization_model,omitempty"`
	BalloonFraction    *decimal.Decimal           `json:"balloon_fraction,omitempty"`
}

// CreateSaleAccountRequest opens the credit account of a property sale.
type CreateSaleAccountRequest struct {
	TenantID         uuid.UUID        `json:"tenant_id"`
	PropertyKind     string           `json:"property_kind"`
	PropertyRef      string           `json:"property_ref"`
	CustomerRef      string           `json:"customer_ref"`
	Currency         string           `json:"currency"`
	LateInterestRate *decimal.Decimal `json:"late_interest_rate,omitempty"`
	ScheduleTerms
}

// PreviewScheduleRequest simulates a schedule without storing anything.
type PreviewScheduleRequest struct {
	ScheduleTerms
}

// GetSaleAccountRequest identifies an account. AsOf drives the OVERDUE
// labels and mora; zero means now.
type GetSaleAccountRequest struct {
	TenantID      uuid.UUID `json:"tenant_id"`
	SaleAccountID uuid.UUID `json:"sale_account_id"`
	AsOf          time.Time `json:"as_of"`
}

// ComputeMoraRequest asks for the late-interest statement of an account.
// Rate overrides the account's late-interest rate.
type ComputeMoraRequest struct {
	TenantID      uuid.UUID        `json:"tenant_id"`
	SaleAccountID uuid.UUID        `json:"sale_account_id"`
	AsOf          time.Time        `json:"as_of"`
	Rate          *decimal.Decimal `json:"rate,omitempty"`
}

// ApplyPaymentRequest records money received for one installment.
type ApplyPaymentRequest struct {
	TenantID      uuid.UUID       `json:"tenant_id"`
	SaleAccountID uuid.UUID       `json:"sale_account_id"`
	InstallmentID uuid.UUID       `json:"installment_id"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Method        string          `json:"method"`
	Note          string          `json:"note,omitempty"`
	ReceiptRef    string          `json:"receipt_ref,omitempty"`
}

// ModificationRequest changes the amount and/or due date of an installment.
type ModificationRequest struct {
	InstallmentID uuid.UUID        `json:"installment_id"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	DueDate       *time.Time       `json:"due_date,omitempty"`
}

// DiscountRequest forgives part of an installment.
type DiscountRequest struct {
	InstallmentID uuid.UUID       `json:"installment_id"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason,omitempty"`
}

// PlanChangeRequest re-amortizes the unpaid installments. Empty fields keep
// the current terms.
type PlanChangeRequest struct {
	AmortizationModel string           `json:"amortization_model,omitempty"`
	InterestRate      *decimal.Decimal `json:"interest_rate,omitempty"`
	Frequency         string           `json:"frequency,omitempty"`
	FirstDueDate      *time.Time       `json:"first_due_date,omitempty"`
	BalloonFraction   *decimal.Decimal `json:"balloon_fraction,omitempty"`
}

// ReprogramRequest is one audited batch edit. ActorID is taken from the
// caller's credentials, never from the payload.
type ReprogramRequest struct {
	TenantID      uuid.UUID             `json:"-"`
	SaleAccountID uuid.UUID             `json:"-"`
	ActorID       uuid.UUID             `json:"-"`
	Reason        string                `json:"reason"`
	Modifications []ModificationRequest `json:"modifications,omitempty"`
	Discounts     []DiscountRequest     `json:"discounts,omitempty"`
	PlanChange    *PlanChangeRequest    `json:"plan_change,omitempty"`
}

// RecalculateBalancesRequest identifies the account to recalculate.
type RecalculateBalancesRequest struct {
	TenantID      uuid.UUID `json:"tenant_id"`
	SaleAccountID uuid.UUID `json:"sale_account_id"`
}

// ListReprogrammingsRequest identifies the account whose history is read.
type ListReprogrammingsRequest struct {
	TenantID      uuid.UUID `json:"tenant_id"`
	SaleAccountID uuid.UUID `json:"sale_account_id"`
}

// OverdueSweepRequest scans active accounts. A nil TenantID sweeps every
// tenant; a zero AsOf means now.
type OverdueSweepRequest struct {
	TenantID uuid.UUID `json:"tenant_id"`
	AsOf     time.Time `json:"as_of"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// PaymentResponse is the external representation of a payment.
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	InstallmentID uuid.UUID       `json:"installment_id"`
	Amount        decimal.Decimal `json:"amount"`
	Applied       decimal.Decimal `json:"applied"`
	LateInterest  decimal.Decimal `json:"late_interest"`
	Date          time.Time       `json:"date"`
	Method        string          `json:"method"`
	Note          string          `json:"note,omitempty"`
	ReceiptRef    string          `json:"receipt_ref,omitempty"`
	RecordedAt    time.Time       `json:"recorded_at"`
}

// InstallmentResponse is an installment as seen at AsOf.
type InstallmentResponse struct {
	ID            uuid.UUID         `json:"id"`
	Number        int               `json:"number"`
	DueDate       time.Time         `json:"due_date"`
	Amount        decimal.Decimal   `json:"amount"`
	Principal     *decimal.Decimal  `json:"principal,omitempty"`
	Interest      *decimal.Decimal  `json:"interest,omitempty"`
	AmountPaid    decimal.Decimal   `json:"amount_paid"`
	Discounted    decimal.Decimal   `json:"discounted"`
	Pending       decimal.Decimal   `json:"pending"`
	BalanceBefore decimal.Decimal   `json:"balance_before"`
	BalanceAfter  decimal.Decimal   `json:"balance_after"`
	State         string            `json:"state"`
	Status        string            `json:"status"`
	DaysLate      int               `json:"days_late"`
	Mora          decimal.Decimal   `json:"mora"`
	Payments      []PaymentResponse `json:"payments,omitempty"`
}

// SaleAccountResponse is the external representation of a sale account.
type SaleAccountResponse struct {
	ID                uuid.UUID             `json:"id"`
	TenantID          uuid.UUID             `json:"tenant_id"`
	PropertyKind      string                `json:"property_kind"`
	PropertyRef       string                `json:"property_ref"`
	CustomerRef       string                `json:"customer_ref"`
	Currency          string                `json:"currency"`
	TotalPrice        decimal.Decimal       `json:"total_price"`
	InitialPayment    decimal.Decimal       `json:"initial_payment"`
	FinancedBalance   decimal.Decimal       `json:"financed_balance"`
	InterestRate      *decimal.Decimal      `json:"interest_rate,omitempty"`
	LateInterestRate  *decimal.Decimal      `json:"late_interest_rate,omitempty"`
	AmortizationModel string                `json:"amortization_model,omitempty"`
	Frequency         string                `json:"frequency"`
	BalloonFraction   *decimal.Decimal      `json:"balloon_fraction,omitempty"`
	Status            string                `json:"status"`
	AsOf              time.Time             `json:"as_of"`
	PendingTotal      decimal.Decimal       `json:"pending_total"`
	MoraTotal         decimal.Decimal       `json:"mora_total"`
	Installments      []InstallmentResponse `json:"installments"`
	Version           int                   `json:"version"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// SchedulePreviewResponse is a simulated schedule.
type SchedulePreviewResponse struct {
	FinancedBalance decimal.Decimal       `json:"financed_balance"`
	TotalInterest   decimal.Decimal       `json:"total_interest"`
	TotalToPay      decimal.Decimal       `json:"total_to_pay"`
	Drift           decimal.Decimal       `json:"drift"`
	DriftWarning    string                `json:"drift_warning,omitempty"`
	Installments    []InstallmentResponse `json:"installments"`
}

// MoraLine is the late interest of one overdue installment.
type MoraLine struct {
	InstallmentID uuid.UUID       `json:"installment_id"`
	Number        int             `json:"number"`
	DueDate       time.Time       `json:"due_date"`
	DaysLate      int             `json:"days_late"`
	Pending       decimal.Decimal `json:"pending"`
	Mora          decimal.Decimal `json:"mora"`
}

// MoraStatementResponse lists overdue installments with their mora.
type MoraStatementResponse struct {
	SaleAccountID uuid.UUID       `json:"sale_account_id"`
	AsOf          time.Time       `json:"as_of"`
	Rate          decimal.Decimal `json:"rate"`
	Lines         []MoraLine      `json:"lines"`
	TotalPending  decimal.Decimal `json:"total_pending"`
	TotalMora     decimal.Decimal `json:"total_mora"`
	TotalDue      decimal.Decimal `json:"total_due"`
}

// ApplyPaymentResponse is the outcome of a payment.
type ApplyPaymentResponse struct {
	SaleAccountID uuid.UUID           `json:"sale_account_id"`
	AccountStatus string              `json:"account_status"`
	Payment       PaymentResponse     `json:"payment"`
	Installment   InstallmentResponse `json:"installment"`
}

// ModificationResponse is one recorded modification.
type ModificationResponse struct {
	InstallmentID   uuid.UUID       `json:"installment_id"`
	Number          int             `json:"number"`
	PreviousAmount  decimal.Decimal `json:"previous_amount"`
	NewAmount       decimal.Decimal `json:"new_amount"`
	PreviousDueDate time.Time       `json:"previous_due_date"`
	NewDueDate      time.Time       `json:"new_due_date"`
}

// DiscountResponse is one recorded discount.
type DiscountResponse struct {
	InstallmentID uuid.UUID       `json:"installment_id"`
	Number        int             `json:"number"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason"`
}

// ReprogrammingResponse is one audit record.
type ReprogrammingResponse struct {
	ID            uuid.UUID              `json:"id"`
	SaleAccountID uuid.UUID              `json:"sale_account_id"`
	Reason        string                 `json:"reason"`
	ActorID       uuid.UUID              `json:"actor_id"`
	CreatedAt     time.Time              `json:"created_at"`
	PlanChange    *PlanChangeRequest     `json:"plan_change,omitempty"`
	Modifications []ModificationResponse `json:"modifications"`
	Discounts     []DiscountResponse     `json:"discounts"`
}

// ReprogramResponse returns the record and the account after the change.
type ReprogramResponse struct {
	Reprogramming ReprogrammingResponse `json:"reprogramming"`
	Account       SaleAccountResponse   `json:"account"`
}

// ListReprogrammingsResponse is the audit history, oldest first.
type ListReprogrammingsResponse struct {
	SaleAccountID  uuid.UUID               `json:"sale_account_id"`
	Reprogrammings []ReprogrammingResponse `json:"reprogrammings"`
}

// OverdueSweepResponse summarises a sweep.
type OverdueSweepResponse struct {
	AsOf                time.Time       `json:"as_of"`
	AccountsScanned     int             `json:"accounts_scanned"`
	AccountsOverdue     int             `json:"accounts_overdue"`
	InstallmentsOverdue int             `json:"installments_overdue"`
	TotalPending        decimal.Decimal `json:"total_pending"`
	TotalMora           decimal.Decimal `json:"total_mora"`
}
