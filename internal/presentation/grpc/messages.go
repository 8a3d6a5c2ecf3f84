package grpc

import "github.com/PremHer/kasvarealty-sub001/internal/application/dto"

// The tenant always comes from the caller's token; tenant fields in a
// payload are ignored.

// CreateSaleAccountRequest opens a sale account.
type CreateSaleAccountRequest struct {
	PropertyKind     string            `json:"property_kind"`
	PropertyRef      string            `json:"property_ref"`
	CustomerRef      string            `json:"customer_ref"`
	Currency         string            `json:"currency"`
	LateInterestRate string            `json:"late_interest_rate"`
	Terms            dto.ScheduleTerms `json:"terms"`
}

// PreviewScheduleRequest simulates a schedule.
type PreviewScheduleRequest struct {
	Terms dto.ScheduleTerms `json:"terms"`
}

// GetSaleAccountRequest reads an account as of a date.
type GetSaleAccountRequest struct {
	SaleAccountID string `json:"sale_account_id"`
	AsOf          string `json:"as_of"`
}

// ComputeMoraRequest asks for the late-interest statement.
type ComputeMoraRequest struct {
	SaleAccountID string `json:"sale_account_id"`
	AsOf          string `json:"as_of"`
	Rate          string `json:"rate"`
}

// ApplyPaymentRequest records a payment.
type ApplyPaymentRequest struct {
	SaleAccountID string `json:"sale_account_id"`
	InstallmentID string `json:"installment_id"`
	Amount        string `json:"amount"`
	Date          string `json:"date"`
	Method        string `json:"method"`
	Note          string `json:"note"`
	ReceiptRef    string `json:"receipt_ref"`
}

// ReprogramRequest is one audited batch edit.
type ReprogramRequest struct {
	SaleAccountID string                    `json:"sale_account_id"`
	Reason        string                    `json:"reason"`
	Modifications []dto.ModificationRequest `json:"modifications"`
	Discounts     []dto.DiscountRequest     `json:"discounts"`
	PlanChange    *dto.PlanChangeRequest    `json:"plan_change"`
}

// RecalculateBalancesRequest identifies the account to recalculate.
type RecalculateBalancesRequest struct {
	SaleAccountID string `json:"sale_account_id"`
}

// ListReprogrammingsRequest identifies the account whose history is read.
type ListReprogrammingsRequest struct {
	SaleAccountID string `json:"sale_account_id"`
}
