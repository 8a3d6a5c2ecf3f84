package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Validation and invariant errors. Engine operations return them wrapped in
// an *InstallmentError; match with errors.Is.
var (
	ErrInvalidSchedule        = errors.New("invalid schedule")
	ErrModelMismatch          = errors.New("interest rate requires a known amortization model")
	ErrInvalidRate            = errors.New("invalid rate")
	ErrOutOfOrderPayment      = errors.New("previous installment is not paid")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrOverpayment            = errors.New("payment exceeds pending balance")
	ErrMissingReason          = errors.New("reprogramming reason is required")
	ErrImmutableInstallment   = errors.New("installment is already paid")
	ErrPastDate               = errors.New("due date is in the past")
	ErrDiscountExceedsBalance = errors.New("discount exceeds pending balance")
	ErrPartiallyPaid          = errors.New("installment is partially paid")
	ErrEmptyReprogramming     = errors.New("reprogramming has no changes")
	ErrInstallmentNotFound    = errors.New("installment not found")
	ErrSaleAccountNotFound    = errors.New("sale account not found")
	ErrConcurrentModification = errors.New("sale account was modified concurrently")
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrDuplicatePayment       = errors.New("payment receipt already recorded")
)

// InstallmentError names the installment and field that caused a rejection.
// InstallmentID and Number are zero when the error concerns the account as a
// whole.
type InstallmentError struct {
	Err           error
	InstallmentID uuid.UUID
	Number        int
	Field         string
	Detail        string
}

// Fail builds an account-level error.
func Fail(err error, field, detail string) *InstallmentError {
	return &InstallmentError{Err: err, Field: field, Detail: detail}
}

// FailAt builds an error pointing at inst.
func FailAt(err error, inst Installment, field, detail string) *InstallmentError {
	return &InstallmentError{
		Err:           err,
		InstallmentID: inst.ID,
		Number:        inst.Number,
		Field:         field,
		Detail:        detail,
	}
}

func (e *InstallmentError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.Number > 0 {
		fmt.Fprintf(&b, ": installment #%d", e.Number)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " [%s]", e.Field)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *InstallmentError) Unwrap() error { return e.Err }

// BalanceDriftError reports a rounding residual larger than tolerated. The
// schedule it refers to has already been snapped; it is raised for
// investigation, not to abort.
type BalanceDriftError struct {
	Drift     decimal.Decimal
	Tolerance decimal.Decimal
}

func (e *BalanceDriftError) Error() string {
	return fmt.Sprintf("balance drift %s exceeds tolerance %s", e.Drift.StringFixed(2), e.Tolerance.StringFixed(2))
}
