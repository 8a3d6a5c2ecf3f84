// Package access holds what the gRPC and REST surfaces share: the role
// policy per operation, error classification and input parsing.
package access

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/PremHer/kasvarealty-sub001/internal/application/usecase"
	"github.com/PremHer/kasvarealty-sub001/pkg/auth"
)

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrPermissionDenied = errors.New("permission denied")
)

// Operation names an exposed use case.
type Operation string

const (
	OpCreateSaleAccount   Operation = "CreateSaleAccount"
	OpPreviewSchedule     Operation = "PreviewSchedule"
	OpGetSaleAccount      Operation = "GetSaleAccount"
	OpComputeMora         Operation = "ComputeMora"
	OpApplyPayment        Operation = "ApplyPayment"
	OpReprogram           Operation = "Reprogram"
	OpRecalculateBalances Operation = "RecalculateBalances"
	OpListReprogrammings  Operation = "ListReprogrammings"
)

var readers = []string{auth.RoleAdmin, auth.RoleSalesManager, auth.RoleCashier, auth.RoleAuditor}

var policy = map[Operation][]string{
	OpCreateSaleAccount:   {auth.RoleAdmin, auth.RoleSalesManager},
	OpPreviewSchedule:     readers,
	OpGetSaleAccount:      readers,
	OpComputeMora:         readers,
	OpApplyPayment:        {auth.RoleAdmin, auth.RoleCashier},
	OpReprogram:           {auth.RoleAdmin, auth.RoleSalesManager},
	OpRecalculateBalances: {auth.RoleAdmin},
	OpListReprogrammings:  readers,
}

// Authorize returns the caller's claims when they may run op. Claims must
// name both a user and a tenant.
func Authorize(ctx context.Context, op Operation) (*auth.Claims, error) {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok || claims.UserID == uuid.Nil || claims.TenantID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if !claims.HasAnyRole(policy[op]...) {
		return nil, ErrPermissionDenied
	}
	return claims, nil
}

// Kind groups errors the way both transports report them.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindPrecondition
	KindNotFound
	KindConflict
	KindUnauthenticated
	KindPermissionDenied
	KindTimeout
)

var kinds = map[string]Kind{
	"invalid_argument":         KindInvalid,
	"invalid_schedule":         KindInvalid,
	"model_mismatch":           KindInvalid,
	"invalid_rate":             KindInvalid,
	"invalid_amount":           KindInvalid,
	"missing_reason":           KindInvalid,
	"past_date":                KindInvalid,
	"empty_reprogramming":      KindInvalid,
	"out_of_order_payment":     KindPrecondition,
	"overpayment":              KindPrecondition,
	"immutable_installment":    KindPrecondition,
	"discount_exceeds_balance": KindPrecondition,
	"partially_paid":           KindPrecondition,
	"installment_not_found":    KindNotFound,
	"sale_account_not_found":   KindNotFound,
	"concurrent_modification":  KindConflict,
	"duplicate_payment":        KindConflict,
}

// Classify maps err to a Kind and the stable code reported to clients.
func Classify(err error) (Kind, string) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated, "unauthenticated"
	case errors.Is(err, ErrPermissionDenied):
		return KindPermissionDenied, "permission_denied"
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout, "timeout"
	}
	code := usecase.ErrorCode(err)
	if k, ok := kinds[code]; ok {
		return k, code
	}
	return KindInternal, code
}
