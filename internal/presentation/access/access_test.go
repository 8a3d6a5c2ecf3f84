package access_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/internal/presentation/access"
	"github.com/PremHer/kasvarealty-sub001/pkg/auth"
)

func withRoles(roles ...string) context.Context {
	return auth.ContextWithClaims(context.Background(), &auth.Claims{
		UserID: uuid.New(), TenantID: uuid.New(), Roles: roles,
	})
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		op      access.Operation
		wantErr error
	}{
		{"no claims", context.Background(), access.OpGetSaleAccount, access.ErrUnauthenticated},
		{"claims without tenant", auth.ContextWithClaims(context.Background(), &auth.Claims{UserID: uuid.New(), Roles: []string{auth.RoleAdmin}}), access.OpGetSaleAccount, access.ErrUnauthenticated},
		{"auditor reads", withRoles(auth.RoleAuditor), access.OpComputeMora, nil},
		{"auditor cannot pay", withRoles(auth.RoleAuditor), access.OpApplyPayment, access.ErrPermissionDenied},
		{"cashier pays", withRoles(auth.RoleCashier), access.OpApplyPayment, nil},
		{"cashier cannot reprogram", withRoles(auth.RoleCashier), access.OpReprogram, access.ErrPermissionDenied},
		{"sales manager reprograms", withRoles(auth.RoleSalesManager), access.OpReprogram, nil},
		{"only admin recalculates", withRoles(auth.RoleSalesManager), access.OpRecalculateBalances, access.ErrPermissionDenied},
		{"unknown role", withRoles("guest"), access.OpPreviewSchedule, access.ErrPermissionDenied},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := access.Authorize(tc.ctx, tc.op)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, claims.UserID)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		kind access.Kind
		code string
	}{
		{model.FailAt(model.ErrOverpayment, model.Installment{Number: 2}, "amount", "too much"), access.KindPrecondition, "overpayment"},
		{fmt.Errorf("find sale account: %w", model.ErrSaleAccountNotFound), access.KindNotFound, "sale_account_not_found"},
		{model.ErrConcurrentModification, access.KindConflict, "concurrent_modification"},
		{model.ErrDuplicatePayment, access.KindConflict, "duplicate_payment"},
		{model.Fail(model.ErrPastDate, "due_date", "before today"), access.KindInvalid, "past_date"},
		{access.ErrPermissionDenied, access.KindPermissionDenied, "permission_denied"},
		{fmt.Errorf("save: %w", context.DeadlineExceeded), access.KindTimeout, "timeout"},
		{errors.New("connection reset"), access.KindInternal, "internal"},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			kind, code := access.Classify(tc.err)
			assert.Equal(t, tc.kind, kind)
			assert.Equal(t, tc.code, code)
		})
	}
}

func TestParse(t *testing.T) {
	_, err := access.ParseID("sale_account_id", "nope")
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	d, err := access.ParseDate("as_of", "2025-02-28")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), d)

	d, err = access.ParseDate("as_of", "")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = access.ParseDate("as_of", "28/02/2025")
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	amt, err := access.ParseDecimal("amount", "150.25")
	require.NoError(t, err)
	assert.Equal(t, "150.25", amt.String())

	rate, err := access.ParseOptionalDecimal("rate", "")
	require.NoError(t, err)
	assert.Nil(t, rate)

	_, err = access.ParseOptionalDecimal("rate", "x")
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
}
