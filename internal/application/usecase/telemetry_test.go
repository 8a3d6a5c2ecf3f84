package usecase_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/PremHer/kasvarealty-sub001/internal/application/dto"
	"github.com/PremHer/kasvarealty-sub001/internal/application/usecase"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/service"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{model.Fail(model.ErrOverpayment, "amount", ""), "overpayment"},
		{fmt.Errorf("apply payment: %w", model.ErrOutOfOrderPayment), "out_of_order_payment"},
		{fmt.Errorf("find sale account: %w", model.ErrSaleAccountNotFound), "sale_account_not_found"},
		{model.ErrConcurrentModification, "concurrent_modification"},
		{model.ErrDuplicatePayment, "duplicate_payment"},
		{fmt.Errorf("save sale account: %w", context.Canceled), "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, usecase.ErrorCode(tt.err))
		})
	}
}

func TestUseCasesRecordMetrics(t *testing.T) {
	metrics, err := usecase.NewMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	acc := openAccount(t, today().AddDate(0, 1, 0), decimal.NullDecimal{})
	uc := usecase.NewApplyPaymentUseCase((&mockSaleAccountRepository{}).returning(acc), &mockAccountLocker{},
		service.NewEngine(), usecase.Defaults{}, metrics, discardLogger())

	_, err = uc.Execute(context.Background(), dto.ApplyPaymentRequest{
		TenantID: acc.TenantID(), SaleAccountID: acc.ID(), InstallmentID: acc.Installments()[0].ID, Amount: dec("100"),
	})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), dto.ApplyPaymentRequest{
		TenantID: acc.TenantID(), SaleAccountID: acc.ID(), InstallmentID: acc.Installments()[2].ID, Amount: dec("100"),
	})
	assert.ErrorIs(t, err, model.ErrOutOfOrderPayment)
}
