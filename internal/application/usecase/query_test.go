package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PremHer/kasvarealty-sub001/internal/application/dto"
	"github.com/PremHer/kasvarealty-sub001/internal/application/usecase"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/service"
)

// 1000 pending at 36.5% a year accrues 1.00 a day.
var lateRate365 = decimal.NewNullDecimal(dec("0.365"))

func TestGetSaleAccount_OverdueLabels(t *testing.T) {
	acc := openAccount(t, day(2025, time.January, 10), lateRate365)
	repo := (&mockSaleAccountRepository{}).returning(acc)
	uc := usecase.NewGetSaleAccountUseCase(repo, service.NewEngine(), usecase.Defaults{})

	resp, err := uc.Execute(context.Background(), dto.GetSaleAccountRequest{
		TenantID:      acc.TenantID(),
		SaleAccountID: acc.ID(),
		AsOf:          day(2025, time.January, 20),
	})
	require.NoError(t, err)

	require.Len(t, resp.Installments, 3)
	first := resp.Installments[0]
	assert.Equal(t, "OVERDUE", first.Status)
	assert.Equal(t, "PENDING", first.State)
	assert.Equal(t, 10, first.DaysLate)
	assertDec(t, "10.00", first.Mora)

	assert.Equal(t, "PENDING", resp.Installments[1].Status)
	assert.Zero(t, resp.Installments[1].DaysLate)
	assertDec(t, "3000", resp.PendingTotal)
	assertDec(t, "10.00", resp.MoraTotal)
}

func TestGetSaleAccount_DefaultLateRate(t *testing.T) {
	acc := openAccount(t, day(2025, time.January, 10), decimal.NullDecimal{})
	repo := (&mockSaleAccountRepository{}).returning(acc)
	req := dto.GetSaleAccountRequest{TenantID: acc.TenantID(), SaleAccountID: acc.ID(), AsOf: day(2025, time.January, 15)}

	resp, err := usecase.NewGetSaleAccountUseCase(repo, service.NewEngine(), usecase.Defaults{}).Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "OVERDUE", resp.Installments[0].Status)
	assertDec(t, "0", resp.MoraTotal)

	resp, err = usecase.NewGetSaleAccountUseCase(repo, service.NewEngine(),
		usecase.Defaults{LateInterestRate: lateRate365}).Execute(context.Background(), req)
	require.NoError(t, err)
	assertDec(t, "5.00", resp.MoraTotal)
}

func TestGetSaleAccount_NotFound(t *testing.T) {
	uc := usecase.NewGetSaleAccountUseCase(&mockSaleAccountRepository{}, service.NewEngine(), usecase.Defaults{})

	_, err := uc.Execute(context.Background(), dto.GetSaleAccountRequest{TenantID: uuid.New(), SaleAccountID: uuid.New()})
	assert.ErrorIs(t, err, model.ErrSaleAccountNotFound)
	assert.Contains(t, err.Error(), "find sale account")
}

func TestComputeMora(t *testing.T) {
	acc := openAccount(t, day(2025, time.January, 10), lateRate365)
	repo := (&mockSaleAccountRepository{}).returning(acc)
	uc := usecase.NewComputeMoraUseCase(repo, service.NewEngine(), usecase.Defaults{})
	asOf := day(2025, time.February, 20)

	t.Run("account rate", func(t *testing.T) {
		resp, err := uc.Execute(context.Background(), dto.ComputeMoraRequest{
			TenantID: acc.TenantID(), SaleAccountID: acc.ID(), AsOf: asOf,
		})
		require.NoError(t, err)

		require.Len(t, resp.Lines, 2)
		assert.Equal(t, 1, resp.Lines[0].Number)
		assert.Equal(t, 41, resp.Lines[0].DaysLate)
		assertDec(t, "41.00", resp.Lines[0].Mora)
		assert.Equal(t, 10, resp.Lines[1].DaysLate)
		assertDec(t, "10.00", resp.Lines[1].Mora)
		assertDec(t, "2000", resp.TotalPending)
		assertDec(t, "51.00", resp.TotalMora)
		assertDec(t, "2051.00", resp.TotalDue)
		assertDec(t, "0.365", resp.Rate)
	})

	t.Run("override rate", func(t *testing.T) {
		resp, err := uc.Execute(context.Background(), dto.ComputeMoraRequest{
			TenantID: acc.TenantID(), SaleAccountID: acc.ID(), AsOf: asOf, Rate: decPtr("0.73"),
		})
		require.NoError(t, err)
		assertDec(t, "102.00", resp.TotalMora)
	})

	t.Run("nothing overdue", func(t *testing.T) {
		resp, err := uc.Execute(context.Background(), dto.ComputeMoraRequest{
			TenantID: acc.TenantID(), SaleAccountID: acc.ID(), AsOf: day(2025, time.January, 10),
		})
		require.NoError(t, err)
		assert.Empty(t, resp.Lines)
		assertDec(t, "0", resp.TotalDue)
	})
}

func TestComputeMora_NoRate(t *testing.T) {
	acc := openAccount(t, day(2025, time.January, 10), decimal.NullDecimal{})
	uc := usecase.NewComputeMoraUseCase((&mockSaleAccountRepository{}).returning(acc), service.NewEngine(), usecase.Defaults{})

	_, err := uc.Execute(context.Background(), dto.ComputeMoraRequest{
		TenantID: acc.TenantID(), SaleAccountID: acc.ID(), AsOf: day(2025, time.March, 1),
	})
	assert.ErrorIs(t, err, model.ErrInvalidRate)
}

func TestListReprogrammings_Empty(t *testing.T) {
	acc := openAccount(t, today().AddDate(0, 1, 0), decimal.NullDecimal{})
	uc := usecase.NewListReprogrammingsUseCase((&mockSaleAccountRepository{}).returning(acc))

	resp, err := uc.Execute(context.Background(), dto.ListReprogrammingsRequest{
		TenantID: acc.TenantID(), SaleAccountID: acc.ID(),
	})
	require.NoError(t, err)
	assert.Equal(t, acc.ID(), resp.SaleAccountID)
	assert.NotNil(t, resp.Reprogrammings)
	assert.Empty(t, resp.Reprogrammings)
}
