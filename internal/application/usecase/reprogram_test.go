package usecase_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PremHer/kasvarealty-sub001/internal/application/dto"
	"github.com/PremHer/kasvarealty-sub001/internal/application/usecase"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/event"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/service"
)

func newReprogramUseCase(repo *mockSaleAccountRepository, locker *mockAccountLocker) *usecase.ReprogramUseCase {
	return usecase.NewReprogramUseCase(repo, locker, service.NewEngine(), usecase.Defaults{}, nil, discardLogger())
}

func TestReprogram_DiscountAndModification(t *testing.T) {
	acc := openAccount(t, today().AddDate(0, 1, 0), decimal.NullDecimal{})
	insts := acc.Installments()
	repo := statefulRepo(acc)
	locker := &mockAccountLocker{}
	actor := uuid.New()
	newDue := insts[2].DueDate.AddDate(0, 0, 15)

	resp, err := newReprogramUseCase(repo, locker).Execute(context.Background(), dto.ReprogramRequest{
		TenantID:      acc.TenantID(),
		SaleAccountID: acc.ID(),
		ActorID:       actor,
		Reason:        "lost job, agreed new date",
		Modifications: []dto.ModificationRequest{{InstallmentID: insts[2].ID, DueDate: &newDue}},
		Discounts:     []dto.DiscountRequest{{InstallmentID: insts[1].ID, Amount: dec("250")}},
	})
	require.NoError(t, err)

	rec := resp.Reprogramming
	assert.Equal(t, actor, rec.ActorID)
	assert.Equal(t, "lost job, agreed new date", rec.Reason)
	require.Len(t, rec.Modifications, 1)
	assert.Equal(t, newDue, rec.Modifications[0].NewDueDate)
	require.Len(t, rec.Discounts, 1)
	assertDec(t, "250", rec.Discounts[0].Amount)
	assert.Nil(t, rec.PlanChange)

	got := resp.Account.Installments
	assertDec(t, "750", got[1].Amount)
	assertDec(t, "250", got[1].Discounted)
	assert.Equal(t, newDue, got[2].DueDate)
	assertDec(t, "2750", resp.Account.PendingTotal)

	assert.Equal(t, 1, locker.unlocked)
	assert.Equal(t, []string{event.TypeSaleAccountReprogram}, eventTypes(repo.lastSaved(t).DomainEvents()))

	history, err := usecase.NewListReprogrammingsUseCase(repo).Execute(context.Background(), dto.ListReprogrammingsRequest{
		TenantID: acc.TenantID(), SaleAccountID: acc.ID(),
	})
	require.NoError(t, err)
	require.Len(t, history.Reprogrammings, 1)
	assert.Equal(t, rec.ID, history.Reprogrammings[0].ID)
}

func TestReprogram_PlanChange(t *testing.T) {
	acc := openAccount(t, today().AddDate(0, 1, 0), decimal.NullDecimal{})
	repo := statefulRepo(acc)

	resp, err := newReprogramUseCase(repo, &mockAccountLocker{}).Execute(context.Background(), dto.ReprogramRequest{
		TenantID:      acc.TenantID(),
		SaleAccountID: acc.ID(),
		ActorID:       uuid.New(),
		Reason:        "move to german plan",
		PlanChange:    &dto.PlanChangeRequest{AmortizationModel: "GERMAN", InterestRate: decPtr("0.12")},
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Reprogramming.PlanChange)
	assert.Equal(t, "GERMAN", resp.Reprogramming.PlanChange.AmortizationModel)
	assert.Equal(t, "GERMAN", resp.Account.AmortizationModel)

	got := resp.Account.Installments
	require.Len(t, got, 3)
	// 3000 at 1% a month, 1000 principal per installment.
	assertDec(t, "1030.00", got[0].Amount)
	assertDec(t, "1020.00", got[1].Amount)
	assertDec(t, "1010.00", got[2].Amount)
	assertDec(t, "0", got[2].BalanceAfter)
}

func TestReprogram_Rejections(t *testing.T) {
	acc := openAccount(t, today().AddDate(0, 1, 0), decimal.NullDecimal{})
	insts := acc.Installments()
	yesterday := today().AddDate(0, 0, -1)

	tests := []struct {
		name    string
		req     dto.ReprogramRequest
		wantErr error
	}{
		{"missing reason", dto.ReprogramRequest{
			Discounts: []dto.DiscountRequest{{InstallmentID: insts[0].ID, Amount: dec("1")}},
		}, model.ErrMissingReason},
		{"empty batch", dto.ReprogramRequest{Reason: "x"}, model.ErrEmptyReprogramming},
		{"past due date", dto.ReprogramRequest{Reason: "x",
			Modifications: []dto.ModificationRequest{{InstallmentID: insts[0].ID, DueDate: &yesterday}},
		}, model.ErrPastDate},
		{"discount exceeds balance", dto.ReprogramRequest{Reason: "x",
			Discounts: []dto.DiscountRequest{{InstallmentID: insts[0].ID, Amount: dec("1000.01")}},
		}, model.ErrDiscountExceedsBalance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := (&mockSaleAccountRepository{}).returning(acc)
			tt.req.TenantID, tt.req.SaleAccountID, tt.req.ActorID = acc.TenantID(), acc.ID(), uuid.New()

			_, err := newReprogramUseCase(repo, &mockAccountLocker{}).Execute(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, repo.savedAccounts)
		})
	}
}

func TestReprogram_RequiresActor(t *testing.T) {
	locker := &mockAccountLocker{}
	_, err := newReprogramUseCase(&mockSaleAccountRepository{}, locker).Execute(context.Background(), dto.ReprogramRequest{
		SaleAccountID: uuid.New(),
		Reason:        "x",
	})
	assert.ErrorIs(t, err, model.ErrInvalidArgument)
	assert.Empty(t, locker.locked)
}

func TestRecalculateBalances_Idempotent(t *testing.T) {
	acc := openAccount(t, today().AddDate(0, 1, 0), decimal.NullDecimal{})
	repo := statefulRepo(acc)
	uc := usecase.NewRecalculateBalancesUseCase(repo, &mockAccountLocker{}, service.NewEngine(), usecase.Defaults{})
	req := dto.RecalculateBalancesRequest{TenantID: acc.TenantID(), SaleAccountID: acc.ID()}

	first, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, second.Installments, len(first.Installments))
	for k := range first.Installments {
		assertDec(t, first.Installments[k].BalanceBefore.String(), second.Installments[k].BalanceBefore, k)
		assertDec(t, first.Installments[k].BalanceAfter.String(), second.Installments[k].BalanceAfter, k)
	}
	assertDec(t, "3000", first.Installments[0].BalanceBefore)
	assert.Len(t, repo.savedAccounts, 2)
}
