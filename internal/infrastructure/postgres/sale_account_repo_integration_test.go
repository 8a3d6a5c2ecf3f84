//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/event"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/service"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/valueobject"
	"github.com/PremHer/kasvarealty-sub001/internal/infrastructure/postgres"
	"github.com/PremHer/kasvarealty-sub001/pkg/money"
	"github.com/PremHer/kasvarealty-sub001/pkg/testutil"
)

const topic = "installment-events"

func newAccount(t *testing.T, tenantID uuid.UUID, first time.Time) model.SaleAccount {
	t.Helper()
	params := model.AmortizationParams{
		Rate:      decimal.NewNullDecimal(decimal.RequireFromString("0.12")),
		Model:     valueobject.AmortizationFrench,
		Frequency: valueobject.FrequencyMonthly,
	}
	result, err := service.NewEngine().BuildSchedule(model.SaleTerms{
		FinancedBalance: decimal.NewFromInt(3000),
		Count:           3,
		Frequency:       valueobject.FrequencyMonthly,
		FirstDueDate:    first,
	}, params)
	require.NoError(t, err)

	prop, err := valueobject.NewProperty(valueobject.PropertyLot, testutil.TestLotRef)
	require.NoError(t, err)
	acc, err := model.NewSaleAccount(model.NewSaleAccountParams{
		TenantID:         tenantID,
		Property:         prop,
		CustomerRef:      testutil.TestCustomerRef,
		Currency:         money.PEN,
		TotalPrice:       decimal.NewFromInt(4000),
		InitialPayment:   decimal.NewFromInt(1000),
		InterestRate:     params.Rate,
		LateInterestRate: decimal.NewNullDecimal(decimal.RequireFromString("0.365")),
		Model:            params.Model,
		Frequency:        params.Frequency,
		Installments:     result.Installments,
		Now:              time.Now(),
	})
	require.NoError(t, err)
	return acc
}

func TestSaleAccountRepo(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t, postgres.Migrate)
	repo := postgres.NewSaleAccountRepo(pc.Pool, topic)
	outbox := postgres.NewOutboxRepo(pc.Pool)
	engine := service.NewEngine()
	first := valueobject.Date(time.Now()).AddDate(0, 1, 0)

	acc := newAccount(t, testutil.TestTenantID, first)
	require.NoError(t, repo.Save(ctx, acc))

	t.Run("round trip", func(t *testing.T) {
		got, err := repo.FindByID(ctx, testutil.TestTenantID, acc.ID())
		require.NoError(t, err)

		assert.Equal(t, 1, got.Version())
		assert.Equal(t, "FRENCH", got.Model().String())
		assert.Equal(t, testutil.TestLotRef, got.Property().Ref())
		require.Equal(t, acc.InstallmentCount(), got.InstallmentCount())
		for k, inst := range got.Installments() {
			want := acc.Installments()[k]
			assert.Equal(t, want.ID, inst.ID)
			assert.Equal(t, want.DueDate, inst.DueDate)
			testutil.RequireDecimal(t, want.Amount.String(), inst.Amount, k)
			testutil.RequireDecimal(t, want.BalanceAfter.String(), inst.BalanceAfter, k)
		}
		assert.NoError(t, got.Validate())
	})

	t.Run("other tenant cannot read", func(t *testing.T) {
		_, err := repo.FindByID(ctx, testutil.TestOtherTenantID, acc.ID())
		assert.ErrorIs(t, err, model.ErrSaleAccountNotFound)
	})

	t.Run("payment and reprogramming persist", func(t *testing.T) {
		loaded, err := repo.FindByID(ctx, testutil.TestTenantID, acc.ID())
		require.NoError(t, err)
		inst := loaded.Installments()[0]

		paid, _, err := engine.ApplyPayment(loaded, service.PaymentInput{
			InstallmentID: inst.ID, Amount: decimal.NewFromInt(500), Date: first, Method: valueobject.PaymentCash,
		}, time.Now())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, paid))

		loaded, err = repo.FindByID(ctx, testutil.TestTenantID, acc.ID())
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.Version())
		got := loaded.Installments()[0]
		require.Len(t, got.Payments, 1)
		assert.Equal(t, "PARTIAL", got.State.String())
		testutil.RequireDecimal(t, "500", got.AmountPaid)

		reprogrammed, rec, err := engine.Reprogram(loaded, service.ReprogramRequest{
			Reason:    "goodwill",
			ActorID:   testutil.TestActorID,
			Discounts: []service.DiscountRequest{{InstallmentID: loaded.Installments()[2].ID, Amount: decimal.NewFromInt(100)}},
		}, time.Now())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, reprogrammed))

		loaded, err = repo.FindByID(ctx, testutil.TestTenantID, acc.ID())
		require.NoError(t, err)
		history := loaded.Reprogrammings()
		require.Len(t, history, 1)
		assert.Equal(t, rec.ID, history[0].ID)
		assert.Equal(t, testutil.TestActorID, history[0].ActorID)
		require.Len(t, history[0].Discounts, 1)
		testutil.RequireDecimal(t, "100", loaded.Installments()[2].Discounted)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		a, err := repo.FindByID(ctx, testutil.TestTenantID, acc.ID())
		require.NoError(t, err)
		b, err := repo.FindByID(ctx, testutil.TestTenantID, acc.ID())
		require.NoError(t, err)

		a2, err := engine.RecalculateBalances(a)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, a2))

		b2, err := engine.RecalculateBalances(b)
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Save(ctx, b2), model.ErrConcurrentModification)
	})

	t.Run("find active filters by tenant", func(t *testing.T) {
		other := newAccount(t, testutil.TestOtherTenantID, first)
		require.NoError(t, repo.Save(ctx, other))

		mine, err := repo.FindActive(ctx, testutil.TestTenantID)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, acc.ID(), mine[0].ID())

		all, err := repo.FindActive(ctx, uuid.Nil)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("events are queued in the outbox", func(t *testing.T) {
		entries, err := outbox.FetchUnpublished(ctx, 100)
		require.NoError(t, err)

		var types []string
		for _, e := range entries {
			assert.Equal(t, topic, e.Topic)
			types = append(types, e.EventType)
		}
		assert.Contains(t, types, event.TypeSaleAccountCreated)
		assert.Contains(t, types, event.TypePaymentApplied)
		assert.Contains(t, types, event.TypeSaleAccountReprogram)

		ids := make([]uuid.UUID, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
		require.NoError(t, outbox.MarkPublished(ctx, ids, time.Now()))
		left, err := outbox.FetchUnpublished(ctx, 100)
		require.NoError(t, err)
		assert.Empty(t, left)

		purged, err := outbox.Purge(ctx, time.Now().Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int64(len(entries)), purged)
	})

	t.Run("truncate empties the store", func(t *testing.T) {
		pc.Truncate(t, "sale_accounts", "outbox")

		all, err := repo.FindActive(ctx, uuid.Nil)
		require.NoError(t, err)
		assert.Empty(t, all)
		_, err = repo.FindByID(ctx, testutil.TestTenantID, acc.ID())
		assert.ErrorIs(t, err, model.ErrSaleAccountNotFound)
	})
}
