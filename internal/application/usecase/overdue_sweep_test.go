package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

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

const overdueTopic = "installment-events"

func TestOverdueSweep(t *testing.T) {
	late := openAccount(t, day(2025, time.January, 10), lateRate365)
	noRate := openAccount(t, day(2025, time.January, 15), decimal.NullDecimal{})
	current := openAccount(t, day(2025, time.March, 1), lateRate365)

	var gotTenant uuid.UUID
	repo := &mockSaleAccountRepository{
		findActiveFunc: func(_ context.Context, tenantID uuid.UUID) ([]model.SaleAccount, error) {
			gotTenant = tenantID
			return []model.SaleAccount{late, noRate, current}, nil
		},
	}
	pub := &mockEventPublisher{}
	uc := usecase.NewOverdueSweepUseCase(repo, pub, service.NewEngine(), overdueTopic, usecase.Defaults{}, nil, discardLogger())

	resp, err := uc.Execute(context.Background(), dto.OverdueSweepRequest{AsOf: day(2025, time.January, 20)})
	require.NoError(t, err)

	assert.Equal(t, uuid.Nil, gotTenant)
	assert.Equal(t, 3, resp.AccountsScanned)
	assert.Equal(t, 2, resp.AccountsOverdue)
	assert.Equal(t, 2, resp.InstallmentsOverdue)
	assertDec(t, "2000", resp.TotalPending)
	assertDec(t, "10.00", resp.TotalMora)

	assert.Equal(t, overdueTopic, pub.publishedTopic)
	require.Len(t, pub.publishedEvents, 2)
	first, ok := pub.publishedEvents[0].(event.InstallmentsOverdue)
	require.True(t, ok)
	assert.Equal(t, late.ID(), first.AggregateID())
	assert.Equal(t, event.TypeInstallmentsOverdue, first.EventType())
	require.Len(t, first.Installments, 1)
	assert.Equal(t, 10, first.Installments[0].DaysLate)
	assertDec(t, "10.00", first.TotalMora)

	second := pub.publishedEvents[1].(event.InstallmentsOverdue)
	assertDec(t, "0", second.TotalMora)
}

func TestOverdueSweep_PublishFailureContinues(t *testing.T) {
	a := openAccount(t, day(2025, time.January, 10), lateRate365)
	b := openAccount(t, day(2025, time.January, 10), lateRate365)
	repo := &mockSaleAccountRepository{
		findActiveFunc: func(context.Context, uuid.UUID) ([]model.SaleAccount, error) {
			return []model.SaleAccount{a, b}, nil
		},
	}
	pub := &mockEventPublisher{publishFunc: func(_ context.Context, _ string, evts ...event.DomainEvent) error {
		if evts[0].AggregateID() == a.ID() {
			return errors.New("broker unavailable")
		}
		return nil
	}}
	uc := usecase.NewOverdueSweepUseCase(repo, pub, service.NewEngine(), overdueTopic, usecase.Defaults{}, nil, discardLogger())

	resp, err := uc.Execute(context.Background(), dto.OverdueSweepRequest{AsOf: day(2025, time.January, 20)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
	assert.Equal(t, 1, resp.AccountsOverdue)
	require.Len(t, pub.publishedEvents, 1)
	assert.Equal(t, b.ID(), pub.publishedEvents[0].AggregateID())
}

func TestOverdueSweep_RepositoryError(t *testing.T) {
	repo := &mockSaleAccountRepository{
		findActiveFunc: func(context.Context, uuid.UUID) ([]model.SaleAccount, error) {
			return nil, errors.New("timeout")
		},
	}
	uc := usecase.NewOverdueSweepUseCase(repo, &mockEventPublisher{}, service.NewEngine(), overdueTopic, usecase.Defaults{}, nil, discardLogger())

	_, err := uc.Execute(context.Background(), dto.OverdueSweepRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "find active sale accounts")
}
