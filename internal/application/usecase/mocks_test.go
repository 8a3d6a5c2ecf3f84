package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/event"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/service"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/valueobject"
	"github.com/PremHer/kasvarealty-sub001/pkg/money"
)

// --- Mock implementations ---

type mockSaleAccountRepository struct {
	findByIDFunc   func(ctx context.Context, tenantID, id uuid.UUID) (model.SaleAccount, error)
	findActiveFunc func(ctx context.Context, tenantID uuid.UUID) ([]model.SaleAccount, error)
	saveErr        error
	savedAccounts  []model.SaleAccount
}

func (m *mockSaleAccountRepository) Save(ctx context.Context, account model.SaleAccount) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.savedAccounts = append(m.savedAccounts, account)
	return nil
}

func (m *mockSaleAccountRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (model.SaleAccount, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, tenantID, id)
	}
	return model.SaleAccount{}, model.ErrSaleAccountNotFound
}

func (m *mockSaleAccountRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]model.SaleAccount, error) {
	if m.findActiveFunc != nil {
		return m.findActiveFunc(ctx, tenantID)
	}
	return nil, nil
}

// returning makes FindByID serve account.
func (m *mockSaleAccountRepository) returning(account model.SaleAccount) *mockSaleAccountRepository {
	m.findByIDFunc = func(_ context.Context, _, id uuid.UUID) (model.SaleAccount, error) {
		if id != account.ID() {
			return model.SaleAccount{}, model.ErrSaleAccountNotFound
		}
		return account, nil
	}
	return m
}

func (m *mockSaleAccountRepository) lastSaved(t *testing.T) model.SaleAccount {
	t.Helper()
	require.NotEmpty(t, m.savedAccounts, "nothing was saved")
	return m.savedAccounts[len(m.savedAccounts)-1]
}

type mockEventPublisher struct {
	mu              sync.Mutex
	publishedEvents []event.DomainEvent
	publishedTopic  string
	publishFunc     func(ctx context.Context, topic string, events ...event.DomainEvent) error
}

func (m *mockEventPublisher) Publish(ctx context.Context, topic string, events ...event.DomainEvent) error {
	if m.publishFunc != nil {
		if err := m.publishFunc(ctx, topic, events...); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishedTopic = topic
	m.publishedEvents = append(m.publishedEvents, events...)
	return nil
}

type mockAccountLocker struct {
	lockErr  error
	locked   []uuid.UUID
	unlocked int
}

func (m *mockAccountLocker) Lock(ctx context.Context, accountID uuid.UUID) (func(), error) {
	if m.lockErr != nil {
		return nil, m.lockErr
	}
	m.locked = append(m.locked, accountID)
	return func() { m.unlocked++ }, nil
}

// --- Fixtures ---

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func today() time.Time { return valueobject.Date(time.Now()) }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.StringFixed(2), msgAndArgs)
}

// openAccount is 3000 financed interest-free over three monthly
// installments of 1000 starting at first.
func openAccount(t *testing.T, first time.Time, lateRate decimal.NullDecimal) model.SaleAccount {
	t.Helper()
	params := model.AmortizationParams{Frequency: valueobject.FrequencyMonthly}
	result, err := service.NewEngine().BuildSchedule(model.SaleTerms{
		FinancedBalance: dec("3000"),
		Count:           3,
		Frequency:       valueobject.FrequencyMonthly,
		FirstDueDate:    first,
	}, params)
	require.NoError(t, err)

	prop, err := valueobject.NewProperty(valueobject.PropertyLot, "MZ-A-LT-07")
	require.NoError(t, err)
	acc, err := model.NewSaleAccount(model.NewSaleAccountParams{
		TenantID:         uuid.New(),
		Property:         prop,
		CustomerRef:      "CUST-42",
		Currency:         money.PEN,
		TotalPrice:       dec("4000"),
		InitialPayment:   dec("1000"),
		LateInterestRate: lateRate,
		Frequency:        valueobject.FrequencyMonthly,
		Installments:     result.Installments,
		Now:              time.Now(),
	})
	require.NoError(t, err)
	return acc.ClearEvents()
}

func eventTypes(evts []event.DomainEvent) []string {
	out := make([]string, 0, len(evts))
	for _, e := range evts {
		out = append(out, e.EventType())
	}
	return out
}
