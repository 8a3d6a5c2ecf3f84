package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/pkg/events"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// SaleAccountRepository persists and retrieves sale accounts with their
// installments, payments and reprogramming history. Save rejects a stale
// version with model.ErrConcurrentModification and stores the account's
// pending domain events in the same transaction. FindByID returns
// model.ErrSaleAccountNotFound when nothing matches.
type SaleAccountRepository interface {
	Save(ctx context.Context, account model.SaleAccount) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (model.SaleAccount, error)
	// FindActive lists accounts that are not settled. uuid.Nil selects every
	// tenant.
	FindActive(ctx context.Context, tenantID uuid.UUID) ([]model.SaleAccount, error)
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to a topic.
type EventPublisher = events.EventPublisher

// ---------------------------------------------------------------------------
// Concurrency port
// ---------------------------------------------------------------------------

// AccountLocker serialises mutations of one sale account. Lock blocks until
// the account is free or ctx is done; the returned func releases it.
type AccountLocker interface {
	Lock(ctx context.Context, accountID uuid.UUID) (unlock func(), err error)
}
