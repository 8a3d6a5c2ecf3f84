package scheduler

import (
	"context"

	"github.com/PremHer/kasvarealty-sub001/internal/application/dto"
)

// Job names.
const (
	JobOutboxRelay  = "outbox-relay"
	JobOutboxPurge  = "outbox-purge"
	JobOverdueSweep = "overdue-sweep"
)

// OutboxRelay is satisfied by relay.Relay.
type OutboxRelay interface {
	Drain(ctx context.Context) (int, error)
	Purge(ctx context.Context) (int64, error)
}

// OverdueSweeper is satisfied by usecase.OverdueSweepUseCase.
type OverdueSweeper interface {
	Execute(ctx context.Context, req dto.OverdueSweepRequest) (dto.OverdueSweepResponse, error)
}

// RelayJob drains the outbox.
func RelayJob(r OutboxRelay) JobFunc {
	return func(ctx context.Context) error {
		_, err := r.Drain(ctx)
		return err
	}
}

// PurgeJob deletes relayed outbox rows past retention.
func PurgeJob(r OutboxRelay) JobFunc {
	return func(ctx context.Context) error {
		_, err := r.Purge(ctx)
		return err
	}
}

// SweepJob scans every tenant's active accounts as of the run time.
func SweepJob(s OverdueSweeper) JobFunc {
	return func(ctx context.Context) error {
		_, err := s.Execute(ctx, dto.OverdueSweepRequest{})
		return err
	}
}
