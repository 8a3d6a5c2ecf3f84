package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/PremHer/kasvarealty-sub001/internal/application/dto"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/port"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/service"
)

// ReprogramUseCase applies an audited batch edit to an account's unpaid
// installments.
type ReprogramUseCase struct {
	repo     port.SaleAccountRepository
	locker   port.AccountLocker
	engine   *service.Engine
	defaults Defaults
	metrics  *Metrics
	logger   *slog.Logger
}

// NewReprogramUseCase wires dependencies.
func NewReprogramUseCase(
	repo port.SaleAccountRepository,
	locker port.AccountLocker,
	engine *service.Engine,
	defaults Defaults,
	metrics *Metrics,
	logger *slog.Logger,
) *ReprogramUseCase {
	return &ReprogramUseCase{
		repo:     repo,
		locker:   locker,
		engine:   engine,
		defaults: defaults,
		metrics:  metrics,
		logger:   logger,
	}
}

// Execute reprograms the account while holding its lock. Nothing is stored
// unless the whole batch is valid.
func (uc *ReprogramUseCase) Execute(ctx context.Context, req dto.ReprogramRequest) (resp dto.ReprogramResponse, err error) {
	ctx, span := startSpan(ctx, "Reprogram",
		attribute.String("sale_account_id", req.SaleAccountID.String()),
		attribute.String("actor_id", req.ActorID.String()),
	)
	defer func() {
		uc.metrics.rejected(ctx, "reprogram", err)
		endSpan(span, err)
	}()
	now := time.Now().UTC()

	if req.ActorID == uuid.Nil {
		return dto.ReprogramResponse{}, model.Fail(model.ErrInvalidArgument, "actor_id", "is required")
	}

	// 1. Serialise with other mutations of the account.
	unlock, err := uc.locker.Lock(ctx, req.SaleAccountID)
	if err != nil {
		return dto.ReprogramResponse{}, fmt.Errorf("lock sale account: %w", err)
	}
	defer unlock()

	// 2. Retrieve the account.
	account, err := uc.repo.FindByID(ctx, req.TenantID, req.SaleAccountID)
	if err != nil {
		return dto.ReprogramResponse{}, fmt.Errorf("find sale account: %w", err)
	}

	// 3. Reprogram and recalculate balances.
	account, record, err := uc.engine.Reprogram(account, toReprogramRequest(req), now)
	if err != nil {
		return dto.ReprogramResponse{}, fmt.Errorf("reprogram: %w", err)
	}

	// 4. Persist; events leave through the outbox.
	if err := uc.repo.Save(ctx, account); err != nil {
		return dto.ReprogramResponse{}, fmt.Errorf("save sale account: %w", err)
	}

	uc.metrics.reprogrammed(ctx, record.PlanChange != nil)
	uc.logger.Info("sale account reprogrammed",
		"sale_account_id", account.ID(),
		"reprogramming_id", record.ID,
		"actor_id", record.ActorID,
		"modifications", len(record.Modifications),
		"discounts", len(record.Discounts),
		"plan_change", record.PlanChange != nil,
	)
	return dto.ReprogramResponse{
		Reprogramming: toReprogrammingResponse(record),
		Account:       toSaleAccountResponse(uc.engine, account, now, uc.defaults.LateInterestRate),
	}, nil
}
