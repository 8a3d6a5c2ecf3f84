package usecase

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/PremHer/kasvarealty-sub001/internal/application/dto"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/port"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/service"
)

// RecalculateBalancesUseCase rebuilds the balance chain of an account.
type RecalculateBalancesUseCase struct {
	repo     port.SaleAccountRepository
	locker   port.AccountLocker
	engine   *service.Engine
	defaults Defaults
}

// NewRecalculateBalancesUseCase wires dependencies.
func NewRecalculateBalancesUseCase(
	repo port.SaleAccountRepository,
	locker port.AccountLocker,
	engine *service.Engine,
	defaults Defaults,
) *RecalculateBalancesUseCase {
	return &RecalculateBalancesUseCase{repo: repo, locker: locker, engine: engine, defaults: defaults}
}

// Execute recalculates and stores the balances. Running it twice yields the
// same account.
func (uc *RecalculateBalancesUseCase) Execute(ctx context.Context, req dto.RecalculateBalancesRequest) (resp dto.SaleAccountResponse, err error) {
	ctx, span := startSpan(ctx, "RecalculateBalances", attribute.String("sale_account_id", req.SaleAccountID.String()))
	defer func() { endSpan(span, err) }()
	now := time.Now().UTC()

	unlock, err := uc.locker.Lock(ctx, req.SaleAccountID)
	if err != nil {
		return dto.SaleAccountResponse{}, fmt.Errorf("lock sale account: %w", err)
	}
	defer unlock()

	account, err := uc.repo.FindByID(ctx, req.TenantID, req.SaleAccountID)
	if err != nil {
		return dto.SaleAccountResponse{}, fmt.Errorf("find sale account: %w", err)
	}
	account, err = uc.engine.RecalculateBalances(account)
	if err != nil {
		return dto.SaleAccountResponse{}, fmt.Errorf("recalculate balances: %w", err)
	}
	if err := uc.repo.Save(ctx, account); err != nil {
		return dto.SaleAccountResponse{}, fmt.Errorf("save sale account: %w", err)
	}
	return toSaleAccountResponse(uc.engine, account, now, uc.defaults.LateInterestRate), nil
}
