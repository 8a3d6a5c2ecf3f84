package usecase

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/PremHer/kasvarealty-sub001/internal/application/dto"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/port"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/service"
)

// GetSaleAccountUseCase reads an account with read-time overdue labels.
type GetSaleAccountUseCase struct {
	repo     port.SaleAccountRepository
	engine   *service.Engine
	defaults Defaults
}

// NewGetSaleAccountUseCase wires dependencies.
func NewGetSaleAccountUseCase(repo port.SaleAccountRepository, engine *service.Engine, defaults Defaults) *GetSaleAccountUseCase {
	return &GetSaleAccountUseCase{repo: repo, engine: engine, defaults: defaults}
}

// Execute retrieves the account as seen at req.AsOf.
func (uc *GetSaleAccountUseCase) Execute(ctx context.Context, req dto.GetSaleAccountRequest) (resp dto.SaleAccountResponse, err error) {
	ctx, span := startSpan(ctx, "GetSaleAccount", attribute.String("sale_account_id", req.SaleAccountID.String()))
	defer func() { endSpan(span, err) }()

	account, err := uc.repo.FindByID(ctx, req.TenantID, req.SaleAccountID)
	if err != nil {
		return dto.SaleAccountResponse{}, fmt.Errorf("find sale account: %w", err)
	}
	return toSaleAccountResponse(uc.engine, account, asOfOrNow(req.AsOf), uc.defaults.LateInterestRate), nil
}
