package usecase

import (
	"context"
	"fmt"

	"github.com/PremHer/kasvarealty-sub001/internal/application/dto"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/port"
)

// ListReprogrammingsUseCase reads the reprogramming history of an account.
type ListReprogrammingsUseCase struct {
	repo port.SaleAccountRepository
}

// NewListReprogrammingsUseCase wires dependencies.
func NewListReprogrammingsUseCase(repo port.SaleAccountRepository) *ListReprogrammingsUseCase {
	return &ListReprogrammingsUseCase{repo: repo}
}

// Execute returns the audit records, oldest first.
func (uc *ListReprogrammingsUseCase) Execute(ctx context.Context, req dto.ListReprogrammingsRequest) (dto.ListReprogrammingsResponse, error) {
	account, err := uc.repo.FindByID(ctx, req.TenantID, req.SaleAccountID)
	if err != nil {
		return dto.ListReprogrammingsResponse{}, fmt.Errorf("find sale account: %w", err)
	}
	records := account.Reprogrammings()
	resp := dto.ListReprogrammingsResponse{
		SaleAccountID:  account.ID(),
		Reprogrammings: make([]dto.ReprogrammingResponse, 0, len(records)),
	}
	for _, r := range records {
		resp.Reprogrammings = append(resp.Reprogrammings, toReprogrammingResponse(r))
	}
	return resp, nil
}
