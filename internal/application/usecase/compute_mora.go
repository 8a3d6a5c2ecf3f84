package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/PremHer/kasvarealty-sub001/internal/application/dto"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/port"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/service"
	"github.com/PremHer/kasvarealty-sub001/pkg/money"
)

// ComputeMoraUseCase produces the late-interest statement of an account.
type ComputeMoraUseCase struct {
	repo     port.SaleAccountRepository
	engine   *service.Engine
	defaults Defaults
}

// NewComputeMoraUseCase wires dependencies.
func NewComputeMoraUseCase(repo port.SaleAccountRepository, engine *service.Engine, defaults Defaults) *ComputeMoraUseCase {
	return &ComputeMoraUseCase{repo: repo, engine: engine, defaults: defaults}
}

// Execute prices every overdue installment at req.AsOf. The rate is the
// request override, else the account's own, else the configured default.
func (uc *ComputeMoraUseCase) Execute(ctx context.Context, req dto.ComputeMoraRequest) (resp dto.MoraStatementResponse, err error) {
	ctx, span := startSpan(ctx, "ComputeMora", attribute.String("sale_account_id", req.SaleAccountID.String()))
	defer func() { endSpan(span, err) }()
	asOf := asOfOrNow(req.AsOf)

	account, err := uc.repo.FindByID(ctx, req.TenantID, req.SaleAccountID)
	if err != nil {
		return dto.MoraStatementResponse{}, fmt.Errorf("find sale account: %w", err)
	}

	rate := lateRate(account, uc.defaults.LateInterestRate)
	if req.Rate != nil {
		rate = decimal.NewNullDecimal(*req.Rate)
	}
	installments := account.Installments()
	mora, err := uc.engine.ComputeMora(installments, asOf, rate.Decimal)
	if err != nil {
		return dto.MoraStatementResponse{}, fmt.Errorf("compute mora: %w", err)
	}

	resp = dto.MoraStatementResponse{
		SaleAccountID: account.ID(),
		AsOf:          asOf,
		Rate:          rate.Decimal,
		Lines:         make([]dto.MoraLine, 0, len(mora)),
		TotalPending:  decimal.Zero,
		TotalMora:     decimal.Zero,
	}
	for _, inst := range installments {
		m, ok := mora[inst.ID]
		if !ok {
			continue
		}
		resp.Lines = append(resp.Lines, dto.MoraLine{
			InstallmentID: inst.ID,
			Number:        inst.Number,
			DueDate:       inst.DueDate,
			DaysLate:      service.DaysLate(inst, asOf),
			Pending:       inst.Pending(),
			Mora:          m,
		})
		resp.TotalPending = resp.TotalPending.Add(inst.Pending())
		resp.TotalMora = resp.TotalMora.Add(m)
	}
	resp.TotalDue = money.Round(resp.TotalPending.Add(resp.TotalMora))
	return resp, nil
}
