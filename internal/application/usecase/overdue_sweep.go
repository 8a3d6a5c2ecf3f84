package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/PremHer/kasvarealty-sub001/internal/application/dto"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/event"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/port"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/service"
)

// OverdueSweepUseCase scans active accounts and publishes one
// InstallmentsOverdue event per account with overdue installments.
type OverdueSweepUseCase struct {
	repo      port.SaleAccountRepository
	publisher port.EventPublisher
	engine    *service.Engine
	topic     string
	defaults  Defaults
	metrics   *Metrics
	logger    *slog.Logger
}

// NewOverdueSweepUseCase wires dependencies.
func NewOverdueSweepUseCase(
	repo port.SaleAccountRepository,
	publisher port.EventPublisher,
	engine *service.Engine,
	topic string,
	defaults Defaults,
	metrics *Metrics,
	logger *slog.Logger,
) *OverdueSweepUseCase {
	return &OverdueSweepUseCase{
		repo:      repo,
		publisher: publisher,
		engine:    engine,
		topic:     topic,
		defaults:  defaults,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute sweeps every active account. A failed publish does not stop the
// sweep; the failures are joined into the returned error.
func (uc *OverdueSweepUseCase) Execute(ctx context.Context, req dto.OverdueSweepRequest) (resp dto.OverdueSweepResponse, err error) {
	ctx, span := startSpan(ctx, "OverdueSweep", attribute.String("tenant_id", req.TenantID.String()))
	defer func() { endSpan(span, err) }()
	asOf := asOfOrNow(req.AsOf)
	now := time.Now().UTC()

	accounts, err := uc.repo.FindActive(ctx, req.TenantID)
	if err != nil {
		return dto.OverdueSweepResponse{}, fmt.Errorf("find active sale accounts: %w", err)
	}

	resp = dto.OverdueSweepResponse{
		AsOf:            asOf,
		AccountsScanned: len(accounts),
		TotalPending:    decimal.Zero,
		TotalMora:       decimal.Zero,
	}
	var failures []error
	for _, account := range accounts {
		lines := uc.overdueLines(account, asOf)
		if len(lines) == 0 {
			continue
		}
		evt := event.NewInstallmentsOverdue(account.ID(), account.TenantID(), asOf, lines, now)
		if err := uc.publisher.Publish(ctx, uc.topic, evt); err != nil {
			uc.logger.Error("failed to publish overdue installments",
				"sale_account_id", account.ID(),
				"error", err,
			)
			failures = append(failures, fmt.Errorf("publish overdue installments of %s: %w", account.ID(), err))
			continue
		}
		resp.AccountsOverdue++
		resp.InstallmentsOverdue += len(lines)
		resp.TotalPending = resp.TotalPending.Add(evt.TotalPending)
		resp.TotalMora = resp.TotalMora.Add(evt.TotalMora)
	}

	uc.metrics.overdueFound(ctx, resp.InstallmentsOverdue)
	uc.logger.Info("overdue sweep finished",
		"as_of", asOf.Format(time.DateOnly),
		"accounts_scanned", resp.AccountsScanned,
		"accounts_overdue", resp.AccountsOverdue,
		"installments_overdue", resp.InstallmentsOverdue,
	)
	return resp, errors.Join(failures...)
}

// overdueLines lists the overdue installments of account. Mora is zero when
// no late-interest rate applies.
func (uc *OverdueSweepUseCase) overdueLines(account model.SaleAccount, asOf time.Time) []event.OverdueInstallment {
	rate := lateRate(account, uc.defaults.LateInterestRate)
	var lines []event.OverdueInstallment
	for _, inst := range account.Installments() {
		if !inst.IsOverdue(asOf) {
			continue
		}
		mora := decimal.Zero
		if rate.Valid {
			mora = uc.engine.MoraFor(inst, asOf, rate.Decimal)
		}
		lines = append(lines, event.OverdueInstallment{
			InstallmentID: inst.ID,
			Number:        inst.Number,
			DueDate:       inst.DueDate,
			DaysLate:      service.DaysLate(inst, asOf),
			Pending:       inst.Pending(),
			Mora:          mora,
		})
	}
	return lines
}
