package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/PremHer/kasvarealty-sub001/internal/application/dto"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/port"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/service"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/valueobject"
	"github.com/PremHer/kasvarealty-sub001/pkg/money"
)

// CreateSaleAccountUseCase opens the credit account of a property sale and
// stores its amortized schedule.
type CreateSaleAccountUseCase struct {
	repo     port.SaleAccountRepository
	engine   *service.Engine
	defaults Defaults
	metrics  *Metrics
	logger   *slog.Logger
}

// NewCreateSaleAccountUseCase wires dependencies.
func NewCreateSaleAccountUseCase(
	repo port.SaleAccountRepository,
	engine *service.Engine,
	defaults Defaults,
	metrics *Metrics,
	logger *slog.Logger,
) *CreateSaleAccountUseCase {
	return &CreateSaleAccountUseCase{
		repo:     repo,
		engine:   engine,
		defaults: defaults,
		metrics:  metrics,
		logger:   logger,
	}
}

// Execute generates, amortizes and persists the schedule. A rounding drift
// above tolerance is logged and recorded as an event but does not fail the
// sale.
func (uc *CreateSaleAccountUseCase) Execute(ctx context.Context, req dto.CreateSaleAccountRequest) (resp dto.SaleAccountResponse, err error) {
	ctx, span := startSpan(ctx, "CreateSaleAccount",
		attribute.String("tenant_id", req.TenantID.String()),
		attribute.String("property_ref", req.PropertyRef),
	)
	defer func() {
		uc.metrics.rejected(ctx, "create_sale_account", err)
		endSpan(span, err)
	}()
	now := time.Now().UTC()

	// 1. Resolve the sold property and the currency.
	kind, err := valueobject.ParsePropertyKind(req.PropertyKind)
	if err != nil {
		return dto.SaleAccountResponse{}, model.Fail(model.ErrInvalidArgument, "property_kind", err.Error())
	}
	property, err := valueobject.NewProperty(kind, req.PropertyRef)
	if err != nil {
		return dto.SaleAccountResponse{}, model.Fail(model.ErrInvalidArgument, "property_ref", err.Error())
	}
	currency := uc.defaults.Currency
	if code := strings.TrimSpace(req.Currency); code != "" {
		if currency, err = money.NewCurrency(strings.ToUpper(code)); err != nil {
			return dto.SaleAccountResponse{}, model.Fail(model.ErrInvalidArgument, "currency", err.Error())
		}
	}

	// 2. Build the schedule.
	terms, params, err := buildTerms(req.ScheduleTerms)
	if err != nil {
		return dto.SaleAccountResponse{}, fmt.Errorf("build terms: %w", err)
	}
	result, err := uc.engine.BuildSchedule(terms, params)
	if err != nil {
		return dto.SaleAccountResponse{}, fmt.Errorf("build schedule: %w", err)
	}

	// 3. Open the account.
	account, err := model.NewSaleAccount(model.NewSaleAccountParams{
		TenantID:         req.TenantID,
		Property:         property,
		CustomerRef:      req.CustomerRef,
		Currency:         currency,
		TotalPrice:       req.TotalPrice,
		InitialPayment:   req.InitialPayment,
		InterestRate:     params.Rate,
		LateInterestRate: nullDecimal(req.LateInterestRate),
		Model:            params.Model,
		Frequency:        params.Frequency,
		BalloonFraction:  params.BalloonFraction,
		Installments:     result.Installments,
		Now:              now,
	})
	if err != nil {
		return dto.SaleAccountResponse{}, fmt.Errorf("open sale account: %w", err)
	}

	var drift *model.BalanceDriftError
	if errors.As(result.Err(), &drift) {
		uc.logger.Warn("schedule rounding drift above tolerance",
			"sale_account_id", account.ID(),
			"drift", drift.Drift.String(),
			"tolerance", drift.Tolerance.String(),
		)
		uc.metrics.driftDetected(ctx)
		account = account.RecordBalanceDrift(drift, now)
	}

	// 4. Persist; events leave through the outbox.
	if err := uc.repo.Save(ctx, account); err != nil {
		return dto.SaleAccountResponse{}, fmt.Errorf("save sale account: %w", err)
	}

	uc.metrics.accountCreated(ctx, account.Model().String())
	uc.logger.Info("sale account opened",
		"sale_account_id", account.ID(),
		"tenant_id", account.TenantID(),
		"installments", account.InstallmentCount(),
		"financed_balance", account.FinancedBalance().String(),
	)
	return toSaleAccountResponse(uc.engine, account, now, uc.defaults.LateInterestRate), nil
}
