package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PremHer/kasvarealty-sub001/internal/application/dto"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/service"
)

// PreviewScheduleUseCase simulates a schedule without storing anything.
type PreviewScheduleUseCase struct {
	engine *service.Engine
}

// NewPreviewScheduleUseCase wires dependencies.
func NewPreviewScheduleUseCase(engine *service.Engine) *PreviewScheduleUseCase {
	return &PreviewScheduleUseCase{engine: engine}
}

// Execute returns the schedule the terms would produce.
func (uc *PreviewScheduleUseCase) Execute(ctx context.Context, req dto.PreviewScheduleRequest) (resp dto.SchedulePreviewResponse, err error) {
	_, span := startSpan(ctx, "PreviewSchedule")
	defer func() { endSpan(span, err) }()
	now := time.Now().UTC()

	terms, params, err := buildTerms(req.ScheduleTerms)
	if err != nil {
		return dto.SchedulePreviewResponse{}, fmt.Errorf("build terms: %w", err)
	}
	result, err := uc.engine.BuildSchedule(terms, params)
	if err != nil {
		return dto.SchedulePreviewResponse{}, fmt.Errorf("build schedule: %w", err)
	}

	resp = dto.SchedulePreviewResponse{
		FinancedBalance: terms.FinancedBalance,
		TotalInterest:   decimal.Zero,
		TotalToPay:      decimal.Zero,
		Drift:           result.Drift,
		Installments:    make([]dto.InstallmentResponse, 0, len(result.Installments)),
	}
	var drift *model.BalanceDriftError
	if errors.As(result.Err(), &drift) {
		resp.DriftWarning = drift.Error()
	}
	for _, inst := range result.Installments {
		resp.TotalToPay = resp.TotalToPay.Add(inst.Amount)
		if inst.Interest.Valid {
			resp.TotalInterest = resp.TotalInterest.Add(inst.Interest.Decimal)
		}
		resp.Installments = append(resp.Installments,
			toInstallmentResponse(uc.engine, inst, now, decimal.NullDecimal{}))
	}
	return resp, nil
}
