package grpc

import (
	"context"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PremHer/kasvarealty-sub001/internal/application/dto"
	"github.com/PremHer/kasvarealty-sub001/internal/application/usecase"
	"github.com/PremHer/kasvarealty-sub001/internal/presentation/access"
)

// UseCases groups everything the handler dispatches to.
type UseCases struct {
	Create         *usecase.CreateSaleAccountUseCase
	Preview        *usecase.PreviewScheduleUseCase
	Get            *usecase.GetSaleAccountUseCase
	Mora           *usecase.ComputeMoraUseCase
	Pay            *usecase.ApplyPaymentUseCase
	Reprogram      *usecase.ReprogramUseCase
	Recalculate    *usecase.RecalculateBalancesUseCase
	Reprogrammings *usecase.ListReprogrammingsUseCase
}

// InstallmentHandler implements InstallmentServiceServer.
type InstallmentHandler struct {
	UnimplementedInstallmentServiceServer
	uc     UseCases
	logger *slog.Logger
}

// NewInstallmentHandler creates the gRPC handler.
func NewInstallmentHandler(uc UseCases, logger *slog.Logger) *InstallmentHandler {
	return &InstallmentHandler{uc: uc, logger: logger}
}

// CreateSaleAccount handles the gRPC CreateSaleAccount request.
func (h *InstallmentHandler) CreateSaleAccount(ctx context.Context, req *CreateSaleAccountRequest) (*dto.SaleAccountResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	claims, err := access.Authorize(ctx, access.OpCreateSaleAccount)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	lateRate, err := access.ParseOptionalDecimal("late_interest_rate", req.LateInterestRate)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}

	resp, err := h.uc.Create.Execute(ctx, dto.CreateSaleAccountRequest{
		TenantID:         claims.TenantID,
		PropertyKind:     req.PropertyKind,
		PropertyRef:      req.PropertyRef,
		CustomerRef:      req.CustomerRef,
		Currency:         req.Currency,
		LateInterestRate: lateRate,
		ScheduleTerms:    req.Terms,
	})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &resp, nil
}

// PreviewSchedule handles the gRPC PreviewSchedule request.
func (h *InstallmentHandler) PreviewSchedule(ctx context.Context, req *PreviewScheduleRequest) (*dto.SchedulePreviewResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if _, err := access.Authorize(ctx, access.OpPreviewSchedule); err != nil {
		return nil, h.toStatus(ctx, err)
	}

	resp, err := h.uc.Preview.Execute(ctx, dto.PreviewScheduleRequest{ScheduleTerms: req.Terms})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &resp, nil
}

// GetSaleAccount handles the gRPC GetSaleAccount request.
func (h *InstallmentHandler) GetSaleAccount(ctx context.Context, req *GetSaleAccountRequest) (*dto.SaleAccountResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	claims, err := access.Authorize(ctx, access.OpGetSaleAccount)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	id, err := access.ParseID("sale_account_id", req.SaleAccountID)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	asOf, err := access.ParseDate("as_of", req.AsOf)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}

	resp, err := h.uc.Get.Execute(ctx, dto.GetSaleAccountRequest{
		TenantID: claims.TenantID, SaleAccountID: id, AsOf: asOf,
	})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &resp, nil
}

// ComputeMora handles the gRPC ComputeMora request.
func (h *InstallmentHandler) ComputeMora(ctx context.Context, req *ComputeMoraRequest) (*dto.MoraStatementResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	claims, err := access.Authorize(ctx, access.OpComputeMora)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	id, err := access.ParseID("sale_account_id", req.SaleAccountID)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	asOf, err := access.ParseDate("as_of", req.AsOf)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	rate, err := access.ParseOptionalDecimal("rate", req.Rate)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}

	resp, err := h.uc.Mora.Execute(ctx, dto.ComputeMoraRequest{
		TenantID: claims.TenantID, SaleAccountID: id, AsOf: asOf, Rate: rate,
	})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &resp, nil
}

// ApplyPayment handles the gRPC ApplyPayment request.
func (h *InstallmentHandler) ApplyPayment(ctx context.Context, req *ApplyPaymentRequest) (*dto.ApplyPaymentResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	claims, err := access.Authorize(ctx, access.OpApplyPayment)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	in, err := paymentRequest(req)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	in.TenantID = claims.TenantID

	resp, err := h.uc.Pay.Execute(ctx, in)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &resp, nil
}

// Reprogram handles the gRPC Reprogram request. The acting user is the
// token's subject.
func (h *InstallmentHandler) Reprogram(ctx context.Context, req *ReprogramRequest) (*dto.ReprogramResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	claims, err := access.Authorize(ctx, access.OpReprogram)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	id, err := access.ParseID("sale_account_id", req.SaleAccountID)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}

	resp, err := h.uc.Reprogram.Execute(ctx, dto.ReprogramRequest{
		TenantID:      claims.TenantID,
		SaleAccountID: id,
		ActorID:       claims.UserID,
		Reason:        req.Reason,
		Modifications: req.Modifications,
		Discounts:     req.Discounts,
		PlanChange:    req.PlanChange,
	})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &resp, nil
}

// RecalculateBalances handles the gRPC RecalculateBalances request.
func (h *InstallmentHandler) RecalculateBalances(ctx context.Context, req *RecalculateBalancesRequest) (*dto.SaleAccountResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	claims, err := access.Authorize(ctx, access.OpRecalculateBalances)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	id, err := access.ParseID("sale_account_id", req.SaleAccountID)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}

	resp, err := h.uc.Recalculate.Execute(ctx, dto.RecalculateBalancesRequest{TenantID: claims.TenantID, SaleAccountID: id})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &resp, nil
}

// ListReprogrammings handles the gRPC ListReprogrammings request.
func (h *InstallmentHandler) ListReprogrammings(ctx context.Context, req *ListReprogrammingsRequest) (*dto.ListReprogrammingsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	claims, err := access.Authorize(ctx, access.OpListReprogrammings)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	id, err := access.ParseID("sale_account_id", req.SaleAccountID)
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}

	resp, err := h.uc.Reprogrammings.Execute(ctx, dto.ListReprogrammingsRequest{TenantID: claims.TenantID, SaleAccountID: id})
	if err != nil {
		return nil, h.toStatus(ctx, err)
	}
	return &resp, nil
}

func paymentRequest(req *ApplyPaymentRequest) (dto.ApplyPaymentRequest, error) {
	accountID, err := access.ParseID("sale_account_id", req.SaleAccountID)
	if err != nil {
		return dto.ApplyPaymentRequest{}, err
	}
	installmentID, err := access.ParseID("installment_id", req.InstallmentID)
	if err != nil {
		return dto.ApplyPaymentRequest{}, err
	}
	amount, err := access.ParseDecimal("amount", req.Amount)
	if err != nil {
		return dto.ApplyPaymentRequest{}, err
	}
	date, err := access.ParseDate("date", req.Date)
	if err != nil {
		return dto.ApplyPaymentRequest{}, err
	}
	return dto.ApplyPaymentRequest{
		SaleAccountID: accountID,
		InstallmentID: installmentID,
		Amount:        amount,
		Date:          date,
		Method:        req.Method,
		Note:          req.Note,
		ReceiptRef:    req.ReceiptRef,
	}, nil
}
