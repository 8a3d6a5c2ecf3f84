package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/PremHer/kasvarealty-sub001/internal/application/dto"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/port"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/service"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/valueobject"
)

// ApplyPaymentUseCase records a payment against one installment.
type ApplyPaymentUseCase struct {
	repo     port.SaleAccountRepository
	locker   port.AccountLocker
	engine   *service.Engine
	defaults Defaults
	metrics  *Metrics
	logger   *slog.Logger
}

// NewApplyPaymentUseCase wires dependencies.
func NewApplyPaymentUseCase(
	repo port.SaleAccountRepository,
	locker port.AccountLocker,
	engine *service.Engine,
	defaults Defaults,
	metrics *Metrics,
	logger *slog.Logger,
) *ApplyPaymentUseCase {
	return &ApplyPaymentUseCase{
		repo:     repo,
		locker:   locker,
		engine:   engine,
		defaults: defaults,
		metrics:  metrics,
		logger:   logger,
	}
}

// Execute applies the payment while holding the account lock.
func (uc *ApplyPaymentUseCase) Execute(ctx context.Context, req dto.ApplyPaymentRequest) (resp dto.ApplyPaymentResponse, err error) {
	ctx, span := startSpan(ctx, "ApplyPayment",
		attribute.String("sale_account_id", req.SaleAccountID.String()),
		attribute.String("installment_id", req.InstallmentID.String()),
	)
	defer func() {
		uc.metrics.rejected(ctx, "apply_payment", err)
		endSpan(span, err)
	}()
	now := time.Now().UTC()

	method, err := valueobject.NewPaymentMethod(req.Method)
	if err != nil {
		return dto.ApplyPaymentResponse{}, model.Fail(model.ErrInvalidArgument, "method", err.Error())
	}

	// 1. Serialise with other mutations of the account.
	unlock, err := uc.locker.Lock(ctx, req.SaleAccountID)
	if err != nil {
		return dto.ApplyPaymentResponse{}, fmt.Errorf("lock sale account: %w", err)
	}
	defer unlock()

	// 2. Retrieve the account.
	account, err := uc.repo.FindByID(ctx, req.TenantID, req.SaleAccountID)
	if err != nil {
		return dto.ApplyPaymentResponse{}, fmt.Errorf("find sale account: %w", err)
	}

	// 3. Apply the payment.
	account, inst, err := uc.engine.ApplyPayment(account, service.PaymentInput{
		InstallmentID: req.InstallmentID,
		Amount:        req.Amount,
		Date:          req.Date,
		Method:        method,
		Note:          req.Note,
		ReceiptRef:    req.ReceiptRef,

		DefaultLateRate: uc.defaults.LateInterestRate,
	}, now)
	if err != nil {
		return dto.ApplyPaymentResponse{}, fmt.Errorf("apply payment: %w", err)
	}

	// 4. Persist; events leave through the outbox.
	if err := uc.repo.Save(ctx, account); err != nil {
		return dto.ApplyPaymentResponse{}, fmt.Errorf("save sale account: %w", err)
	}

	payment := inst.Payments[len(inst.Payments)-1]
	uc.metrics.paymentApplied(ctx, payment.Amount.InexactFloat64(), payment.LateInterest.InexactFloat64(), inst.State.String())
	uc.logger.Info("payment applied",
		"sale_account_id", account.ID(),
		"installment", inst.Number,
		"amount", payment.Amount.String(),
		"late_interest", payment.LateInterest.String(),
		"state", inst.State.String(),
	)

	rate := lateRate(account, uc.defaults.LateInterestRate)
	return dto.ApplyPaymentResponse{
		SaleAccountID: account.ID(),
		AccountStatus: string(account.Status()),
		Payment:       toPaymentResponse(payment),
		Installment:   toInstallmentResponse(uc.engine, inst, now, rate),
	}, nil
}
