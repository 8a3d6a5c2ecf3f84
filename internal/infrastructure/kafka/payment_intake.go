package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/PremHer/kasvarealty-sub001/internal/application/dto"
	"github.com/PremHer/kasvarealty-sub001/internal/application/usecase"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	pkgkafka "github.com/PremHer/kasvarealty-sub001/pkg/kafka"
)

// PaymentApplier is satisfied by usecase.ApplyPaymentUseCase.
type PaymentApplier interface {
	Execute(ctx context.Context, req dto.ApplyPaymentRequest) (dto.ApplyPaymentResponse, error)
}

// paymentMessage is a payment reported by the cashier or bank
// reconciliation systems. Date accepts YYYY-MM-DD or RFC 3339.
type paymentMessage struct {
	TenantID      uuid.UUID       `json:"tenant_id"`
	SaleAccountID uuid.UUID       `json:"sale_account_id"`
	InstallmentID uuid.UUID       `json:"installment_id"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	Method        string          `json:"method"`
	ReceiptRef    string          `json:"receipt_ref"`
	Note          string          `json:"note"`
}

var errMalformedPayment = errors.New("malformed payment message")

// PaymentIntake turns consumed payment messages into ApplyPayment calls.
type PaymentIntake struct {
	applier PaymentApplier
	logger  *slog.Logger
}

// NewPaymentIntake wires the intake handler.
func NewPaymentIntake(applier PaymentApplier, logger *slog.Logger) *PaymentIntake {
	return &PaymentIntake{applier: applier, logger: logger}
}

// Handle is a pkg/kafka.Handler. Malformed messages and business rejections
// are logged and committed. A redelivered receipt is committed as already
// applied. Infrastructure failures and version conflicts are
// returned so the offset stays uncommitted.
func (h *PaymentIntake) Handle(ctx context.Context, msg pkgkafka.Message) error {
	req, err := decodePayment(msg.Value)
	if err != nil {
		h.logger.WarnContext(ctx, "discarding payment message",
			"key", string(msg.Key),
			"error", err,
		)
		return nil
	}

	resp, err := h.applier.Execute(ctx, req)
	if errors.Is(err, model.ErrDuplicatePayment) {
		h.logger.InfoContext(ctx, "payment already applied",
			"sale_account_id", req.SaleAccountID,
			"receipt_ref", req.ReceiptRef,
		)
		return nil
	}
	if err != nil {
		if usecase.IsDomainError(err) && !errors.Is(err, model.ErrConcurrentModification) {
			h.logger.WarnContext(ctx, "payment rejected",
				"sale_account_id", req.SaleAccountID,
				"installment_id", req.InstallmentID,
				"receipt_ref", req.ReceiptRef,
				"code", usecase.ErrorCode(err),
				"error", err,
			)
			return nil
		}
		return fmt.Errorf("apply payment %s: %w", req.ReceiptRef, err)
	}

	h.logger.InfoContext(ctx, "payment intake applied",
		"sale_account_id", resp.SaleAccountID,
		"payment_id", resp.Payment.ID,
		"installment_state", resp.Installment.State,
	)
	return nil
}

func decodePayment(raw []byte) (dto.ApplyPaymentRequest, error) {
	var m paymentMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return dto.ApplyPaymentRequest{}, fmt.Errorf("%w: %v", errMalformedPayment, err)
	}
	if m.TenantID == uuid.Nil || m.SaleAccountID == uuid.Nil || m.InstallmentID == uuid.Nil {
		return dto.ApplyPaymentRequest{}, fmt.Errorf("%w: missing identifiers", errMalformedPayment)
	}
	date, err := parseDate(m.Date)
	if err != nil {
		return dto.ApplyPaymentRequest{}, fmt.Errorf("%w: %v", errMalformedPayment, err)
	}
	return dto.ApplyPaymentRequest{
		TenantID:      m.TenantID,
		SaleAccountID: m.SaleAccountID,
		InstallmentID: m.InstallmentID,
		Amount:        m.Amount,
		Date:          date,
		Method:        m.Method,
		Note:          m.Note,
		ReceiptRef:    m.ReceiptRef,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("date is required")
	}
	if d, err := time.Parse(time.DateOnly, s); err == nil {
		return d, nil
	}
	return time.Parse(time.RFC3339, s)
}
