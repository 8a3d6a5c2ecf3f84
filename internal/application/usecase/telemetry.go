package usecase

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
)

const instrumentationName = "github.com/PremHer/kasvarealty-sub001/internal/application/usecase"

var tracer = otel.Tracer(instrumentationName)

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, "usecase."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Metrics holds the instruments recorded by the use cases. A nil *Metrics
// records nothing.
type Metrics struct {
	payments       metric.Int64Counter
	paymentAmount  metric.Float64Counter
	lateInterest   metric.Float64Counter
	reprogrammings metric.Int64Counter
	accounts       metric.Int64Counter
	rejections     metric.Int64Counter
	drift          metric.Int64Counter
	overdue        metric.Int64Counter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.payments, err = meter.Int64Counter("installment.payments",
		metric.WithDescription("Payments applied to installments")); err != nil {
		return nil, err
	}
	if m.paymentAmount, err = meter.Float64Counter("installment.payments.amount",
		metric.WithDescription("Amount received through payments")); err != nil {
		return nil, err
	}
	if m.lateInterest, err = meter.Float64Counter("installment.payments.late_interest",
		metric.WithDescription("Portion of payments that settled late interest")); err != nil {
		return nil, err
	}
	if m.reprogrammings, err = meter.Int64Counter("installment.reprogrammings",
		metric.WithDescription("Reprogramming batches applied")); err != nil {
		return nil, err
	}
	if m.accounts, err = meter.Int64Counter("installment.sale_accounts.created",
		metric.WithDescription("Sale accounts opened")); err != nil {
		return nil, err
	}
	if m.rejections, err = meter.Int64Counter("installment.rejections",
		metric.WithDescription("Operations rejected by validation or invariants")); err != nil {
		return nil, err
	}
	if m.drift, err = meter.Int64Counter("installment.balance_drift",
		metric.WithDescription("Schedules whose rounding drift exceeded tolerance")); err != nil {
		return nil, err
	}
	if m.overdue, err = meter.Int64Counter("installment.overdue_found",
		metric.WithDescription("Overdue installments found by sweeps")); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Metrics) paymentApplied(ctx context.Context, amount, late float64, state string) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("state", state))
	m.payments.Add(ctx, 1, attrs)
	m.paymentAmount.Add(ctx, amount)
	m.lateInterest.Add(ctx, late)
}

func (m *Metrics) reprogrammed(ctx context.Context, planChange bool) {
	if m == nil {
		return
	}
	m.reprogrammings.Add(ctx, 1, metric.WithAttributes(attribute.Bool("plan_change", planChange)))
}

func (m *Metrics) accountCreated(ctx context.Context, model string) {
	if m == nil {
		return
	}
	m.accounts.Add(ctx, 1, metric.WithAttributes(attribute.String("model", model)))
}

func (m *Metrics) rejected(ctx context.Context, operation string, err error) {
	if m == nil || !IsDomainError(err) {
		return
	}
	m.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("reason", ErrorCode(err)),
	))
}

func (m *Metrics) driftDetected(ctx context.Context) {
	if m == nil {
		return
	}
	m.drift.Add(ctx, 1)
}

func (m *Metrics) overdueFound(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.overdue.Add(ctx, int64(n))
}

var errorCodes = []struct {
	err  error
	code string
}{
	{model.ErrInvalidSchedule, "invalid_schedule"},
	{model.ErrModelMismatch, "model_mismatch"},
	{model.ErrInvalidRate, "invalid_rate"},
	{model.ErrOutOfOrderPayment, "out_of_order_payment"},
	{model.ErrInvalidAmount, "invalid_amount"},
	{model.ErrOverpayment, "overpayment"},
	{model.ErrMissingReason, "missing_reason"},
	{model.ErrImmutableInstallment, "immutable_installment"},
	{model.ErrPastDate, "past_date"},
	{model.ErrDiscountExceedsBalance, "discount_exceeds_balance"},
	{model.ErrPartiallyPaid, "partially_paid"},
	{model.ErrEmptyReprogramming, "empty_reprogramming"},
	{model.ErrInstallmentNotFound, "installment_not_found"},
	{model.ErrSaleAccountNotFound, "sale_account_not_found"},
	{model.ErrConcurrentModification, "concurrent_modification"},
	{model.ErrInvalidArgument, "invalid_argument"},
	{model.ErrDuplicatePayment, "duplicate_payment"},
}

// ErrorCode names the domain error wrapped in err, or "internal".
func ErrorCode(err error) string {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}

// IsDomainError reports whether err is a validation or invariant rejection
// rather than an infrastructure failure.
func IsDomainError(err error) bool {
	return ErrorCode(err) != "internal"
}
