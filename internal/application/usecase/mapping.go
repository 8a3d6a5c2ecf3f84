package usecase

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PremHer/kasvarealty-sub001/internal/application/dto"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/service"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/valueobject"
	"github.com/PremHer/kasvarealty-sub001/pkg/money"
)

// ---------------------------------------------------------------------------
// Request mapping
// ---------------------------------------------------------------------------

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

// buildTerms converts caller terms into the generator and amortizer inputs.
func buildTerms(t dto.ScheduleTerms) (model.SaleTerms, model.AmortizationParams, error) {
	if !t.TotalPrice.IsPositive() {
		return model.SaleTerms{}, model.AmortizationParams{},
			model.Fail(model.ErrInvalidAmount, "total_price", "must be positive")
	}
	if t.InitialPayment.IsNegative() {
		return model.SaleTerms{}, model.AmortizationParams{},
			model.Fail(model.ErrInvalidAmount, "initial_payment", "must not be negative")
	}
	financed := money.Round(t.TotalPrice.Sub(t.InitialPayment))
	if !financed.IsPositive() {
		return model.SaleTerms{}, model.AmortizationParams{},
			model.Fail(model.ErrInvalidAmount, "initial_payment", "leaves nothing to finance")
	}

	freq := valueobject.ParseFrequency(t.Frequency)
	terms := model.SaleTerms{
		FinancedBalance: financed,
		Count:           t.InstallmentCount,
		Frequency:       freq,
		FirstDueDate:    t.FirstDueDate,
	}
	for _, c := range t.CustomInstallments {
		terms.Custom = append(terms.Custom, model.CustomInstallment{Amount: c.Amount, DueDate: c.DueDate})
	}
	params := model.AmortizationParams{
		Rate:            nullDecimal(t.InterestRate),
		Model:           valueobject.ParseAmortizationModel(t.AmortizationModel),
		Frequency:       freq,
		BalloonFraction: nullDecimal(t.BalloonFraction),
	}
	return terms, params, nil
}

func toPlanChange(pc *dto.PlanChangeRequest) *model.PlanChange {
	if pc == nil {
		return nil
	}
	out := &model.PlanChange{
		Model:           valueobject.ParseAmortizationModel(pc.AmortizationModel),
		Rate:            nullDecimal(pc.InterestRate),
		FirstDueDate:    pc.FirstDueDate,
		BalloonFraction: nullDecimal(pc.BalloonFraction),
	}
	if strings.TrimSpace(pc.Frequency) != "" {
		f := valueobject.ParseFrequency(pc.Frequency)
		out.Frequency = &f
	}
	return out
}

func toReprogramRequest(req dto.ReprogramRequest) service.ReprogramRequest {
	out := service.ReprogramRequest{
		PlanChange: toPlanChange(req.PlanChange),
		Reason:     req.Reason,
		ActorID:    req.ActorID,
	}
	for _, m := range req.Modifications {
		out.Modifications = append(out.Modifications, service.InstallmentChange{
			InstallmentID: m.InstallmentID,
			Amount:        nullDecimal(m.Amount),
			DueDate:       m.DueDate,
		})
	}
	for _, d := range req.Discounts {
		out.Discounts = append(out.Discounts, service.DiscountRequest{
			InstallmentID: d.InstallmentID,
			Amount:        d.Amount,
			Reason:        d.Reason,
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Response mapping
// ---------------------------------------------------------------------------

func asOfOrNow(asOf time.Time) time.Time {
	if asOf.IsZero() {
		return time.Now().UTC()
	}
	return asOf.UTC()
}

// lateRate picks the first valid rate: the account's own, then the
// configured default.
func lateRate(account model.SaleAccount, fallback decimal.NullDecimal) decimal.NullDecimal {
	if r := account.LateInterestRate(); r.Valid {
		return r
	}
	return fallback
}

func toPaymentResponse(p model.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:            p.ID,
		InstallmentID: p.InstallmentID,
		Amount:        p.Amount,
		Applied:       p.Applied,
		LateInterest:  p.LateInterest,
		Date:          p.Date,
		Method:        p.Method.String(),
		Note:          p.Note,
		ReceiptRef:    p.ReceiptRef,
		RecordedAt:    p.RecordedAt,
	}
}

// toInstallmentResponse labels inst as seen at asOf. Mora is only computed
// when rate is valid.
func toInstallmentResponse(engine *service.Engine, inst model.Installment, asOf time.Time, rate decimal.NullDecimal) dto.InstallmentResponse {
	resp := dto.InstallmentResponse{
		ID:            inst.ID,
		Number:        inst.Number,
		DueDate:       inst.DueDate,
		Amount:        inst.Amount,
		Principal:     decimalPtr(inst.Principal),
		Interest:      decimalPtr(inst.Interest),
		AmountPaid:    inst.AmountPaid,
		Discounted:    inst.Discounted,
		Pending:       inst.Pending(),
		BalanceBefore: inst.BalanceBefore,
		BalanceAfter:  inst.BalanceAfter,
		State:         inst.State.String(),
		Status:        string(inst.StatusAt(asOf)),
		Mora:          decimal.Zero,
	}
	if inst.IsOverdue(asOf) {
		resp.DaysLate = service.DaysLate(inst, asOf)
		if rate.Valid {
			resp.Mora = engine.MoraFor(inst, asOf, rate.Decimal)
		}
	}
	for _, p := range inst.Payments {
		resp.Payments = append(resp.Payments, toPaymentResponse(p))
	}
	return resp
}

func toSaleAccountResponse(engine *service.Engine, account model.SaleAccount, asOf time.Time, fallbackRate decimal.NullDecimal) dto.SaleAccountResponse {
	rate := lateRate(account, fallbackRate)
	resp := dto.SaleAccountResponse{
		ID:                account.ID(),
		TenantID:          account.TenantID(),
		PropertyKind:      account.Property().Kind().String(),
		PropertyRef:       account.Property().Ref(),
		CustomerRef:       account.CustomerRef(),
		Currency:          account.Currency().Code(),
		TotalPrice:        account.TotalPrice(),
		InitialPayment:    account.InitialPayment(),
		FinancedBalance:   account.FinancedBalance(),
		InterestRate:      decimalPtr(account.InterestRate()),
		LateInterestRate:  decimalPtr(account.LateInterestRate()),
		AmortizationModel: account.Model().String(),
		Frequency:         account.Frequency().String(),
		BalloonFraction:   decimalPtr(account.BalloonFraction()),
		Status:            string(account.Status()),
		AsOf:              asOf,
		PendingTotal:      decimal.Zero,
		MoraTotal:         decimal.Zero,
		Version:           account.Version(),
		CreatedAt:         account.CreatedAt(),
		UpdatedAt:         account.UpdatedAt(),
	}
	installments := account.Installments()
	resp.Installments = make([]dto.InstallmentResponse, 0, len(installments))
	for _, inst := range installments {
		ir := toInstallmentResponse(engine, inst, asOf, rate)
		resp.PendingTotal = resp.PendingTotal.Add(ir.Pending)
		resp.MoraTotal = resp.MoraTotal.Add(ir.Mora)
		resp.Installments = append(resp.Installments, ir)
	}
	return resp
}

func toReprogrammingResponse(r model.Reprogramming) dto.ReprogrammingResponse {
	resp := dto.ReprogrammingResponse{
		ID:            r.ID,
		SaleAccountID: r.SaleAccountID,
		Reason:        r.Reason,
		ActorID:       r.ActorID,
		CreatedAt:     r.CreatedAt,
		Modifications: make([]dto.ModificationResponse, 0, len(r.Modifications)),
		Discounts:     make([]dto.DiscountResponse, 0, len(r.Discounts)),
	}
	if pc := r.PlanChange; pc != nil {
		out := &dto.PlanChangeRequest{
			AmortizationModel: pc.Model.String(),
			InterestRate:      decimalPtr(pc.Rate),
			FirstDueDate:      pc.FirstDueDate,
			BalloonFraction:   decimalPtr(pc.BalloonFraction),
		}
		if pc.Frequency != nil {
			out.Frequency = pc.Frequency.String()
		}
		resp.PlanChange = out
	}
	for _, m := range r.Modifications {
		resp.Modifications = append(resp.Modifications, dto.ModificationResponse{
			InstallmentID:   m.InstallmentID,
			Number:          m.Number,
			PreviousAmount:  m.PreviousAmount,
			NewAmount:       m.NewAmount,
			PreviousDueDate: m.PreviousDueDate,
			NewDueDate:      m.NewDueDate,
		})
	}
	for _, d := range r.Discounts {
		resp.Discounts = append(resp.Discounts, dto.DiscountResponse{
			InstallmentID: d.InstallmentID,
			Number:        d.Number,
			Amount:        d.Amount,
			Reason:        d.Reason,
		})
	}
	return resp
}
