package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/internal/domain/valueobject"
	"github.com/PremHer/kasvarealty-sub001/pkg/money"
)

// InstallmentChange edits the amount and/or due date of one installment.
type InstallmentChange struct {
	InstallmentID uuid.UUID
	Amount        decimal.NullDecimal
	DueDate       *time.Time
}

// DiscountRequest forgives part of an installment. An empty Reason falls
// back to the reprogramming reason.
type DiscountRequest struct {
	InstallmentID uuid.UUID
	Amount        decimal.Decimal
	Reason        string
}

// ReprogramRequest is one audited batch edit.
type ReprogramRequest struct {
	Modifications []InstallmentChange
	Discounts     []DiscountRequest
	PlanChange    *model.PlanChange
	Reason        string
	ActorID       uuid.UUID
}

// ReprogrammingEngine applies batch edits to unpaid installments.
type ReprogrammingEngine struct {
	generator    *ScheduleGenerator
	amortizer    AmortizationCalculator
	recalculator BalanceRecalculator
}

// Reprogram validates and applies req at asOf, which also stamps the
// record; due dates are compared by calendar day. Nothing is applied unless
// every change is valid; on error the original account is returned.
// Modifications are applied before discounts, and the balance chain is
// recalculated afterwards.
func (e *ReprogrammingEngine) Reprogram(account model.SaleAccount, req ReprogramRequest, asOf time.Time) (model.SaleAccount, model.Reprogramming, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return account, model.Reprogramming{}, model.Fail(model.ErrMissingReason, "reason", "")
	}
	if len(req.Modifications) == 0 && len(req.Discounts) == 0 && req.PlanChange == nil {
		return account, model.Reprogramming{}, model.Fail(model.ErrEmptyReprogramming, "",
			"at least one modification, discount or plan change is required")
	}
	if req.PlanChange != nil && (len(req.Modifications) > 0 || len(req.Discounts) > 0) {
		return account, model.Reprogramming{}, model.Fail(model.ErrInvalidSchedule, "plan_change",
			"cannot be combined with modifications or discounts")
	}

	record := model.Reprogramming{
		ID:            uuid.New(),
		SaleAccountID: account.ID(),
		Reason:        reason,
		ActorID:       req.ActorID,
		CreatedAt:     asOf.UTC(),
	}
	asOf = valueobject.Date(asOf)
	work := account.Installments()
	params := account.AmortizationParams()
	var terms *model.AmortizationParams

	if req.PlanChange != nil {
		newParams, mods, err := e.changePlan(account, work, *req.PlanChange, asOf)
		if err != nil {
			return account, model.Reprogramming{}, err
		}
		work = mods.installments
		record.Modifications = mods.records
		pc := *req.PlanChange
		record.PlanChange = &pc
		params = newParams
		terms = &newParams
	} else {
		var err error
		if record.Modifications, err = applyModifications(work, req.Modifications, asOf); err != nil {
			return account, model.Reprogramming{}, err
		}
		if record.Discounts, err = applyDiscounts(work, req.Discounts, reason); err != nil {
			return account, model.Reprogramming{}, err
		}
	}

	work = e.recalculator.Recalculate(work, account.FinancedBalance(), params)
	next, err := account.Reschedule(work, record, terms, record.CreatedAt)
	if err != nil {
		return account, model.Reprogramming{}, err
	}
	return next, record, nil
}

func indexByID(work []model.Installment, id uuid.UUID) int {
	for k := range work {
		if work[k].ID == id {
			return k
		}
	}
	return -1
}

func notFound(id uuid.UUID) error {
	return &model.InstallmentError{Err: model.ErrInstallmentNotFound, InstallmentID: id}
}

// applyModifications edits amounts and due dates in place. An amount may not
// drop below what was already paid; zero on an untouched installment waives
// it, leaving it PAID with nothing paid.
func applyModifications(work []model.Installment, changes []InstallmentChange, asOf time.Time) ([]model.Modification, error) {
	records := make([]model.Modification, 0, len(changes))
	for _, ch := range changes {
		k := indexByID(work, ch.InstallmentID)
		if k < 0 {
			return nil, notFound(ch.InstallmentID)
		}
		inst := &work[k]
		if inst.IsPaid() {
			return nil, model.FailAt(model.ErrImmutableInstallment, *inst, "state", "paid installments cannot be modified")
		}
		if !ch.Amount.Valid && ch.DueDate == nil {
			return nil, model.FailAt(model.ErrEmptyReprogramming, *inst, "", "modification changes neither amount nor due date")
		}

		rec := model.Modification{
			InstallmentID:   inst.ID,
			Number:          inst.Number,
			PreviousAmount:  inst.Amount,
			NewAmount:       inst.Amount,
			PreviousDueDate: inst.DueDate,
			NewDueDate:      inst.DueDate,
		}
		if ch.DueDate != nil {
			due := valueobject.Date(*ch.DueDate)
			if due.Before(asOf) {
				return nil, model.FailAt(model.ErrPastDate, *inst, "due_date",
					fmt.Sprintf("%s is before %s", due.Format(time.DateOnly), asOf.Format(time.DateOnly)))
			}
			inst.DueDate = due
			rec.NewDueDate = due
		}
		if ch.Amount.Valid {
			amount := ch.Amount.Decimal
			switch {
			case amount.IsNegative():
				return nil, model.FailAt(model.ErrInvalidAmount, *inst, "amount", "must not be negative")
			case !amount.Equal(money.Round(amount)):
				return nil, model.FailAt(model.ErrInvalidAmount, *inst, "amount", "has more than two decimal places")
			case amount.LessThan(inst.AmountPaid):
				return nil, model.FailAt(model.ErrInvalidAmount, *inst, "amount",
					fmt.Sprintf("%s is below the %s already paid", amount.StringFixed(2), inst.AmountPaid.StringFixed(2)))
			}
			inst.Amount = amount
			resplit(inst, decimal.Zero)
			inst.State = inst.SettleState()
			rec.NewAmount = amount
		}
		records = append(records, rec)
	}
	return records, nil
}

func applyDiscounts(work []model.Installment, requests []DiscountRequest, reason string) ([]model.Discount, error) {
	records := make([]model.Discount, 0, len(requests))
	for _, d := range requests {
		k := indexByID(work, d.InstallmentID)
		if k < 0 {
			return nil, notFound(d.InstallmentID)
		}
		inst := &work[k]
		if inst.IsPaid() {
			return nil, model.FailAt(model.ErrImmutableInstallment, *inst, "state", "paid installments cannot be discounted")
		}
		if !d.Amount.IsPositive() || !d.Amount.Equal(money.Round(d.Amount)) {
			return nil, model.FailAt(model.ErrInvalidAmount, *inst, "discount", "must be a positive amount with at most two decimals")
		}
		if d.Amount.GreaterThan(inst.Pending()) {
			return nil, model.FailAt(model.ErrDiscountExceedsBalance, *inst, "discount",
				fmt.Sprintf("%s exceeds pending %s", d.Amount.StringFixed(2), inst.Pending().StringFixed(2)))
		}

		inst.Amount = inst.Amount.Sub(d.Amount)
		inst.Discounted = inst.Discounted.Add(d.Amount)
		resplit(inst, d.Amount)
		inst.State = inst.SettleState()

		r := strings.TrimSpace(d.Reason)
		if r == "" {
			r = reason
		}
		records = append(records, model.Discount{
			InstallmentID: inst.ID,
			Number:        inst.Number,
			Amount:        d.Amount,
			Reason:        r,
		})
	}
	return records, nil
}

// resplit keeps principal + interest == amount after the amount changed,
// taking forgiven off the principal first.
func resplit(inst *model.Installment, forgiven decimal.Decimal) {
	if !inst.Principal.Valid || !inst.Interest.Valid {
		return
	}
	principal := inst.Principal.Decimal.Sub(forgiven)
	interest := inst.Interest.Decimal
	if forgiven.IsZero() {
		principal = inst.Amount.Sub(interest)
	}
	if principal.IsNegative() {
		principal = decimal.Zero
	}
	if principal.GreaterThan(inst.Amount) {
		principal = inst.Amount
	}
	inst.Principal = decimal.NewNullDecimal(principal)
	inst.Interest = decimal.NewNullDecimal(inst.Amount.Sub(principal))
}

type regenerated struct {
	installments []model.Installment
	records      []model.Modification
}

// changePlan re-runs generation and amortization over the unpaid
// installments, keeping their IDs and sequence numbers. The base includes
// amounts already forgiven on unpaid installments; each discount is taken
// off its regenerated installment again, principal first.
func (e *ReprogrammingEngine) changePlan(
	account model.SaleAccount,
	work []model.Installment,
	pc model.PlanChange,
	asOf time.Time,
) (model.AmortizationParams, regenerated, error) {
	params := account.AmortizationParams()
	if !pc.Model.IsZero() {
		params.Model = pc.Model
	}
	if pc.Rate.Valid {
		params.Rate = pc.Rate
	}
	if pc.Frequency != nil {
		params.Frequency = *pc.Frequency
	}
	if pc.BalloonFraction.Valid {
		params.BalloonFraction = pc.BalloonFraction
	}
	params.Frequency = frequencyOrDefault(params.Frequency)
	if err := validateParams(params); err != nil {
		return params, regenerated{}, err
	}

	var unpaid []int
	retired := decimal.Zero
	for k, inst := range work {
		if inst.State.Equal(valueobject.StatePartial) {
			return params, regenerated{}, model.FailAt(model.ErrPartiallyPaid, inst, "state",
				"settle or reprogram the partial installment before changing the plan")
		}
		if inst.IsPaid() {
			if inst.Principal.Valid {
				retired = retired.Add(inst.Principal.Decimal)
			} else {
				retired = retired.Add(inst.Amount)
			}
			retired = retired.Add(inst.Discounted)
			continue
		}
		unpaid = append(unpaid, k)
	}
	if len(unpaid) == 0 {
		return params, regenerated{}, model.Fail(model.ErrImmutableInstallment, "plan_change", "every installment is already paid")
	}

	first := work[unpaid[0]].DueDate
	if pc.FirstDueDate != nil {
		first = valueobject.Date(*pc.FirstDueDate)
	}
	if first.Before(asOf) {
		return params, regenerated{}, model.FailAt(model.ErrPastDate, work[unpaid[0]], "first_due_date",
			fmt.Sprintf("%s is before %s", first.Format(time.DateOnly), asOf.Format(time.DateOnly)))
	}

	base := account.FinancedBalance().Sub(retired)
	fresh, err := e.generator.Generate(model.SaleTerms{
		FinancedBalance: base,
		Count:           len(unpaid),
		Frequency:       params.Frequency,
		FirstDueDate:    first,
	})
	if err != nil {
		return params, regenerated{}, err
	}
	result, err := e.amortizer.Amortize(fresh, params)
	if err != nil {
		return params, regenerated{}, err
	}

	out := regenerated{installments: work, records: make([]model.Modification, 0, len(unpaid))}
	for j, k := range unpaid {
		old := work[k]
		gen := result.Installments[j]
		updated := old
		updated.DueDate = gen.DueDate
		updated.Amount = gen.Amount
		updated.Principal = gen.Principal
		updated.Interest = gen.Interest
		if old.Discounted.IsPositive() {
			if old.Discounted.GreaterThan(gen.Amount) {
				return params, regenerated{}, model.FailAt(model.ErrDiscountExceedsBalance, old, "discount",
					fmt.Sprintf("existing discount %s exceeds regenerated amount %s",
						old.Discounted.StringFixed(2), gen.Amount.StringFixed(2)))
			}
			updated.Amount = gen.Amount.Sub(old.Discounted)
			resplit(&updated, old.Discounted)
		}
		updated.State = updated.SettleState()
		out.installments[k] = updated
		out.records = append(out.records, model.Modification{
			InstallmentID:   old.ID,
			Number:          old.Number,
			PreviousAmount:  old.Amount,
			NewAmount:       updated.Amount,
			PreviousDueDate: old.DueDate,
			NewDueDate:      updated.DueDate,
		})
	}
	return params, out, nil
}
