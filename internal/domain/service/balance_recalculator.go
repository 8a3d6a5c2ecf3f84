package service

import (
	"github.com/shopspring/decimal"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
	"github.com/PremHer/kasvarealty-sub001/pkg/money"
)

// BalanceRecalculator rebuilds the balance chain and the principal/interest
// split of unpaid installments. Running it twice gives the same result.
type BalanceRecalculator struct{}

// Recalculate walks installments in sequence starting from financed. PAID
// installments keep their stored split; the rest are re-split with params.
func (BalanceRecalculator) Recalculate(installments []model.Installment, financed decimal.Decimal, params model.AmortizationParams) []model.Installment {
	out := model.CloneInstallments(installments)
	params.Frequency = frequencyOrDefault(params.Frequency)
	interestBearing := params.HasInterest()
	rate := params.PeriodRate()

	balance := financed
	for k := range out {
		inst := &out[k]
		inst.BalanceBefore = balance

		if !inst.IsPaid() || !inst.Principal.Valid {
			interest := decimal.Zero
			if interestBearing && balance.IsPositive() {
				interest = money.Min(money.Round(balance.Mul(rate)), inst.Amount)
			}
			inst.Interest = decimal.NewNullDecimal(interest)
			inst.Principal = decimal.NewNullDecimal(inst.Amount.Sub(interest))
		}

		balance = balance.Sub(inst.Principal.Decimal).Sub(inst.Discounted)
		inst.BalanceAfter = balance
	}
	return out
}

// RecalculateAccount applies Recalculate to the account's schedule.
func (r BalanceRecalculator) RecalculateAccount(account model.SaleAccount) (model.SaleAccount, error) {
	installments := r.Recalculate(account.Installments(), account.FinancedBalance(), account.AmortizationParams())
	return account.WithBalances(installments)
}
