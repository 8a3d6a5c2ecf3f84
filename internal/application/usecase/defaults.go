package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/PremHer/kasvarealty-sub001/pkg/money"
)

// Defaults are deployment-wide fallbacks. Currency applies to new accounts
// that name none; LateInterestRate prices mora for accounts without their
// own rate.
type Defaults struct {
	Currency         money.Currency
	LateInterestRate decimal.NullDecimal
}
