package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/valueobject"
)

// Payment is an immutable record of money received against one installment.
// Amount is what the customer paid; it splits into the portion applied to
// the installment and the portion that settled late interest.
type Payment struct {
	ID            uuid.UUID
	InstallmentID uuid.UUID
	Amount        decimal.Decimal
	Applied       decimal.Decimal
	LateInterest  decimal.Decimal
	Date          time.Time
	Method        valueobject.PaymentMethod
	Note          string
	ReceiptRef    string
	RecordedAt    time.Time
}
