package valueobject

import (
	"fmt"
	"strings"
)

// PaymentMethod records how a payment was received.
type PaymentMethod struct {
	value string
}

var (
	PaymentCash         = PaymentMethod{value: "CASH"}
	PaymentBankTransfer = PaymentMethod{value: "BANK_TRANSFER"}
	PaymentDeposit      = PaymentMethod{value: "DEPOSIT"}
	PaymentCard         = PaymentMethod{value: "CARD"}
	PaymentCheck        = PaymentMethod{value: "CHECK"}
	PaymentOther        = PaymentMethod{value: "OTHER"}
)

var validPaymentMethods = map[string]PaymentMethod{
	"CASH":          PaymentCash,
	"BANK_TRANSFER": PaymentBankTransfer,
	"DEPOSIT":       PaymentDeposit,
	"CARD":          PaymentCard,
	"CHECK":         PaymentCheck,
	"OTHER":         PaymentOther,
}

// NewPaymentMethod parses a method name; empty input means OTHER.
func NewPaymentMethod(s string) (PaymentMethod, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return PaymentOther, nil
	}
	v, ok := validPaymentMethods[s]
	if !ok {
		return PaymentMethod{}, fmt.Errorf("invalid payment method: %q", s)
	}
	return v, nil
}

func (m PaymentMethod) String() string { return m.value }
func (m PaymentMethod) IsZero() bool   { return m.value == "" }
