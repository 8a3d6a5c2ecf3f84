package valueobject

// AccountStatus is derived from the installments: SETTLED once every
// installment is PAID.
type AccountStatus string

const (
	AccountActive  AccountStatus = "ACTIVE"
	AccountSettled AccountStatus = "SETTLED"
)
