package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// InstallmentState – stored lifecycle of an installment
// ---------------------------------------------------------------------------

// InstallmentState is PENDING, PARTIAL or PAID. OVERDUE is not a state; see
// InstallmentLabel.
type InstallmentState struct {
	value string
}

const (
	statePending = "PENDING"
	statePartial = "PARTIAL"
	statePaid    = "PAID"
	labelOverdue = "OVERDUE"
)

var (
	StatePending = InstallmentState{value: statePending}
	StatePartial = InstallmentState{value: statePartial}
	StatePaid    = InstallmentState{value: statePaid}
)

var validStates = map[string]InstallmentState{
	statePending: StatePending,
	statePartial: StatePartial,
	statePaid:    StatePaid,
}

// NewInstallmentState parses a stored state.
func NewInstallmentState(s string) (InstallmentState, error) {
	v, ok := validStates[s]
	if !ok {
		return InstallmentState{}, fmt.Errorf("invalid installment state: %q", s)
	}
	return v, nil
}

func (s InstallmentState) String() string { return s.value }
func (s InstallmentState) IsZero() bool   { return s.value == "" }
func (s InstallmentState) IsPaid() bool   { return s.value == statePaid }

func (s InstallmentState) Equal(other InstallmentState) bool { return s.value == other.value }

// InstallmentLabel is what a reader sees at a given date: the stored state,
// or OVERDUE when the due date has passed with a balance remaining.
type InstallmentLabel string

const (
	LabelPending InstallmentLabel = statePending
	LabelPartial InstallmentLabel = statePartial
	LabelPaid    InstallmentLabel = statePaid
	LabelOverdue InstallmentLabel = labelOverdue
)
