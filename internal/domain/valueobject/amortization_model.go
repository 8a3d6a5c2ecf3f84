package valueobject

import "strings"

// AmortizationModel selects how each installment is split into principal
// and interest. The raw name is kept so that an unrecognised model survives
// parsing and can be rejected where it matters, namely on interest-bearing
// accounts.
type AmortizationModel struct {
	value string
}

const (
	modelFrench   = "FRENCH"
	modelGerman   = "GERMAN"
	modelJapanese = "JAPANESE"
)

var (
	AmortizationFrench   = AmortizationModel{value: modelFrench}
	AmortizationGerman   = AmortizationModel{value: modelGerman}
	AmortizationJapanese = AmortizationModel{value: modelJapanese}
)

var knownModels = map[string]AmortizationModel{
	modelFrench:   AmortizationFrench,
	modelGerman:   AmortizationGerman,
	modelJapanese: AmortizationJapanese,
}

// ParseAmortizationModel normalises s without validating it.
func ParseAmortizationModel(s string) AmortizationModel {
	return AmortizationModel{value: strings.ToUpper(strings.TrimSpace(s))}
}

func (m AmortizationModel) String() string { return m.value }
func (m AmortizationModel) IsZero() bool   { return m.value == "" }

// Known reports whether m is FRENCH, GERMAN or JAPANESE.
func (m AmortizationModel) Known() bool {
	_, ok := knownModels[m.value]
	return ok
}

func (m AmortizationModel) Equal(other AmortizationModel) bool { return m.value == other.value }
