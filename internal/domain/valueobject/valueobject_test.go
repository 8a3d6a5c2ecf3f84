package valueobject_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/valueobject"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		in   string
		want valueobject.Frequency
	}{
		{"WEEKLY", valueobject.FrequencyWeekly},
		{"biweekly", valueobject.FrequencyBiweekly},
		{" quarterly ", valueobject.FrequencyQuarterly},
		{"ANNUAL", valueobject.FrequencyAnnual},
		{"", valueobject.FrequencyMonthly},
		{"FORTNIGHTLY", valueobject.FrequencyMonthly},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, tt.want.Equal(valueobject.ParseFrequency(tt.in)))
		})
	}
	assert.Equal(t, "MONTHLY", valueobject.Frequency{}.String())
}

func TestFrequency_PeriodsPerYear(t *testing.T) {
	assert.Equal(t, 52, valueobject.FrequencyWeekly.PeriodsPerYear())
	assert.Equal(t, 24, valueobject.FrequencyBiweekly.PeriodsPerYear())
	assert.Equal(t, 12, valueobject.FrequencyMonthly.PeriodsPerYear())
	assert.Equal(t, 6, valueobject.FrequencyBimonthly.PeriodsPerYear())
	assert.Equal(t, 4, valueobject.FrequencyQuarterly.PeriodsPerYear())
	assert.Equal(t, 2, valueobject.FrequencySemiannual.PeriodsPerYear())
	assert.Equal(t, 1, valueobject.FrequencyAnnual.PeriodsPerYear())
	assert.Equal(t, 12, valueobject.Frequency{}.PeriodsPerYear())
}

func TestFrequency_DueDate(t *testing.T) {
	t.Run("monthly clamps to month end and recovers", func(t *testing.T) {
		first := date(2025, time.January, 31)
		f := valueobject.FrequencyMonthly
		assert.Equal(t, date(2025, time.January, 31), f.DueDate(first, 0))
		assert.Equal(t, date(2025, time.February, 28), f.DueDate(first, 1))
		assert.Equal(t, date(2025, time.March, 31), f.DueDate(first, 2))
		assert.Equal(t, date(2025, time.April, 30), f.DueDate(first, 3))
	})

	t.Run("leap year february", func(t *testing.T) {
		assert.Equal(t, date(2024, time.February, 29),
			valueobject.FrequencyMonthly.DueDate(date(2024, time.January, 31), 1))
	})

	t.Run("quarterly crosses year", func(t *testing.T) {
		assert.Equal(t, date(2026, time.February, 28),
			valueobject.FrequencyQuarterly.DueDate(date(2025, time.November, 30), 1))
	})

	t.Run("annual from leap day", func(t *testing.T) {
		assert.Equal(t, date(2025, time.February, 28),
			valueobject.FrequencyAnnual.DueDate(date(2024, time.February, 29), 1))
		assert.Equal(t, date(2028, time.February, 29),
			valueobject.FrequencyAnnual.DueDate(date(2024, time.February, 29), 4))
	})

	t.Run("day based", func(t *testing.T) {
		first := date(2025, time.March, 1)
		assert.Equal(t, date(2025, time.March, 22), valueobject.FrequencyWeekly.DueDate(first, 3))
		assert.Equal(t, date(2025, time.March, 31), valueobject.FrequencyBiweekly.DueDate(first, 2))
	})

	t.Run("clock part is dropped", func(t *testing.T) {
		first := time.Date(2025, time.May, 10, 23, 59, 0, 0, time.UTC)
		assert.Equal(t, date(2025, time.June, 10), valueobject.FrequencyMonthly.DueDate(first, 1))
	})
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 30, valueobject.DaysBetween(date(2025, time.February, 1), date(2025, time.March, 3)))
	assert.Equal(t, 0, valueobject.DaysBetween(date(2025, time.February, 1), time.Date(2025, 2, 1, 18, 0, 0, 0, time.UTC)))
	assert.Equal(t, -1, valueobject.DaysBetween(date(2025, time.February, 2), date(2025, time.February, 1)))
}

func TestAmortizationModel(t *testing.T) {
	assert.True(t, valueobject.ParseAmortizationModel("french").Equal(valueobject.AmortizationFrench))
	assert.True(t, valueobject.ParseAmortizationModel("GERMAN").Known())
	assert.True(t, valueobject.ParseAmortizationModel("japanese").Known())

	unknown := valueobject.ParseAmortizationModel("AMERICAN")
	assert.False(t, unknown.Known())
	assert.Equal(t, "AMERICAN", unknown.String())

	none := valueobject.ParseAmortizationModel("  ")
	assert.True(t, none.IsZero())
	assert.False(t, none.Known())
}

func TestInstallmentState(t *testing.T) {
	s, err := valueobject.NewInstallmentState("PARTIAL")
	require.NoError(t, err)
	assert.True(t, s.Equal(valueobject.StatePartial))
	assert.False(t, s.IsPaid())

	_, err = valueobject.NewInstallmentState("OVERDUE")
	assert.Error(t, err, "OVERDUE is a label, never a stored state")
}

func TestPaymentMethod(t *testing.T) {
	m, err := valueobject.NewPaymentMethod("bank_transfer")
	require.NoError(t, err)
	assert.Equal(t, valueobject.PaymentBankTransfer, m)

	m, err = valueobject.NewPaymentMethod("")
	require.NoError(t, err)
	assert.Equal(t, valueobject.PaymentOther, m)

	_, err = valueobject.NewPaymentMethod("BITCOIN")
	assert.Error(t, err)
}

func TestProperty(t *testing.T) {
	kind, err := valueobject.ParsePropertyKind("cemetery_unit")
	require.NoError(t, err)
	assert.Equal(t, valueobject.PropertyCemeteryUnit, kind)

	p, err := valueobject.NewProperty(kind, " MZ-B/12 ")
	require.NoError(t, err)
	assert.Equal(t, "MZ-B/12", p.Ref())
	assert.Equal(t, "CEMETERY_UNIT", p.Kind().String())

	_, err = valueobject.NewProperty(valueobject.PropertyLot, "")
	assert.Error(t, err)

	_, err = valueobject.ParsePropertyKind("HOUSE")
	assert.Error(t, err)
}
