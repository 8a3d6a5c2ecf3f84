package valueobject

import (
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Frequency – immutable value object
// ---------------------------------------------------------------------------

// Frequency is the spacing between consecutive installment due dates.
type Frequency struct {
	value string
}

const (
	frequencyWeekly     = "WEEKLY"
	frequencyBiweekly   = "BIWEEKLY"
	frequencyMonthly    = "MONTHLY"
	frequencyBimonthly  = "BIMONTHLY"
	frequencyQuarterly  = "QUARTERLY"
	frequencySemiannual = "SEMIANNUAL"
	frequencyAnnual     = "ANNUAL"
)

var (
	FrequencyWeekly     = Frequency{value: frequencyWeekly}
	FrequencyBiweekly   = Frequency{value: frequencyBiweekly}
	FrequencyMonthly    = Frequency{value: frequencyMonthly}
	FrequencyBimonthly  = Frequency{value: frequencyBimonthly}
	FrequencyQuarterly  = Frequency{value: frequencyQuarterly}
	FrequencySemiannual = Frequency{value: frequencySemiannual}
	FrequencyAnnual     = Frequency{value: frequencyAnnual}
)

type frequencyRule struct {
	days, months, periodsPerYear int
}

var frequencyRules = map[string]frequencyRule{
	frequencyWeekly:     {days: 7, periodsPerYear: 52},
	frequencyBiweekly:   {days: 15, periodsPerYear: 24},
	frequencyMonthly:    {months: 1, periodsPerYear: 12},
	frequencyBimonthly:  {months: 2, periodsPerYear: 6},
	frequencyQuarterly:  {months: 3, periodsPerYear: 4},
	frequencySemiannual: {months: 6, periodsPerYear: 2},
	frequencyAnnual:     {months: 12, periodsPerYear: 1},
}

// ParseFrequency never fails: empty or unknown input yields MONTHLY.
func ParseFrequency(s string) Frequency {
	v := strings.ToUpper(strings.TrimSpace(s))
	if _, ok := frequencyRules[v]; !ok {
		return FrequencyMonthly
	}
	return Frequency{value: v}
}

// String returns the canonical name. The zero value reports MONTHLY.
func (f Frequency) String() string {
	if _, ok := frequencyRules[f.value]; ok {
		return f.value
	}
	return frequencyMonthly
}

// Equal compares canonical names.
func (f Frequency) Equal(other Frequency) bool { return f.String() == other.String() }

// PeriodsPerYear is used to derive the period rate from an annual rate.
func (f Frequency) PeriodsPerYear() int { return f.rule().periodsPerYear }

// DueDate returns the due date of the installment at zero-based index i.
// Calendar-month frequencies are stepped from first, not chained, and clamp
// to the last day of the target month.
func (f Frequency) DueDate(first time.Time, i int) time.Time {
	first = Date(first)
	r := f.rule()
	if r.days > 0 {
		return first.AddDate(0, 0, r.days*i)
	}
	return addMonthsClamped(first, r.months*i)
}

func (f Frequency) rule() frequencyRule {
	if r, ok := frequencyRules[f.value]; ok {
		return r
	}
	return frequencyRules[frequencyMonthly]
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, 0, 0, 0, 0, time.UTC)
}
