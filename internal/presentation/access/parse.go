package access

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/PremHer/kasvarealty-sub001/internal/domain/model"
)

// ParseID parses a required UUID.
func ParseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, model.Fail(model.ErrInvalidArgument, field, "must be a UUID")
	}
	return id, nil
}

// ParseDate accepts YYYY-MM-DD or RFC 3339. Empty input yields the zero
// time, which use cases read as "now".
func ParseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if d, err := time.Parse(time.DateOnly, raw); err == nil {
		return d, nil
	}
	d, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, model.Fail(model.ErrInvalidArgument, field, fmt.Sprintf("must be YYYY-MM-DD, got %q", raw))
	}
	return d, nil
}

// ParseDecimal parses a required amount.
func ParseDecimal(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, model.Fail(model.ErrInvalidArgument, field, "must be a decimal number")
	}
	return d, nil
}

// ParseOptionalDecimal returns nil for empty input.
func ParseOptionalDecimal(field, raw string) (*decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := ParseDecimal(field, raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
