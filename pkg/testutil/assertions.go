package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// RequireDecimal fails unless got equals want numerically, so "1000" and
// "1000.00" match.
func RequireDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got),
		"want %s, got %s %v", want, got.String(), msgAndArgs)
}

// AssertErrorContains checks that err contains the expected substring.
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	require.Error(t, err)
	require.Contains(t, err.Error(), expected)
}
