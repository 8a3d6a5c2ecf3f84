package testutil

import (
	"github.com/google/uuid"
)

// Fixed identifiers for deterministic tests.
var (
	TestTenantID      = uuid.MustParse("00000000-0000-0000-0000-000000000010")
	TestOtherTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000011")
	TestActorID       = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	TestCashierID     = uuid.MustParse("00000000-0000-0000-0000-000000000002")
)

const (
	TestLotRef      = "MZ-A-LT-01"
	TestCustomerRef = "CUST-0001"
)
