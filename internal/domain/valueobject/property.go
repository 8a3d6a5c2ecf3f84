package valueobject

import (
	"errors"
	"fmt"
	"strings"
)

// PropertyKind distinguishes what was sold on credit.
type PropertyKind int

const (
	PropertyLot PropertyKind = iota + 1
	PropertyCemeteryUnit
)

func (k PropertyKind) String() string {
	switch k {
	case PropertyLot:
		return "LOT"
	case PropertyCemeteryUnit:
		return "CEMETERY_UNIT"
	default:
		return fmt.Sprintf("PropertyKind(%d)", int(k))
	}
}

// ParsePropertyKind accepts LOT or CEMETERY_UNIT.
func ParsePropertyKind(s string) (PropertyKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOT":
		return PropertyLot, nil
	case "CEMETERY_UNIT":
		return PropertyCemeteryUnit, nil
	default:
		return 0, fmt.Errorf("invalid property kind: %q", s)
	}
}

// Property references the sold unit in the inventory system, which owns
// everything else about it.
type Property struct {
	kind PropertyKind
	ref  string
}

// NewProperty requires a known kind and a non-empty inventory reference.
func NewProperty(kind PropertyKind, ref string) (Property, error) {
	if kind != PropertyLot && kind != PropertyCemeteryUnit {
		return Property{}, fmt.Errorf("invalid property kind: %s", kind)
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Property{}, errors.New("property reference is required")
	}
	return Property{kind: kind, ref: ref}, nil
}

func (p Property) Kind() PropertyKind { return p.kind }
func (p Property) Ref() string        { return p.ref }
func (p Property) IsZero() bool       { return p.kind == 0 }
