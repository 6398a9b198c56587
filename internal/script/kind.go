package script

import (
	"fmt"
	"strings"
)

// Kind selects the family of identifier the script produces.
type Kind string

const (
	KindNone       Kind = ""
	KindUnit       Kind = "U"
	KindAcceptance Kind = "C"
)

// ParseKind accepts U or C, or the long names unit and acceptance, in any
// case. An empty string yields KindNone.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return KindNone, nil
	case "u", "unit":
		return KindUnit, nil
	case "c", "acceptance":
		return KindAcceptance, nil
	default:
		return KindNone, fmt.Errorf("invalid kind %q: must be U (unit) or C (acceptance)", s)
	}
}

// String returns the token passed to the script.
func (k Kind) String() string {
	return string(k)
}

// Args returns the script arguments selecting k.
func (k Kind) Args() []string {
	if k == KindNone {
		return nil
	}
	return []string{"-kind", string(k)}
}
