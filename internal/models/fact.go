package models

import (
	"strings"
	"time"
)

// Role is the reported relationship of a drug to an adverse event.
type Role int

const (
	// RoleUnknown covers missing or unmapped characterization codes.
	RoleUnknown Role = iota
	// RolePrimarySuspect is characterization code "1".
	RolePrimarySuspect
	// RoleSecondarySuspect is characterization code "2".
	RoleSecondarySuspect
	// RoleConcomitant is characterization code "3".
	RoleConcomitant
)

// Roles lists every role in display order.
var Roles = []Role{RolePrimarySuspect, RoleSecondarySuspect, RoleConcomitant, RoleUnknown}

// RoleFromCode maps a feed characterization code to a Role.
func RoleFromCode(code string) Role {
	switch strings.TrimSpace(code) {
	case "1":
		return RolePrimarySuspect
	case "2":
		return RoleSecondarySuspect
	case "3":
		return RoleConcomitant
	default:
		return RoleUnknown
	}
}

// String returns the canonical identifier of the role.
func (r Role) String() string {
	switch r {
	case RolePrimarySuspect:
		return "PRIMARY_SUSPECT"
	case RoleSecondarySuspect:
		return "SECONDARY_SUSPECT"
	case RoleConcomitant:
		return "CONCOMITANT"
	default:
		return "UNKNOWN"
	}
}

// Label returns the human-readable role name.
func (r Role) Label() string {
	switch r {
	case RolePrimarySuspect:
		return "Primary suspect"
	case RoleSecondarySuspect:
		return "Secondary suspect"
	case RoleConcomitant:
		return "Concomitant"
	default:
		return "Unknown"
	}
}

// Rank returns the position of the role in Roles.
func (r Role) Rank() int {
	for i, role := range Roles {
		if role == r {
			return i
		}
	}
	return len(Roles)
}

// MarshalText encodes the role by its canonical identifier.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Fact is one normalized (date, drug, role) observation.
// A zero Date means the receipt date was missing or unparsable.
type Fact struct {
	Date time.Time
	Drug string
	Role Role
}

// HasDate reports whether the fact carries a receipt date.
func (f Fact) HasDate() bool {
	return !f.Date.IsZero()
}

// FactSet is the ordered output of one normalization pass.
// Treat it as read-only once produced.
type FactSet []Fact

// Dated returns the facts that carry a receipt date, in order.
func (fs FactSet) Dated() FactSet {
	out := make(FactSet, 0, len(fs))
	for _, f := range fs {
		if f.HasDate() {
			out = append(out, f)
		}
	}
	return out
}

// SameDrug reports whether two drug names match, ignoring case and
// surrounding whitespace.
func SameDrug(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
