package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Role is the registrant kind picked on the registration form.
// The numeric values are the ones the form submits.
type Role int

const (
	RoleVoter     Role = 1
	RoleAdmin     Role = 2
	RoleCandidate Role = 3
)

// Roles lists every role in form order.
func Roles() []Role {
	return []Role{RoleVoter, RoleAdmin, RoleCandidate}
}

func (r Role) String() string {
	switch r {
	case RoleVoter:
		return "voter"
	case RoleAdmin:
		return "admin"
	case RoleCandidate:
		return "candidate"
	default:
		return "unknown"
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleVoter, RoleAdmin, RoleCandidate:
		return true
	default:
		return false
	}
}

// CastsBallot reports whether accounts of this role own a voter record.
func (r Role) CastsBallot() bool {
	switch r {
	case RoleVoter, RoleAdmin:
		return true
	case RoleCandidate:
		return false
	default:
		return false
	}
}

// ParseRole accepts either the numeric form value ("3") or the role name
// ("candidate"). An empty value means a plain voter.
func ParseRole(raw string) (Role, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return RoleVoter, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		r := Role(n)
		if !r.Valid() {
			return 0, fmt.Errorf("invalid role %q", raw)
		}
		return r, nil
	}
	for _, r := range Roles() {
		if r.String() == raw {
			return r, nil
		}
	}
	return 0, fmt.Errorf("invalid role %q", raw)
}
