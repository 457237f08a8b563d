package domain

import (
	"fmt"
	"strings"
)

// OwnershipPolicy decides whether update and delete check the task owner.
type OwnershipPolicy int

const (
	// OwnershipShared lets any authenticated user modify any task id.
	OwnershipShared OwnershipPolicy = iota
	// OwnershipEnforced hides tasks owned by someone else from update and delete.
	OwnershipEnforced
)

func (p OwnershipPolicy) String() string {
	switch p {
	case OwnershipEnforced:
		return "owner"
	default:
		return "shared"
	}
}

// ParseOwnershipPolicy accepts "shared" or "owner". Empty means shared.
func ParseOwnershipPolicy(s string) (OwnershipPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "shared":
		return OwnershipShared, nil
	case "owner", "enforced":
		return OwnershipEnforced, nil
	default:
		return OwnershipShared, fmt.Errorf("unknown ownership policy %q", s)
	}
}
