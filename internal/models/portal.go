package models

import "fmt"

// PortalType selects which role flag gates a portal login.
type PortalType string

const (
	PortalAdmin    PortalType = "admin"
	PortalStaff    PortalType = "staff"
	PortalOperator PortalType = "operator"
)

// ParsePortalType validates a portal type from client input.
func ParsePortalType(s string) (PortalType, error) {
	switch PortalType(s) {
	case PortalAdmin, PortalStaff, PortalOperator:
		return PortalType(s), nil
	default:
		return "", fmt.Errorf("%w: invalid portal type %q", ErrBadRequest, s)
	}
}

// RoleName returns the human-readable role name used in access-denied messages.
func (p PortalType) RoleName() string {
	switch p {
	case PortalAdmin:
		return "Administrator"
	case PortalStaff:
		return "Staff"
	case PortalOperator:
		return "Operator"
	default:
		return string(p)
	}
}

func (p PortalType) String() string {
	return string(p)
}
