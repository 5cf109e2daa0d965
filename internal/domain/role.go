package domain

import (
	"fmt"
	"strings"
)

type Role string

const (
	RolePatient    Role = "patient"
	RoleDoctor     Role = "doctor"
	RolePharmacist Role = "pharmacist"
)

// Roles lists the gate tabs in display order.
var Roles = []Role{RolePatient, RoleDoctor, RolePharmacist}

// ParseRole accepts the API role names and the tab labels, case-insensitively.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "patient":
		return RolePatient, nil
	case "doctor":
		return RoleDoctor, nil
	case "pharmacist", "pharma":
		return RolePharmacist, nil
	default:
		return "", fmt.Errorf("parse role %q: %w", raw, ErrUnknownRole)
	}
}

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RolePharmacist:
		return true
	default:
		return false
	}
}

// PathSegment is the role as it appears in /api/login/{role} and /api/register/{role}.
func (r Role) PathSegment() string {
	return strings.ToLower(string(r))
}

func (r Role) Label() string {
	switch r {
	case RolePatient:
		return "Patient"
	case RoleDoctor:
		return "Doctor"
	case RolePharmacist:
		return "Pharma"
	default:
		return string(r)
	}
}
