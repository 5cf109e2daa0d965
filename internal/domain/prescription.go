package domain

import (
	"strings"
)

const CollectionCodeLength = 6

type DurationType string

const (
	DurationLifetime  DurationType = "Lifetime"
	DurationTemporary DurationType = "Temporary"
)

func ParseDurationType(raw string) (DurationType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "lifetime":
		return DurationLifetime, nil
	case "temporary", "":
		return DurationTemporary, nil
	default:
		return "", NewValidationError("Duration must be Lifetime or Temporary.")
	}
}

// Prescription is outstanding while the server still lists it. CollectionCode
// is only sent to roles allowed to see it.
type Prescription struct {
	ID             string
	PatientID      string
	PharmacistID   string
	MedicineName   string
	Instructions   string
	DatePrescribed string
	DurationType   DurationType
	CollectionCode string
}

type NewPrescription struct {
	PatientID      string
	PharmacistID   string
	MedicineName   string
	Instructions   string
	DatePrescribed string
	DurationType   DurationType
}

func (p NewPrescription) Validate() error {
	if strings.TrimSpace(p.PatientID) == "" ||
		strings.TrimSpace(p.PharmacistID) == "" ||
		strings.TrimSpace(p.MedicineName) == "" {
		return NewValidationError(MsgFillRequiredFields)
	}
	switch p.DurationType {
	case DurationLifetime, DurationTemporary:
		return nil
	default:
		return NewValidationError("Duration must be Lifetime or Temporary.")
	}
}

// ValidateCollectionCode accepts exactly six ASCII digits.
func ValidateCollectionCode(code string) error {
	if len(code) != CollectionCodeLength {
		return NewValidationError(MsgInvalidCollectionCode)
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return NewValidationError(MsgInvalidCollectionCode)
		}
	}
	return nil
}
