package domain

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

type Credentials struct {
	Email    string
	Password string
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return NewValidationError(MsgFillAllFields)
	}
	if !ValidEmail(strings.TrimSpace(c.Email)) {
		return NewValidationError(MsgInvalidEmail)
	}
	return nil
}

// Registration holds every signup field; which ones are sent depends on the role.
type Registration struct {
	Name           string
	Email          string
	Password       string
	DoctorID       string
	DateOfBirth    string
	PatientHistory string
	Specialisation string
}

func (r Registration) Validate(role Role) error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return NewValidationError(MsgFillRequiredFields)
	}
	if !ValidEmail(strings.TrimSpace(r.Email)) {
		return NewValidationError(MsgInvalidEmail)
	}
	if role == RolePatient && (strings.TrimSpace(r.DoctorID) == "" || strings.TrimSpace(r.DateOfBirth) == "") {
		return NewValidationError(MsgPatientSignupFields)
	}
	return nil
}
