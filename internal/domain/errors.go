package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrNoWorkspace          = errors.New("no workspace for role")
	ErrWrongWorkspace       = errors.New("operation not available for this role")
	ErrUnknownRole          = errors.New("unknown role")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrPrescriptionNotFound = errors.New("prescription not found")
	ErrPatientNotFound      = errors.New("patient not found")
	ErrUnknownSearchField   = errors.New("unknown search field")
	ErrClosed               = errors.New("closed")
)

const (
	MsgFillAllFields         = "Please fill in all fields."
	MsgFillRequiredFields    = "Please fill in all required fields."
	MsgInvalidEmail          = "Please enter a valid email address."
	MsgPatientSignupFields   = "Please enter doctor ID and date of birth."
	MsgInvalidCollectionCode = "Collection code must be exactly 6 digits."
	MsgSelectPrescription    = "Select a prescription first."
	MsgSelectPatient         = "Select a patient first."
	MsgEmptyMessage          = "Message cannot be empty."
	MsgLoginFailed           = "Login failed."
	MsgSignupFailed          = "Signup failed."
	MsgNetworkFailure        = "An error occurred. Please try again."
	MsgAccountCreated        = "Account created successfully."
	MsgLoadMessages          = "Unable to load messages."
	MsgSendMessage           = "Unable to send message."
	MsgLoadPrescriptions     = "Unable to load prescriptions."
	MsgLoadPatients          = "Unable to load patients."
	MsgLoadDoctor            = "Unable to load doctor info."
	MsgLoadProfile           = "Unable to load patient profile."
	MsgUpdateHistory         = "Unable to update patient history."
	MsgCreatePrescription    = "Unable to create prescription."
	MsgCollectPrescription   = "Unable to collect prescription."
)

// ServerError is a non-2xx answer from the portal. Message holds the body's
// error or message field and may be empty.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("portal returned status %d", e.Status)
	}
	return fmt.Sprintf("portal returned status %d: %s", e.Status, e.Message)
}

// ValidationError is raised before any request is issued.
type ValidationError struct {
	Message string
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UserError carries the single string shown for a failed operation along with
// its cause.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// UserMessage collapses err to the text shown to the user.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.Message
	}
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	var serverErr *ServerError
	if errors.As(err, &serverErr) && serverErr.Message != "" {
		return serverErr.Message
	}
	return fallback
}

// NewUserError wraps err with the message UserMessage derives from it.
func NewUserError(err error, fallback string) *UserError {
	return &UserError{Message: UserMessage(err, fallback), Err: err}
}
