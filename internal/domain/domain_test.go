package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoleAcceptsTabLabel(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Role
	}{
		{name: "patient", raw: "patient", want: RolePatient},
		{name: "doctor mixed case", raw: " Doctor ", want: RoleDoctor},
		{name: "pharmacist", raw: "pharmacist", want: RolePharmacist},
		{name: "pharma tab label", raw: "Pharma", want: RolePharmacist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRole(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseRole("nurse")
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestRolePathSegmentSpellsPharmacist(t *testing.T) {
	assert.Equal(t, "pharmacist", RolePharmacist.PathSegment())
	assert.Equal(t, "Pharma", RolePharmacist.Label())
	assert.Equal(t, "doctor", RoleDoctor.PathSegment())
}

func TestResolveID(t *testing.T) {
	tests := []struct {
		name string
		user UserRecord
		role Role
		want string
	}{
		{name: "doctor uses doctor id", user: UserRecord{DoctorID: "D1"}, role: RoleDoctor, want: "D1"},
		{name: "pharmacist uses pharm id", user: UserRecord{PharmacistID: "PH1"}, role: RolePharmacist, want: "PH1"},
		{name: "own id wins over earlier fields", user: UserRecord{PatientID: "P1", DoctorID: "D1"}, role: RoleDoctor, want: "D1"},
		{name: "falls back in patient doctor pharmacist order", user: UserRecord{DoctorID: "D1", PharmacistID: "PH1"}, role: RolePatient, want: "D1"},
		{name: "patient with every id keeps patient id", user: UserRecord{PatientID: "P1", DoctorID: "D1", PharmacistID: "PH1"}, role: RolePatient, want: "P1"},
		{name: "doctor with every id keeps doctor id", user: UserRecord{PatientID: "P1", DoctorID: "D1", PharmacistID: "PH1"}, role: RoleDoctor, want: "D1"},
		{name: "pharmacist with every id keeps pharm id", user: UserRecord{PatientID: "P1", DoctorID: "D1", PharmacistID: "PH1"}, role: RolePharmacist, want: "PH1"},
		{name: "blank own id falls back to patient id first", user: UserRecord{PatientID: "P1", DoctorID: "D1", PharmacistID: "  "}, role: RolePharmacist, want: "P1"},
		{name: "unknown role uses patient doctor pharmacist order", user: UserRecord{PatientID: "P1", DoctorID: "D1"}, role: Role("nurse"), want: "P1"},
		{name: "no ids", user: UserRecord{Name: "x"}, role: RolePatient, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveID(tt.user, tt.role))
		})
	}
}

func TestNewIdentityDefaultsDisplayName(t *testing.T) {
	assert.Equal(t, Identity{DisplayName: "User", ID: "P7"}, NewIdentity(UserRecord{PatientID: "P7"}, RolePatient))
	assert.Equal(t, Identity{DisplayName: "Dr. A", ID: "D1"}, NewIdentity(UserRecord{Name: "Dr. A", DoctorID: "D1"}, RoleDoctor))
}

func TestAlignMessages(t *testing.T) {
	messages := []Message{
		{Sender: "P1", Body: "hello", Timestamp: "2026-01-01 10:00:00"},
		{Sender: "D1", Body: "hi", Timestamp: "2026-01-01 10:01:00"},
		{Sender: "", Body: "system"},
	}

	lines := AlignMessages(messages, "P1", "Doctor")
	require.Len(t, lines, 3)
	assert.Equal(t, MessageLine{Side: SideRight, Label: "You", Body: "hello", Timestamp: "2026-01-01 10:00:00"}, lines[0])
	assert.Equal(t, SideLeft, lines[1].Side)
	assert.Equal(t, "Doctor", lines[1].Label)
	assert.Equal(t, SideLeft, lines[2].Side)

	anonymous := AlignMessages(messages, "", "Patient")
	for _, line := range anonymous {
		assert.Equal(t, SideLeft, line.Side)
		assert.Equal(t, "Patient", line.Label)
	}
}

func TestNewOutgoingMessageTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "2026-03-04 05:06:07", NewOutgoingMessage("hi", now).Timestamp)
}

func TestValidateCollectionCode(t *testing.T) {
	require.NoError(t, ValidateCollectionCode("123456"))

	for _, code := range []string{"12a456", "12345", "1234567", "", "１２３４５６"} {
		err := ValidateCollectionCode(code)
		require.Error(t, err, code)
		assert.Equal(t, MsgInvalidCollectionCode, UserMessage(err, "fallback"))
	}
}

func TestCredentialsValidate(t *testing.T) {
	assert.Equal(t, MsgFillAllFields, UserMessage(Credentials{Email: "a@b.co"}.Validate(), ""))
	assert.Equal(t, MsgInvalidEmail, UserMessage(Credentials{Email: "a@b", Password: "x"}.Validate(), ""))
	assert.NoError(t, Credentials{Email: "a@b.co", Password: "x"}.Validate())
}

func TestRegistrationValidate(t *testing.T) {
	base := Registration{Name: "Ann", Email: "ann@example.com", Password: "pw"}

	assert.NoError(t, base.Validate(RoleDoctor))
	assert.Equal(t, MsgPatientSignupFields, UserMessage(base.Validate(RolePatient), ""))

	patient := base
	patient.DoctorID = "D1"
	patient.DateOfBirth = "1990-01-01"
	assert.NoError(t, patient.Validate(RolePatient))

	missing := base
	missing.Name = " "
	assert.Equal(t, MsgFillRequiredFields, UserMessage(missing.Validate(RolePharmacist), ""))

	badEmail := base
	badEmail.Email = "ann at example.com"
	assert.Equal(t, MsgInvalidEmail, UserMessage(badEmail.Validate(RolePharmacist), ""))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "server message verbatim", err: fmt.Errorf("wrap: %w", &ServerError{Status: 401, Message: "Invalid Credentials"}), want: "Invalid Credentials"},
		{name: "server without message", err: &ServerError{Status: 500}, want: "fallback"},
		{name: "validation", err: NewValidationError(MsgSelectPrescription), want: MsgSelectPrescription},
		{name: "transport", err: errors.New("dial tcp: refused"), want: "fallback"},
		{name: "user error", err: &UserError{Message: "shown", Err: errors.New("cause")}, want: "shown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err, "fallback"))
		})
	}
}

func TestNewPrescriptionValidate(t *testing.T) {
	valid := NewPrescription{PatientID: "P1", PharmacistID: "PH1", MedicineName: "Ibuprofen", DurationType: DurationTemporary}
	require.NoError(t, valid.Validate())

	missing := valid
	missing.MedicineName = ""
	assert.Equal(t, MsgFillRequiredFields, UserMessage(missing.Validate(), ""))

	badDuration := valid
	badDuration.DurationType = "Weekly"
	assert.Error(t, badDuration.Validate())
}

func TestRecordString(t *testing.T) {
	r := Record{"Name": "Ann", "age": float64(42), "PatientHistory": nil}

	assert.Equal(t, "Ann", r.String("Name"))
	assert.Equal(t, "42", r.String("age"))
	assert.Equal(t, "", r.String("PatientHistory"))
	assert.Equal(t, []string{"Name", "PatientHistory", "age"}, r.Keys())
}

func TestProfileValidate(t *testing.T) {
	require.NoError(t, Profile{Name: "local", BaseURL: "http://localhost:5000", Role: RoleDoctor}.Validate())
	assert.Error(t, Profile{Name: "", BaseURL: "http://localhost:5000"}.Validate())
	assert.Error(t, Profile{Name: "x", BaseURL: "ftp://host"}.Validate())
	assert.ErrorIs(t, Profile{Name: "x", BaseURL: "https://host", Role: "nurse"}.Validate(), ErrUnknownRole)
}
