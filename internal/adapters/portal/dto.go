package portal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bnema/care-cli/internal/domain"
)

// flexString accepts ids sent either as JSON strings or numbers.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*s = flexString(raw)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("decode id %s: %w", data, err)
	}
	*s = flexString(number.String())
	return nil
}

func (s flexString) String() string {
	return strings.TrimSpace(string(s))
}

type userPayload struct {
	Name      string     `json:"Name"`
	PatientID flexString `json:"patientID"`
	DoctorID  flexString `json:"doctorID"`
	PharmID   flexString `json:"pharmID"`
}

func (u userPayload) toDomain() domain.UserRecord {
	return domain.UserRecord{
		Name:         strings.TrimSpace(u.Name),
		PatientID:    u.PatientID.String(),
		DoctorID:     u.DoctorID.String(),
		PharmacistID: u.PharmID.String(),
	}
}

type meResponse struct {
	Role string      `json:"role"`
	User userPayload `json:"user"`
}

type loginRequest struct {
	Email    string `json:"Email"`
	Password string `json:"Password"`
}

type loginResponse struct {
	User userPayload `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type messagePayload struct {
	Sender    flexString `json:"sender"`
	Message   string     `json:"message"`
	Timestamp string     `json:"timestamp"`
}

type messagesResponse struct {
	Messages []messagePayload `json:"messages"`
}

type sendMessageRequest struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type prescriptionPayload struct {
	PrescriptionID flexString `json:"prescriptionID"`
	PatientID      flexString `json:"patientID"`
	PharmID        flexString `json:"pharmID"`
	MedicineName   string     `json:"MedicineName"`
	Instructions   string     `json:"Instructions"`
	DatePrescribed string     `json:"DatePrescribed"`
	DurationType   string     `json:"DurationType"`
	CollectionCode flexString `json:"CollectionCode"`
}

func (p prescriptionPayload) toDomain() domain.Prescription {
	return domain.Prescription{
		ID:             p.PrescriptionID.String(),
		PatientID:      p.PatientID.String(),
		PharmacistID:   p.PharmID.String(),
		MedicineName:   p.MedicineName,
		Instructions:   p.Instructions,
		DatePrescribed: p.DatePrescribed,
		DurationType:   domain.DurationType(p.DurationType),
		CollectionCode: p.CollectionCode.String(),
	}
}

type prescriptionsResponse struct {
	Prescriptions []prescriptionPayload `json:"prescriptions"`
}

type createPrescriptionRequest struct {
	PatientID      string `json:"patientID"`
	PharmID        string `json:"pharmID"`
	MedicineName   string `json:"MedicineName"`
	Instructions   string `json:"Instructions"`
	DatePrescribed string `json:"DatePrescribed"`
	DurationType   string `json:"DurationType"`
}

type collectRequest struct {
	CollectionCode string `json:"CollectionCode"`
}

type patientPayload struct {
	PatientID flexString `json:"patientID"`
	Name      string     `json:"Name"`
}

type patientsResponse struct {
	Patients []patientPayload `json:"patients"`
}

type historyRequest struct {
	PatientHistory string `json:"PatientHistory"`
}

type doctorResponse struct {
	Doctor domain.Record `json:"doctor"`
}
