package portal

import (
	"context"
	"net/http"
	"strings"

	"github.com/bnema/care-cli/internal/domain"
)

const ownThread = "me"

func (c *Client) ListMessages(ctx context.Context, counterpart string) ([]domain.Message, error) {
	var payload messagesResponse
	if err := c.do(ctx, "list messages", http.MethodGet, messagesPath(counterpart), nil, &payload); err != nil {
		return nil, err
	}
	messages := make([]domain.Message, 0, len(payload.Messages))
	for _, m := range payload.Messages {
		messages = append(messages, domain.Message{Sender: m.Sender.String(), Body: m.Message, Timestamp: m.Timestamp})
	}
	return messages, nil
}

func (c *Client) SendMessage(ctx context.Context, counterpart string, msg domain.OutgoingMessage) error {
	req := sendMessageRequest{Message: msg.Body, Timestamp: msg.Timestamp}
	return c.do(ctx, "send message", http.MethodPost, messagesPath(counterpart), req, nil)
}

func messagesPath(counterpart string) string {
	if strings.TrimSpace(counterpart) == "" {
		counterpart = ownThread
	}
	return "/api/messages/" + segment(counterpart)
}

func (c *Client) ListPrescriptions(ctx context.Context) ([]domain.Prescription, error) {
	var payload prescriptionsResponse
	if err := c.do(ctx, "list prescriptions", http.MethodGet, "/api/prescriptions", nil, &payload); err != nil {
		return nil, err
	}
	prescriptions := make([]domain.Prescription, 0, len(payload.Prescriptions))
	for _, p := range payload.Prescriptions {
		prescriptions = append(prescriptions, p.toDomain())
	}
	return prescriptions, nil
}

func (c *Client) CreatePrescription(ctx context.Context, prescription domain.NewPrescription) (domain.Record, error) {
	req := createPrescriptionRequest{
		PatientID:      strings.TrimSpace(prescription.PatientID),
		PharmID:        strings.TrimSpace(prescription.PharmacistID),
		MedicineName:   strings.TrimSpace(prescription.MedicineName),
		Instructions:   strings.TrimSpace(prescription.Instructions),
		DatePrescribed: prescription.DatePrescribed,
		DurationType:   string(prescription.DurationType),
	}
	var created domain.Record
	if err := c.do(ctx, "create prescription", http.MethodPost, "/api/prescriptions", req, &created); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Client) CollectPrescription(ctx context.Context, id string, code string) error {
	return c.do(ctx, "collect prescription", http.MethodDelete, "/api/prescriptions/"+segment(id), collectRequest{CollectionCode: code}, nil)
}

func (c *Client) ListPatients(ctx context.Context) ([]domain.Patient, error) {
	var payload patientsResponse
	if err := c.do(ctx, "list patients", http.MethodGet, "/api/doctor/patients", nil, &payload); err != nil {
		return nil, err
	}
	patients := make([]domain.Patient, 0, len(payload.Patients))
	for _, p := range payload.Patients {
		patients = append(patients, domain.Patient{ID: p.PatientID.String(), Name: p.Name})
	}
	return patients, nil
}

func (c *Client) PatientProfile(ctx context.Context, id string) (domain.Record, error) {
	var profile domain.Record
	if err := c.do(ctx, "get patient profile", http.MethodGet, "/api/profile/patient/"+segment(id), nil, &profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (c *Client) UpdatePatientHistory(ctx context.Context, id string, history string) (domain.Record, error) {
	var profile domain.Record
	if err := c.do(ctx, "update patient history", http.MethodPut, "/api/profile/patient/"+segment(id), historyRequest{PatientHistory: history}, &profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (c *Client) AssignedDoctor(ctx context.Context) (domain.Record, error) {
	var payload doctorResponse
	if err := c.do(ctx, "get assigned doctor", http.MethodGet, "/api/patient/doctor", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Doctor, nil
}
