package application

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/care-cli/internal/domain"
	"github.com/bnema/care-cli/internal/ports"
)

var _ ports.PortalAPI = (*fakePortal)(nil)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

// fakePortal keeps server state in memory and counts calls per operation.
type fakePortal struct {
	mu            sync.Mutex
	calls         map[string]int
	prescriptions []domain.Prescription
	patients      []domain.Patient
	messages      map[string][]domain.Message
	doctor        domain.Record
	profiles      map[string]domain.Record
	self          string
	failures      map[string]error
	collected     []string
}

func newFakePortal() *fakePortal {
	return &fakePortal{
		calls:    map[string]int{},
		messages: map[string][]domain.Message{},
		profiles: map[string]domain.Record{},
		failures: map[string]error{},
	}
}

func (f *fakePortal) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	if err, ok := f.failures[op]; ok {
		return err
	}
	return nil
}

func (f *fakePortal) fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = err
}

func (f *fakePortal) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakePortal) WhoAmI(context.Context) (domain.WhoAmI, error) {
	return domain.WhoAmI{}, f.record("WhoAmI")
}

func (f *fakePortal) Login(context.Context, domain.Role, domain.Credentials) (domain.UserRecord, error) {
	return domain.UserRecord{}, f.record("Login")
}

func (f *fakePortal) Register(context.Context, domain.Role, domain.Registration) (string, error) {
	return "", f.record("Register")
}

func (f *fakePortal) Logout(context.Context) error {
	return f.record("Logout")
}

func (f *fakePortal) ListMessages(_ context.Context, counterpart string) ([]domain.Message, error) {
	if err := f.record("ListMessages"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Message(nil), f.messages[counterpart]...), nil
}

func (f *fakePortal) SendMessage(_ context.Context, counterpart string, msg domain.OutgoingMessage) error {
	if err := f.record("SendMessage"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[counterpart] = append(f.messages[counterpart], domain.Message{Sender: f.self, Body: msg.Body, Timestamp: msg.Timestamp})
	return nil
}

func (f *fakePortal) ListPrescriptions(context.Context) ([]domain.Prescription, error) {
	if err := f.record("ListPrescriptions"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Prescription(nil), f.prescriptions...), nil
}

func (f *fakePortal) CreatePrescription(_ context.Context, p domain.NewPrescription) (domain.Record, error) {
	if err := f.record("CreatePrescription"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := "RX" + string(rune('A'+len(f.prescriptions)))
	f.prescriptions = append(f.prescriptions, domain.Prescription{
		ID:             id,
		PatientID:      p.PatientID,
		PharmacistID:   p.PharmacistID,
		MedicineName:   p.MedicineName,
		Instructions:   p.Instructions,
		DatePrescribed: p.DatePrescribed,
		DurationType:   p.DurationType,
	})
	return domain.Record{"prescriptionID": id}, nil
}

func (f *fakePortal) CollectPrescription(_ context.Context, id string, code string) error {
	if err := f.record("CollectPrescription"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.prescriptions {
		if p.ID == id && p.CollectionCode == code {
			f.prescriptions = append(f.prescriptions[:i:i], f.prescriptions[i+1:]...)
			f.collected = append(f.collected, id)
			return nil
		}
	}
	return &domain.ServerError{Status: 400, Message: "Invalid collection code"}
}

func (f *fakePortal) ListPatients(context.Context) ([]domain.Patient, error) {
	if err := f.record("ListPatients"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Patient(nil), f.patients...), nil
}

func (f *fakePortal) PatientProfile(_ context.Context, id string) (domain.Record, error) {
	if err := f.record("PatientProfile"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	profile, ok := f.profiles[id]
	if !ok {
		return nil, &domain.ServerError{Status: 404, Message: "Patient not found"}
	}
	return profile, nil
}

func (f *fakePortal) UpdatePatientHistory(_ context.Context, id string, history string) (domain.Record, error) {
	if err := f.record("UpdatePatientHistory"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	profile := domain.Record{"patientID": id, "PatientHistory": history}
	f.profiles[id] = profile
	return profile, nil
}

func (f *fakePortal) AssignedDoctor(context.Context) (domain.Record, error) {
	if err := f.record("AssignedDoctor"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.doctor, nil
}
