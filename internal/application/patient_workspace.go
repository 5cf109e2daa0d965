package application

import (
	"context"
	"sync"

	"github.com/bnema/care-cli/internal/domain"
	"github.com/bnema/care-cli/internal/ports"
)

type PatientWorkspace struct {
	mount Mount
	api   ports.PortalAPI

	Messages      *MessageThread
	Prescriptions *Panel[domain.Prescription]

	mu        sync.Mutex
	doctor    domain.Record
	doctorErr string
	closed    bool
}

func NewPatientWorkspace(mount Mount, api ports.PortalAPI, clock ports.Clock) *PatientWorkspace {
	return &PatientWorkspace{
		mount:         mount,
		api:           api,
		Messages:      NewMessageThread(api, clock, "", mount.Identity, domain.RoleDoctor.Label()),
		Prescriptions: NewPanel[domain.Prescription](prescriptionSource(api), domain.MsgLoadPrescriptions),
	}
}

func (w *PatientWorkspace) Role() domain.Role         { return domain.RolePatient }
func (w *PatientWorkspace) Identity() domain.Identity { return w.mount.Identity }
func (w *PatientWorkspace) Logout(ctx context.Context) domain.SessionState {
	w.Close()
	return w.mount.Logout(ctx)
}

// Load fetches the doctor card and both panels concurrently.
func (w *PatientWorkspace) Load(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		_, _ = w.LoadDoctor(ctx)
	}()
	go func() {
		defer wg.Done()
		w.Messages.Load(ctx)
	}()
	go func() {
		defer wg.Done()
		w.Prescriptions.Fetch(ctx)
	}()
	wg.Wait()
}

func (w *PatientWorkspace) Reload(ctx context.Context, token uint64) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		w.Messages.Reload(ctx, token)
	}()
	go func() {
		defer wg.Done()
		w.Prescriptions.Reload(ctx, token)
	}()
	wg.Wait()
}

func (w *PatientWorkspace) LoadDoctor(ctx context.Context) (domain.Record, error) {
	doctor, err := w.api.AssignedDoctor(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		userErr := domain.NewUserError(err, domain.MsgLoadDoctor)
		if !w.closed {
			w.doctorErr = userErr.Message
		}
		return w.doctor, userErr
	}
	if !w.closed {
		w.doctor = doctor
		w.doctorErr = ""
	}
	return doctor, nil
}

// Doctor returns the last loaded doctor card and the error of the last load.
func (w *PatientWorkspace) Doctor() (domain.Record, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.doctor, w.doctorErr
}

func (w *PatientWorkspace) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.Messages.Close()
	w.Prescriptions.Close()
}

func prescriptionSource(api ports.PrescriptionAPI) ports.Source[domain.Prescription] {
	return ports.SourceFunc[domain.Prescription](api.ListPrescriptions)
}
