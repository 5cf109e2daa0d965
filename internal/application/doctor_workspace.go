package application

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bnema/care-cli/internal/domain"
	"github.com/bnema/care-cli/internal/ports"
)

type DoctorWorkspace struct {
	mount Mount
	api   ports.PortalAPI
	clock ports.Clock

	Patients      *Panel[domain.Patient]
	Search        *domain.SearchFilter[domain.Patient]
	Prescriptions *Panel[domain.Prescription]

	mu       sync.Mutex
	selected string
	thread   *MessageThread
	profile  domain.Record
	closed   bool
}

func NewDoctorWorkspace(mount Mount, api ports.PortalAPI, clock ports.Clock) *DoctorWorkspace {
	return &DoctorWorkspace{
		mount:         mount,
		api:           api,
		clock:         clock,
		Patients:      NewPanel[domain.Patient](ports.SourceFunc[domain.Patient](api.ListPatients), domain.MsgLoadPatients),
		Search:        domain.NewSearchFilter(domain.PatientSearchFields...),
		Prescriptions: NewPanel[domain.Prescription](prescriptionSource(api), domain.MsgLoadPrescriptions),
	}
}

func (w *DoctorWorkspace) Role() domain.Role         { return domain.RoleDoctor }
func (w *DoctorWorkspace) Identity() domain.Identity { return w.mount.Identity }

func (w *DoctorWorkspace) Logout(ctx context.Context) domain.SessionState {
	w.Close()
	return w.mount.Logout(ctx)
}

func (w *DoctorWorkspace) Load(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		w.Patients.Fetch(ctx)
	}()
	go func() {
		defer wg.Done()
		w.Prescriptions.Fetch(ctx)
	}()
	wg.Wait()
}

// Reload refreshes the patients, the prescriptions and the open thread.
func (w *DoctorWorkspace) Reload(ctx context.Context, token uint64) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		w.Patients.Reload(ctx, token)
	}()
	go func() {
		defer wg.Done()
		w.Prescriptions.Reload(ctx, token)
	}()
	if thread := w.Thread(); thread != nil {
		thread.Reload(ctx, token)
	}
	wg.Wait()
}

// VisiblePatients applies the search to the loaded patients.
func (w *DoctorWorkspace) VisiblePatients() []domain.Patient {
	return w.Search.Apply(w.Patients.Snapshot().Items)
}

// SelectPatient opens the thread with id and scopes prescriptions to it.
func (w *DoctorWorkspace) SelectPatient(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.NewValidationError(domain.MsgSelectPatient)
	}

	thread := NewMessageThread(w.api, w.clock, id, w.mount.Identity, domain.RolePatient.Label())

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		thread.Close()
		return fmt.Errorf("select patient: %w", domain.ErrClosed)
	}
	previous := w.thread
	w.selected = id
	w.thread = thread
	w.profile = nil
	w.mu.Unlock()

	if previous != nil {
		previous.Close()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		thread.Load(ctx)
	}()
	go func() {
		defer wg.Done()
		w.Prescriptions.SetScope(ctx, Scope[domain.Prescription]{
			Field: func(p domain.Prescription) string { return p.PatientID },
			Value: id,
		})
	}()
	wg.Wait()
	return nil
}

func (w *DoctorWorkspace) ClearSelection(ctx context.Context) {
	w.mu.Lock()
	previous := w.thread
	w.selected = ""
	w.thread = nil
	w.profile = nil
	w.mu.Unlock()

	if previous != nil {
		previous.Close()
	}
	w.Prescriptions.SetScope(ctx, Scope[domain.Prescription]{})
}

func (w *DoctorWorkspace) Selected() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selected
}

// Thread returns the conversation with the selected patient, or nil.
func (w *DoctorWorkspace) Thread() *MessageThread {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.thread
}

func (w *DoctorWorkspace) Profile(ctx context.Context, id string) (domain.Record, error) {
	profile, err := w.api.PatientProfile(ctx, id)
	if err != nil {
		return nil, domain.NewUserError(err, domain.MsgLoadProfile)
	}
	w.storeProfile(id, profile)
	return profile, nil
}

func (w *DoctorWorkspace) UpdateHistory(ctx context.Context, id string, history string) (domain.Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.NewValidationError(domain.MsgSelectPatient)
	}
	updated, err := w.api.UpdatePatientHistory(ctx, id, history)
	if err != nil {
		return nil, domain.NewUserError(err, domain.MsgUpdateHistory)
	}
	w.storeProfile(id, updated)
	return updated, nil
}

// SelectedProfile is the last profile loaded for the selected patient.
func (w *DoctorWorkspace) SelectedProfile() domain.Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.profile
}

// CreatePrescription defaults the patient to the current selection and
// refreshes the prescriptions panel on success.
func (w *DoctorWorkspace) CreatePrescription(ctx context.Context, prescription domain.NewPrescription) (PanelSnapshot[domain.Prescription], error) {
	if strings.TrimSpace(prescription.PatientID) == "" {
		prescription.PatientID = w.Selected()
	}
	if prescription.DurationType == "" {
		prescription.DurationType = domain.DurationTemporary
	}
	if prescription.DatePrescribed == "" && w.clock != nil {
		prescription.DatePrescribed = w.clock.Now().Format("2006-01-02")
	}
	if err := prescription.Validate(); err != nil {
		return w.Prescriptions.Snapshot(), err
	}

	return w.Prescriptions.Mutate(ctx, func(ctx context.Context) error {
		_, err := w.api.CreatePrescription(ctx, prescription)
		return err
	}, domain.MsgCreatePrescription)
}

func (w *DoctorWorkspace) Close() {
	w.mu.Lock()
	w.closed = true
	thread := w.thread
	w.mu.Unlock()

	if thread != nil {
		thread.Close()
	}
	w.Patients.Close()
	w.Prescriptions.Close()
}

func (w *DoctorWorkspace) storeProfile(id string, profile domain.Record) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed && w.selected == id {
		w.profile = profile
	}
}
