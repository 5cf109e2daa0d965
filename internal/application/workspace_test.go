package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/care-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

func noLogout(context.Context) domain.SessionState {
	return domain.UnauthenticatedSession()
}

func pharmacistWorkspace(t *testing.T, portal *fakePortal) *PharmacistWorkspace {
	t.Helper()
	w := NewPharmacistWorkspace(Mount{
		Role:     domain.RolePharmacist,
		Identity: domain.Identity{DisplayName: "Ph", ID: "PH1"},
		Logout:   noLogout,
	}, portal)
	t.Cleanup(w.Close)
	w.Load(context.Background())
	return w
}

func TestPharmacistCollectRejectsMalformedCode(t *testing.T) {
	portal := newFakePortal()
	portal.prescriptions = []domain.Prescription{{ID: "RX1", CollectionCode: "123456"}}
	w := pharmacistWorkspace(t, portal)
	require.NoError(t, w.Select("RX1"))

	_, err := w.Collect(context.Background(), "12a456")

	assert.Equal(t, domain.MsgInvalidCollectionCode, domain.UserMessage(err, ""))
	assert.Zero(t, portal.count("CollectPrescription"))
}

func TestPharmacistCollectRequiresSelection(t *testing.T) {
	portal := newFakePortal()
	portal.prescriptions = []domain.Prescription{{ID: "RX1", CollectionCode: "123456"}}
	w := pharmacistWorkspace(t, portal)

	_, err := w.Collect(context.Background(), "123456")

	assert.Equal(t, domain.MsgSelectPrescription, domain.UserMessage(err, ""))
	assert.Zero(t, portal.count("CollectPrescription"))
}

func TestPharmacistCollectIssuesRequestAndRefreshes(t *testing.T) {
	portal := newFakePortal()
	portal.prescriptions = []domain.Prescription{
		{ID: "RX1", MedicineName: "Amoxicillin", CollectionCode: "123456"},
		{ID: "RX2", MedicineName: "Ibuprofen", CollectionCode: "654321"},
	}
	w := pharmacistWorkspace(t, portal)
	require.NoError(t, w.Select("RX1"))

	snap, err := w.Collect(context.Background(), "123456")

	require.NoError(t, err)
	assert.Equal(t, 1, portal.count("CollectPrescription"))
	assert.Equal(t, 2, portal.count("ListPrescriptions"))
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "RX2", snap.Items[0].ID)
	assert.Empty(t, w.Selected())
}

func TestPharmacistCollectWrongCodeKeepsSelection(t *testing.T) {
	portal := newFakePortal()
	portal.prescriptions = []domain.Prescription{{ID: "RX1", CollectionCode: "123456"}}
	w := pharmacistWorkspace(t, portal)
	require.NoError(t, w.Select("RX1"))

	snap, err := w.Collect(context.Background(), "000000")

	assert.Equal(t, "Invalid collection code", domain.UserMessage(err, ""))
	assert.Equal(t, "RX1", w.Selected())
	assert.Len(t, snap.Items, 1)
}

func TestPharmacistSelectUnknownPrescription(t *testing.T) {
	w := pharmacistWorkspace(t, newFakePortal())

	assert.ErrorIs(t, w.Select("RX9"), domain.ErrPrescriptionNotFound)
	assert.NoError(t, w.Select(""))
}

func TestPharmacistSearchIsAViewTransform(t *testing.T) {
	portal := newFakePortal()
	portal.prescriptions = []domain.Prescription{
		{ID: "RX1", MedicineName: "Amoxicillin"},
		{ID: "RX2", MedicineName: "Ibuprofen"},
	}
	w := pharmacistWorkspace(t, portal)

	w.Search.SetQuery("ibu")
	visible := w.VisiblePrescriptions()

	require.Len(t, visible, 1)
	assert.Equal(t, "RX2", visible[0].ID)
	assert.Len(t, w.Prescriptions.Snapshot().Items, 2)
}

func TestPatientWorkspaceLoadsEverything(t *testing.T) {
	portal := newFakePortal()
	portal.self = "P1"
	portal.doctor = domain.Record{"Name": "Dr. A", "doctorID": "D1"}
	portal.prescriptions = []domain.Prescription{{ID: "RX1", PatientID: "P1"}}
	portal.messages[""] = []domain.Message{
		{Sender: "D1", Body: "How are you?"},
		{Sender: "P1", Body: "Better"},
	}

	w := NewPatientWorkspace(Mount{Role: domain.RolePatient, Identity: domain.Identity{DisplayName: "Pat", ID: "P1"}, Logout: noLogout}, portal, fixedClock{now: testNow})
	t.Cleanup(w.Close)
	w.Load(context.Background())

	doctor, errText := w.Doctor()
	assert.Equal(t, "Dr. A", doctor.String("Name"))
	assert.Empty(t, errText)
	assert.Len(t, w.Prescriptions.Snapshot().Items, 1)

	lines := w.Messages.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, domain.SideLeft, lines[0].Side)
	assert.Equal(t, "Doctor", lines[0].Label)
	assert.Equal(t, domain.SideRight, lines[1].Side)
	assert.Equal(t, "You", lines[1].Label)
}

func TestPatientWorkspaceDoctorFailureUsesFallback(t *testing.T) {
	portal := newFakePortal()
	portal.fail("AssignedDoctor", errors.New("connection reset"))

	w := NewPatientWorkspace(Mount{Role: domain.RolePatient, Identity: domain.Identity{ID: "P1"}, Logout: noLogout}, portal, fixedClock{now: testNow})
	t.Cleanup(w.Close)

	_, err := w.LoadDoctor(context.Background())

	assert.Equal(t, domain.MsgLoadDoctor, domain.UserMessage(err, ""))
	_, errText := w.Doctor()
	assert.Equal(t, domain.MsgLoadDoctor, errText)
}

func TestMessageThreadSendStampsClockAndRefreshes(t *testing.T) {
	portal := newFakePortal()
	portal.self = "P1"
	thread := NewMessageThread(portal, fixedClock{now: testNow}, "", domain.Identity{ID: "P1"}, "Doctor")
	t.Cleanup(thread.Close)
	thread.Load(context.Background())

	snap, err := thread.Send(context.Background(), "  hello  ")

	require.NoError(t, err)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, domain.Message{Sender: "P1", Body: "hello", Timestamp: "2026-05-01 09:30:00"}, snap.Items[0])
	assert.Equal(t, 2, portal.count("ListMessages"))

	_, err = thread.Send(context.Background(), "   ")
	assert.Equal(t, domain.MsgEmptyMessage, domain.UserMessage(err, ""))
	assert.Equal(t, 1, portal.count("SendMessage"))
}

func TestMessageThreadSendFailureFallback(t *testing.T) {
	portal := newFakePortal()
	portal.fail("SendMessage", errors.New("timeout"))
	thread := NewMessageThread(portal, fixedClock{now: testNow}, "P1", domain.Identity{ID: "D1"}, "Patient")
	t.Cleanup(thread.Close)

	snap, err := thread.Send(context.Background(), "hi")

	assert.Equal(t, domain.MsgSendMessage, domain.UserMessage(err, ""))
	assert.Equal(t, domain.MsgSendMessage, snap.Err)
	assert.Zero(t, portal.count("ListMessages"))
}

func doctorWorkspace(t *testing.T, portal *fakePortal) *DoctorWorkspace {
	t.Helper()
	w := NewDoctorWorkspace(Mount{Role: domain.RoleDoctor, Identity: domain.Identity{DisplayName: "Dr. A", ID: "D1"}, Logout: noLogout}, portal, fixedClock{now: testNow})
	t.Cleanup(w.Close)
	w.Load(context.Background())
	return w
}

func TestDoctorSelectPatientScopesPrescriptionsAndThread(t *testing.T) {
	portal := newFakePortal()
	portal.self = "D1"
	portal.patients = []domain.Patient{{ID: "P1", Name: "Ann"}, {ID: "P2", Name: "Bob"}}
	portal.prescriptions = []domain.Prescription{
		{ID: "RX1", PatientID: "P1"},
		{ID: "RX2", PatientID: "P2"},
	}
	portal.messages["P2"] = []domain.Message{{Sender: "P2", Body: "hello doctor"}}
	w := doctorWorkspace(t, portal)
	assert.Len(t, w.Prescriptions.Snapshot().Items, 2)

	require.NoError(t, w.SelectPatient(context.Background(), "P2"))

	assert.Equal(t, "P2", w.Selected())
	items := w.Prescriptions.Snapshot().Items
	require.Len(t, items, 1)
	assert.Equal(t, "RX2", items[0].ID)

	thread := w.Thread()
	require.NotNil(t, thread)
	assert.Equal(t, "P2", thread.Counterpart())
	lines := thread.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "Patient", lines[0].Label)

	w.ClearSelection(context.Background())
	assert.Nil(t, w.Thread())
	assert.Len(t, w.Prescriptions.Snapshot().Items, 2)
}

func TestDoctorCreatePrescriptionRefetchesInsteadOfSplicing(t *testing.T) {
	portal := newFakePortal()
	portal.patients = []domain.Patient{{ID: "P1", Name: "Ann"}}
	w := doctorWorkspace(t, portal)
	require.NoError(t, w.SelectPatient(context.Background(), "P1"))
	listsBefore := portal.count("ListPrescriptions")

	snap, err := w.CreatePrescription(context.Background(), domain.NewPrescription{
		PharmacistID: "PH1",
		MedicineName: "Ibuprofen",
		Instructions: "twice daily",
	})

	require.NoError(t, err)
	assert.Equal(t, listsBefore+1, portal.count("ListPrescriptions"))
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "P1", snap.Items[0].PatientID)
	assert.Equal(t, domain.DurationTemporary, snap.Items[0].DurationType)
	assert.Equal(t, "2026-05-01", snap.Items[0].DatePrescribed)
}

func TestDoctorReloadAfterCreateRefetchesEveryPanel(t *testing.T) {
	portal := newFakePortal()
	portal.patients = []domain.Patient{{ID: "P1", Name: "Ann"}}
	w := doctorWorkspace(t, portal)
	require.NoError(t, w.SelectPatient(context.Background(), "P1"))
	_, err := w.CreatePrescription(context.Background(), domain.NewPrescription{PharmacistID: "PH1", MedicineName: "Ibuprofen"})
	require.NoError(t, err)

	patients := portal.count("ListPatients")
	prescriptions := portal.count("ListPrescriptions")
	messages := portal.count("ListMessages")

	w.Reload(context.Background(), 1)

	assert.Equal(t, patients+1, portal.count("ListPatients"))
	assert.Equal(t, prescriptions+1, portal.count("ListPrescriptions"))
	assert.Equal(t, messages+1, portal.count("ListMessages"))

	w.Reload(context.Background(), 1)
	assert.Equal(t, prescriptions+1, portal.count("ListPrescriptions"))
}

func TestDoctorCreatePrescriptionValidatesLocally(t *testing.T) {
	portal := newFakePortal()
	w := doctorWorkspace(t, portal)

	_, err := w.CreatePrescription(context.Background(), domain.NewPrescription{MedicineName: "Ibuprofen"})

	assert.Equal(t, domain.MsgFillRequiredFields, domain.UserMessage(err, ""))
	assert.Zero(t, portal.count("CreatePrescription"))
}

func TestDoctorProfileAndHistory(t *testing.T) {
	portal := newFakePortal()
	portal.profiles["P1"] = domain.Record{"patientID": "P1", "Name": "Ann", "PatientHistory": "asthma"}
	w := doctorWorkspace(t, portal)
	require.NoError(t, w.SelectPatient(context.Background(), "P1"))

	profile, err := w.Profile(context.Background(), "P1")
	require.NoError(t, err)
	assert.Equal(t, "asthma", profile.String("PatientHistory"))
	assert.Equal(t, profile, w.SelectedProfile())

	updated, err := w.UpdateHistory(context.Background(), "P1", "asthma; penicillin allergy")
	require.NoError(t, err)
	assert.Equal(t, "asthma; penicillin allergy", updated.String("PatientHistory"))

	_, err = w.Profile(context.Background(), "P9")
	assert.Equal(t, "Patient not found", domain.UserMessage(err, ""))
}

func TestDoctorPatientSearch(t *testing.T) {
	portal := newFakePortal()
	portal.patients = []domain.Patient{{ID: "P1", Name: "Ann Lee"}, {ID: "P2", Name: "Bob Stone"}}
	w := doctorWorkspace(t, portal)

	w.Search.SetQuery("bob stnoe")
	visible := w.VisiblePatients()
	require.Len(t, visible, 1)
	assert.Equal(t, "P2", visible[0].ID)

	require.NoError(t, w.Search.SetField("patientID"))
	visible = w.VisiblePatients()
	assert.Empty(t, visible)
	assert.Len(t, w.Patients.Snapshot().Items, 2)
}

func TestWorkspaceLogoutClosesPanels(t *testing.T) {
	portal := newFakePortal()
	portal.prescriptions = []domain.Prescription{{ID: "RX1"}}
	w := pharmacistWorkspace(t, portal)

	state := w.Logout(context.Background())

	assert.False(t, state.Authenticated())
	w.Load(context.Background())
	assert.Equal(t, 1, portal.count("ListPrescriptions"))
}
