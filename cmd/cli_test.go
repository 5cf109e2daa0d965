package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/bnema/care-cli/internal/adapters/portal/portaltest"
	"github.com/bnema/care-cli/internal/domain"
	"github.com/bnema/care-cli/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionPrintsBuildVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", stdout)
}

func TestProfileRoundTrip(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "profile", "add", "clinic", "https://clinic.example.com", "--role", "doctor")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "profile", "add", "pharmacy", "https://pharmacy.example.com", "--use")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "profile", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "clinic")
	assert.NotContains(t, stdout, "* clinic")
	assert.Contains(t, stdout, "doctor")
	assert.Contains(t, stdout, "* pharmacy")

	_, _, err = executeCLI(t, home, "profile", "use", "clinic")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "profile", "remove", "pharmacy")
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, home, "profile", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "* clinic")
	assert.NotContains(t, stdout, "pharmacy")

	_, err = os.Stat(filepath.Join(home, ".care", "profiles.toml"))
	require.NoError(t, err)
}

func TestProfileAddRejectsInvalidURL(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "profile", "add", "clinic", "ftp://clinic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http or https")
}

func TestProfileUseUnknownName(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "profile", "use", "nowhere")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestLoginPersistsSessionAcrossInvocations(t *testing.T) {
	home := t.TempDir()
	newPortal(t)

	stdout, _, err := executeCLI(t, home, "login", "--email", "alice@example.com", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Welcome, Alice Walker")
	assert.Contains(t, stdout, "(Patient)")

	stdout, _, err = executeCLI(t, home, "whoami", "--json")
	require.NoError(t, err)

	var who whoAmIOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &who))
	assert.Equal(t, whoAmIOutput{Role: "patient", Name: "Alice Walker", ID: "P1"}, who)
}

func TestWhoAmIWithoutSession(t *testing.T) {
	newPortal(t)

	_, _, err := executeCLI(t, t.TempDir(), "whoami")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	home := t.TempDir()
	newPortal(t)

	_, _, err := executeCLI(t, home, "login", "--role", "doctor", "--email", "doc@example.com", "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")

	_, _, err = executeCLI(t, home, "whoami")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestLoginValidatesBeforeRequest(t *testing.T) {
	server := newPortal(t)

	_, _, err := executeCLI(t, t.TempDir(), "login", "--email", "not-an-email", "--password", "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.MsgInvalidEmail)
	assert.Zero(t, server.Calls("POST", "/api/login/patient"))
}

func TestLoginReadsPasswordFromStdin(t *testing.T) {
	home := t.TempDir()
	newPortal(t)

	t.Setenv("HOME", home)
	t.Setenv("CARE_SESSION_BACKEND", "file")
	root := newRootCmd()
	stdout := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(bytes.NewBufferString("pw\n"))
	root.SetArgs([]string{"login", "--role", "pharmacist", "--email", "sam@example.com", "--password-stdin"})

	require.NoError(t, root.Execute())
	assert.Contains(t, stdout.String(), "(Pharma)")
}

func TestSignupThenLogin(t *testing.T) {
	home := t.TempDir()
	server := newPortal(t)

	stdout, _, err := executeCLI(t, home, "signup",
		"--name", "Bob Stone",
		"--email", "bob@example.com",
		"--password", "secret",
		"--doctor-id", "D1",
		"--dob", "1985-05-05",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Patient registered successfully")

	_, ok := server.Account("bob@example.com")
	require.True(t, ok)

	stdout, _, err = executeCLI(t, home, "login", "--email", "bob@example.com", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Welcome, Bob Stone")
}

func TestSignupPatientNeedsDoctor(t *testing.T) {
	server := newPortal(t)

	_, _, err := executeCLI(t, t.TempDir(), "signup",
		"--name", "Bob Stone",
		"--email", "bob@example.com",
		"--password", "secret",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.MsgPatientSignupFields)
	assert.Zero(t, server.Calls("POST", "/api/register/patient"))
}

func TestMessagesSendAndList(t *testing.T) {
	home := t.TempDir()
	server := newPortal(t)
	server.AddMessage("P1", domain.Message{Sender: "D1", Body: "How are you feeling?", Timestamp: "2026-01-02T09:00:00Z"})

	_, _, err := executeCLI(t, home, "login", "--email", "alice@example.com", "--password", "pw")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "messages", "send", "Much", "better", "today")
	require.NoError(t, err)
	assert.Contains(t, stdout, "How are you feeling?")
	assert.Contains(t, stdout, "Much better today")

	sent := server.Messages("P1")
	require.Len(t, sent, 2)
	assert.Equal(t, "P1", sent[1].Sender)

	stdout, _, err = executeCLI(t, home, "messages", "--json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"side": "right"`)
	assert.Contains(t, stdout, `"body": "Much better today"`)

	var lines []domain.MessageLine
	require.NoError(t, json.Unmarshal([]byte(stdout), &lines))
	require.Len(t, lines, 2)
	assert.Equal(t, domain.MessageLine{Side: domain.SideLeft, Label: "Doctor", Body: "How are you feeling?", Timestamp: "2026-01-02T09:00:00Z"}, lines[0])
	assert.Equal(t, domain.SideRight, lines[1].Side)
	assert.Equal(t, domain.SelfLabel, lines[1].Label)
	assert.Equal(t, "Much better today", lines[1].Body)
}

func TestDoctorReadsPatientThread(t *testing.T) {
	home := t.TempDir()
	server := newPortal(t)
	server.AddMessage("P1", domain.Message{Sender: "P1", Body: "My knee hurts", Timestamp: "2026-01-02T09:00:00Z"})

	_, _, err := executeCLI(t, home, "login", "--role", "doctor", "--email", "doc@example.com", "--password", "pw")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "messages", "--patient", "P1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "My knee hurts")
	assert.Contains(t, stdout, "Patient")

	_, _, err = executeCLI(t, home, "messages")
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.MsgSelectPatient)
}

func TestPrescriptionLifecycle(t *testing.T) {
	home := t.TempDir()
	server := newPortal(t)

	_, _, err := executeCLI(t, home, "login", "--role", "doctor", "--email", "doc@example.com", "--password", "pw")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "patients", "list", "--search", "alice")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Patients (1)")
	assert.Contains(t, stdout, "Alice Walker")

	stdout, _, err = executeCLI(t, home, "prescriptions", "create",
		"--patient", "P1",
		"--pharmacist", "PH1",
		"--medicine", "Amoxicillin",
		"--instructions", "Twice a day",
		"--duration", "lifetime",
		"--date", "2026-01-03",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Prescription created.")
	assert.Contains(t, stdout, "Amoxicillin")
	assert.NotContains(t, stdout, "code")

	stored := server.Prescriptions()
	require.Len(t, stored, 1)
	assert.Equal(t, domain.DurationLifetime, stored[0].DurationType)

	_, _, err = executeCLI(t, home, "logout")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "login", "--email", "alice@example.com", "--password", "pw")
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, home, "prescriptions", "list", "--json")
	require.NoError(t, err)
	var mine []domain.Prescription
	require.NoError(t, json.Unmarshal([]byte(stdout), &mine))
	require.Len(t, mine, 1)
	code := mine[0].CollectionCode
	require.Len(t, code, 6)

	_, _, err = executeCLI(t, home, "logout")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "login", "--role", "pharmacist", "--email", "sam@example.com", "--password", "pw")
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, home, "prescriptions", "list", "--search", "amox")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Outstanding prescriptions (1)")

	_, _, err = executeCLI(t, home, "prescriptions", "collect", mine[0].ID, "--code", "12ab")
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.MsgInvalidCollectionCode)

	stdout, _, err = executeCLI(t, home, "prescriptions", "collect", mine[0].ID, "--code", code)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Prescription collected.")
	assert.Empty(t, server.Prescriptions())
}

func TestCollectUnknownPrescription(t *testing.T) {
	home := t.TempDir()
	server := newPortal(t)

	_, _, err := executeCLI(t, home, "login", "--role", "pharmacist", "--email", "sam@example.com", "--password", "pw")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "prescriptions", "collect", "RX404", "--code", "123456")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPrescriptionNotFound)
	assert.Zero(t, server.Calls("DELETE", "/api/prescriptions/RX404"))
}

func TestPatientDoctorCard(t *testing.T) {
	home := t.TempDir()
	newPortal(t)

	_, _, err := executeCLI(t, home, "login", "--email", "alice@example.com", "--password", "pw")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "doctor")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Your doctor")
	assert.Contains(t, stdout, "Dr. Grey")
}

func TestDoctorUpdatesHistory(t *testing.T) {
	home := t.TempDir()
	server := newPortal(t)

	_, _, err := executeCLI(t, home, "login", "--role", "doctor", "--email", "doc@example.com", "--password", "pw")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "patients", "history", "P1", "Mild", "asthma")
	require.NoError(t, err)
	assert.Contains(t, stdout, "History updated.")
	assert.Contains(t, stdout, "Mild asthma")

	account, ok := server.Account("alice@example.com")
	require.True(t, ok)
	assert.Equal(t, "Mild asthma", account.PatientHistory)

	stdout, _, err = executeCLI(t, home, "patients", "show", "P1", "--json")
	require.NoError(t, err)
	assert.Contains(t, stdout, "\"PatientHistory\": \"Mild asthma\"")
}

func TestWrongWorkspace(t *testing.T) {
	home := t.TempDir()
	newPortal(t)

	_, _, err := executeCLI(t, home, "login", "--email", "alice@example.com", "--password", "pw")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "patients", "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWrongWorkspace)

	_, _, err = executeCLI(t, home, "prescriptions", "collect", "RX1", "--code", "123456")
	assert.ErrorIs(t, err, domain.ErrWrongWorkspace)
}

func TestLogoutForgetsSession(t *testing.T) {
	home := t.TempDir()
	server := newPortal(t)

	_, _, err := executeCLI(t, home, "login", "--email", "alice@example.com", "--password", "pw")
	require.NoError(t, err)
	require.Equal(t, 1, server.SessionCount())

	stdout, _, err := executeCLI(t, home, "logout")
	require.NoError(t, err)
	assert.Equal(t, "Logged out.\n", stdout)
	assert.Zero(t, server.SessionCount())

	_, _, err = executeCLI(t, home, "whoami")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestActiveProfileOverridesConfiguredURL(t *testing.T) {
	home := t.TempDir()
	server := newPortal(t)
	t.Setenv("CARE_BASE_URL", "http://127.0.0.1:1")

	_, _, err := executeCLI(t, home, "profile", "add", "local", server.URL, "--role", "doctor", "--use")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "login", "--email", "doc@example.com", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, stdout, "(Doctor)")
}

func TestBaseURLFlagOverridesProfile(t *testing.T) {
	home := t.TempDir()
	server := newPortal(t)

	_, _, err := executeCLI(t, home, "profile", "add", "dead", "http://127.0.0.1:1", "--use")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "--base-url", server.URL, "login", "--email", "alice@example.com", "--password", "pw")
	require.NoError(t, err)
}

// newPortal starts a portal with one patient, their doctor and a pharmacist,
// and points the CLI at it.
func newPortal(t *testing.T) *portaltest.Server {
	t.Helper()

	server := portaltest.NewServer(t)
	server.AddAccount(portaltest.Account{Role: domain.RoleDoctor, ID: "D1", Name: "Dr. Grey", Email: "doc@example.com", Password: "pw", Specialisation: "General practice"})
	server.AddAccount(portaltest.Account{Role: domain.RolePatient, ID: "P1", Name: "Alice Walker", Email: "alice@example.com", Password: "pw", DoctorID: "D1", DOB: "1990-01-01"})
	server.AddAccount(portaltest.Account{Role: domain.RolePharmacist, ID: "PH1", Name: "Sam", Email: "sam@example.com", Password: "pw"})

	t.Setenv("CARE_BASE_URL", server.URL)
	return server
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)
	t.Setenv("CARE_SESSION_BACKEND", "file")

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
