// Package portaltest runs an in-memory portal backend for tests.
package portaltest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bnema/care-cli/internal/domain"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const SessionCookie = "session"

type Account struct {
	Role           domain.Role
	ID             string
	Name           string
	Email          string
	Password       string
	DoctorID       string
	DOB            string
	PatientHistory string
	Specialisation string
}

type prescriptionRecord struct {
	domain.Prescription
	DoctorID string
}

type failure struct {
	status int
	body   string
}

type Server struct {
	URL string

	srv  *httptest.Server
	echo *echo.Echo

	mu            sync.Mutex
	accounts      []Account
	sessions      map[string]string
	prescriptions []prescriptionRecord
	messages      map[string][]domain.Message
	calls         map[string]int
	failures      map[string][]failure
	headers       map[string]http.Header
	nextID        int
}

func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		sessions: map[string]string{},
		messages: map[string][]domain.Message{},
		calls:    map[string]int{},
		failures: map[string][]failure{},
		headers:  map[string]http.Header{},
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(s.record)

	api := e.Group("/api")
	api.GET("/me", s.handleMe)
	api.POST("/logout", s.handleLogout)
	api.POST("/login/:role", s.handleLogin)
	api.POST("/register/:role", s.handleRegister)
	api.GET("/doctor/patients", s.handleDoctorPatients)
	api.GET("/profile/patient/:id", s.handleGetProfile)
	api.PUT("/profile/patient/:id", s.handleUpdateProfile)
	api.GET("/prescriptions", s.handleListPrescriptions)
	api.POST("/prescriptions", s.handleCreatePrescription)
	api.DELETE("/prescriptions/:id", s.handleCollectPrescription)
	api.GET("/messages/:id", s.handleListMessages)
	api.POST("/messages/:id", s.handleSendMessage)
	api.GET("/patient/doctor", s.handleAssignedDoctor)

	s.echo = e
	s.srv = httptest.NewServer(e)
	s.URL = s.srv.URL
	t.Cleanup(s.srv.Close)
	return s
}

// Client returns an HTTP client for the server.
func (s *Server) Client() *http.Client {
	return s.srv.Client()
}

// AddAccount registers an account directly. An empty ID is generated from the role.
func (s *Server) AddAccount(a Account) Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = s.newIDLocked(idPrefix(a.Role))
	}
	s.accounts = append(s.accounts, a)
	return a
}

// AddPrescription stores an outstanding prescription written by doctorID.
// Empty ID and collection code are generated.
func (s *Server) AddPrescription(p domain.Prescription, doctorID string) domain.Prescription {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = s.newIDLocked("RX")
	}
	if p.CollectionCode == "" {
		p.CollectionCode = collectionCode(s.nextID)
	}
	if p.DurationType == "" {
		p.DurationType = domain.DurationTemporary
	}
	s.prescriptions = append(s.prescriptions, prescriptionRecord{Prescription: p, DoctorID: doctorID})
	return p
}

func (s *Server) AddMessage(patientID string, m domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[patientID] = append(s.messages[patientID], m)
}

func (s *Server) Messages(patientID string) []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Message(nil), s.messages[patientID]...)
}

func (s *Server) Prescriptions() []domain.Prescription {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Prescription, 0, len(s.prescriptions))
	for _, p := range s.prescriptions {
		out = append(out, p.Prescription)
	}
	return out
}

func (s *Server) Account(email string) (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, true
		}
	}
	return Account{}, false
}

// Fail makes the next request to method and path answer status with body.
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.failures[key] = append(s.failures[key], failure{status: status, body: body})
}

// Calls counts requests received for method and path.
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

// LastHeaders returns the headers of the last request to method and path.
func (s *Server) LastHeaders(method, path string) http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers[method+" "+path].Clone()
}

func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		key := req.Method + " " + req.URL.Path

		s.mu.Lock()
		s.calls[key]++
		s.headers[key] = req.Header.Clone()
		var injected *failure
		if queue := s.failures[key]; len(queue) > 0 {
			injected = &queue[0]
			s.failures[key] = queue[1:]
		}
		s.mu.Unlock()

		if injected != nil {
			return c.Blob(injected.status, echo.MIMEApplicationJSON, []byte(injected.body))
		}
		return next(c)
	}
}

func (s *Server) current(c echo.Context) (Account, bool) {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil {
		return Account{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.sessions[cookie.Value]
	if !ok {
		return Account{}, false
	}
	return s.accountByIDLocked(id)
}

func (s *Server) require(c echo.Context, role domain.Role) (Account, error) {
	account, ok := s.current(c)
	if !ok {
		return Account{}, c.JSON(http.StatusUnauthorized, errorBody("Not logged in"))
	}
	if role != "" && account.Role != role {
		return Account{}, c.JSON(http.StatusForbidden, errorBody("Forbidden"))
	}
	return account, nil
}

func (s *Server) handleMe(c echo.Context) error {
	account, ok := s.current(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorBody("Not logged in"))
	}
	return c.JSON(http.StatusOK, map[string]any{"role": string(account.Role), "user": userBody(account)})
}

func (s *Server) handleLogout(c echo.Context) error {
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, cookie.Value)
		s.mu.Unlock()
	}
	c.SetCookie(&http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	return c.JSON(http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleLogin(c echo.Context) error {
	role, err := domain.ParseRole(c.Param("role"))
	if err != nil || c.Param("role") != role.PathSegment() {
		return c.JSON(http.StatusNotFound, errorBody("Unknown role"))
	}

	var body struct {
		Email    string `json:"Email"`
		Password string `json:"Password"`
	}
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil || body.Email == "" || body.Password == "" {
		return c.JSON(http.StatusBadRequest, errorBody("Missing credentials"))
	}

	s.mu.Lock()
	var found *Account
	for i := range s.accounts {
		a := &s.accounts[i]
		if a.Role == role && strings.EqualFold(a.Email, body.Email) && a.Password == body.Password {
			found = a
			break
		}
	}
	if found == nil {
		s.mu.Unlock()
		return c.JSON(http.StatusUnauthorized, errorBody("Invalid credentials"))
	}
	token := uuid.NewString()
	s.sessions[token] = found.ID
	account := *found
	s.mu.Unlock()

	c.SetCookie(&http.Cookie{Name: SessionCookie, Value: token, Path: "/", HttpOnly: true})
	return c.JSON(http.StatusOK, map[string]any{"user": userBody(account)})
}

func (s *Server) handleRegister(c echo.Context) error {
	role, err := domain.ParseRole(c.Param("role"))
	if err != nil || c.Param("role") != role.PathSegment() {
		return c.JSON(http.StatusNotFound, errorBody("Unknown role"))
	}

	var body map[string]any
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
	}
	field := func(key string) string {
		v, _ := body[key].(string)
		return strings.TrimSpace(v)
	}
	account := Account{
		Role:           role,
		Name:           field("Name"),
		Email:          field("Email"),
		Password:       field("Password"),
		DoctorID:       field("doctorID"),
		DOB:            field("DOB"),
		PatientHistory: field("PatientHistory"),
		Specialisation: field("Specialisation"),
	}
	if account.Name == "" || account.Email == "" || account.Password == "" {
		return c.JSON(http.StatusBadRequest, errorBody("Missing required fields"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if strings.EqualFold(existing.Email, account.Email) {
			return c.JSON(http.StatusConflict, errorBody("Email already registered"))
		}
	}
	if role == domain.RolePatient {
		doctor, ok := s.accountByIDLocked(account.DoctorID)
		if !ok || doctor.Role != domain.RoleDoctor {
			return c.JSON(http.StatusBadRequest, errorBody("Doctor not found"))
		}
	}
	account.ID = s.newIDLocked(idPrefix(role))
	s.accounts = append(s.accounts, account)
	return c.JSON(http.StatusCreated, map[string]string{"message": role.Label() + " registered successfully"})
}

func (s *Server) handleDoctorPatients(c echo.Context) error {
	doctor, err := s.require(c, domain.RoleDoctor)
	if doctor.ID == "" {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	patients := []map[string]any{}
	for _, a := range s.accounts {
		if a.Role == domain.RolePatient && a.DoctorID == doctor.ID {
			patients = append(patients, map[string]any{"patientID": a.ID, "Name": a.Name, "DOB": a.DOB})
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"patients": patients})
}

func (s *Server) handleGetProfile(c echo.Context) error {
	patient, status, msg := s.visiblePatient(c)
	if status != 0 {
		return c.JSON(status, errorBody(msg))
	}
	return c.JSON(http.StatusOK, profileBody(patient))
}

func (s *Server) handleUpdateProfile(c echo.Context) error {
	account, ok := s.current(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorBody("Not logged in"))
	}
	if account.Role != domain.RoleDoctor {
		return c.JSON(http.StatusForbidden, errorBody("Forbidden"))
	}
	patient, status, msg := s.visiblePatient(c)
	if status != 0 {
		return c.JSON(status, errorBody(msg))
	}

	var body struct {
		PatientHistory *string `json:"PatientHistory"`
	}
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil || body.PatientHistory == nil {
		return c.JSON(http.StatusBadRequest, errorBody("PatientHistory is required"))
	}

	s.mu.Lock()
	for i := range s.accounts {
		if s.accounts[i].ID == patient.ID {
			s.accounts[i].PatientHistory = *body.PatientHistory
			patient = s.accounts[i]
		}
	}
	s.mu.Unlock()
	return c.JSON(http.StatusOK, profileBody(patient))
}

func (s *Server) visiblePatient(c echo.Context) (Account, int, string) {
	account, ok := s.current(c)
	if !ok {
		return Account{}, http.StatusUnauthorized, "Not logged in"
	}
	s.mu.Lock()
	patient, found := s.accountByIDLocked(c.Param("id"))
	s.mu.Unlock()
	if !found || patient.Role != domain.RolePatient {
		return Account{}, http.StatusNotFound, "Patient not found"
	}
	switch {
	case account.Role == domain.RoleDoctor && patient.DoctorID == account.ID:
	case account.Role == domain.RolePatient && patient.ID == account.ID:
	default:
		return Account{}, http.StatusForbidden, "Forbidden"
	}
	return patient, 0, ""
}

func (s *Server) handleListPrescriptions(c echo.Context) error {
	account, err := s.require(c, "")
	if account.ID == "" {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items := []map[string]any{}
	for _, p := range s.prescriptions {
		body := prescriptionBody(p.Prescription)
		switch account.Role {
		case domain.RolePatient:
			if p.PatientID != account.ID {
				continue
			}
		case domain.RoleDoctor:
			if p.DoctorID != account.ID {
				continue
			}
			delete(body, "CollectionCode")
		case domain.RolePharmacist:
			if p.PharmacistID != account.ID {
				continue
			}
		}
		items = append(items, body)
	}
	return c.JSON(http.StatusOK, map[string]any{"prescriptions": items})
}

func (s *Server) handleCreatePrescription(c echo.Context) error {
	doctor, err := s.require(c, domain.RoleDoctor)
	if doctor.ID == "" {
		return err
	}

	var body struct {
		PatientID      string `json:"patientID"`
		PharmID        string `json:"pharmID"`
		MedicineName   string `json:"MedicineName"`
		Instructions   string `json:"Instructions"`
		DatePrescribed string `json:"DatePrescribed"`
		DurationType   string `json:"DurationType"`
	}
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil || body.PatientID == "" || body.PharmID == "" || body.MedicineName == "" {
		return c.JSON(http.StatusBadRequest, errorBody("Missing prescription fields"))
	}

	s.mu.Lock()
	patient, ok := s.accountByIDLocked(body.PatientID)
	s.mu.Unlock()
	if !ok || patient.DoctorID != doctor.ID {
		return c.JSON(http.StatusNotFound, errorBody("Patient not found"))
	}

	created := s.AddPrescription(domain.Prescription{
		PatientID:      body.PatientID,
		PharmacistID:   body.PharmID,
		MedicineName:   body.MedicineName,
		Instructions:   body.Instructions,
		DatePrescribed: body.DatePrescribed,
		DurationType:   domain.DurationType(body.DurationType),
	}, doctor.ID)

	response := prescriptionBody(created)
	delete(response, "CollectionCode")
	return c.JSON(http.StatusCreated, response)
}

func (s *Server) handleCollectPrescription(c echo.Context) error {
	pharmacist, err := s.require(c, domain.RolePharmacist)
	if pharmacist.ID == "" {
		return err
	}

	var body struct {
		CollectionCode string `json:"CollectionCode"`
	}
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Missing collection code"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.prescriptions {
		if p.ID != c.Param("id") || p.PharmacistID != pharmacist.ID {
			continue
		}
		if p.CollectionCode != body.CollectionCode {
			return c.JSON(http.StatusBadRequest, errorBody("Invalid collection code"))
		}
		s.prescriptions = append(s.prescriptions[:i:i], s.prescriptions[i+1:]...)
		return c.JSON(http.StatusOK, map[string]string{"status": "collected"})
	}
	return c.JSON(http.StatusNotFound, errorBody("Prescription not found"))
}

func (s *Server) thread(c echo.Context) (Account, string, int, string) {
	account, ok := s.current(c)
	if !ok {
		return Account{}, "", http.StatusUnauthorized, "Not logged in"
	}
	id := c.Param("id")
	switch account.Role {
	case domain.RolePatient:
		if id != "me" && id != account.ID {
			return Account{}, "", http.StatusForbidden, "Forbidden"
		}
		return account, account.ID, 0, ""
	case domain.RoleDoctor:
		s.mu.Lock()
		patient, found := s.accountByIDLocked(id)
		s.mu.Unlock()
		if !found || patient.DoctorID != account.ID {
			return Account{}, "", http.StatusNotFound, "Patient not found"
		}
		return account, patient.ID, 0, ""
	default:
		return Account{}, "", http.StatusForbidden, "Forbidden"
	}
}

func (s *Server) handleListMessages(c echo.Context) error {
	_, patientID, status, msg := s.thread(c)
	if status != 0 {
		return c.JSON(status, errorBody(msg))
	}

	items := []map[string]string{}
	for _, m := range s.Messages(patientID) {
		items = append(items, map[string]string{"sender": m.Sender, "message": m.Body, "timestamp": m.Timestamp})
	}
	return c.JSON(http.StatusOK, map[string]any{"messages": items})
}

func (s *Server) handleSendMessage(c echo.Context) error {
	account, patientID, status, msg := s.thread(c)
	if status != 0 {
		return c.JSON(status, errorBody(msg))
	}

	var body struct {
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil || strings.TrimSpace(body.Message) == "" {
		return c.JSON(http.StatusBadRequest, errorBody("Message is required"))
	}

	s.AddMessage(patientID, domain.Message{Sender: account.ID, Body: body.Message, Timestamp: body.Timestamp})
	return c.JSON(http.StatusCreated, map[string]string{"status": "sent"})
}

func (s *Server) handleAssignedDoctor(c echo.Context) error {
	patient, err := s.require(c, domain.RolePatient)
	if patient.ID == "" {
		return err
	}

	s.mu.Lock()
	doctor, ok := s.accountByIDLocked(patient.DoctorID)
	s.mu.Unlock()
	if !ok {
		return c.JSON(http.StatusNotFound, errorBody("Doctor not found"))
	}
	return c.JSON(http.StatusOK, map[string]any{"doctor": map[string]string{
		"doctorID":       doctor.ID,
		"Name":           doctor.Name,
		"Email":          doctor.Email,
		"Specialisation": doctor.Specialisation,
	}})
}

func (s *Server) accountByIDLocked(id string) (Account, bool) {
	for _, a := range s.accounts {
		if a.ID == id {
			return a, true
		}
	}
	return Account{}, false
}

func (s *Server) newIDLocked(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s%d", prefix, s.nextID)
}

func idPrefix(role domain.Role) string {
	switch role {
	case domain.RoleDoctor:
		return "D"
	case domain.RolePharmacist:
		return "PH"
	default:
		return "P"
	}
}

func collectionCode(seed int) string {
	return fmt.Sprintf("%06d", (seed*271829+104729)%1000000)
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

func userBody(a Account) map[string]any {
	user := map[string]any{"Name": a.Name, "Email": a.Email}
	switch a.Role {
	case domain.RolePatient:
		user["patientID"] = a.ID
	case domain.RoleDoctor:
		user["doctorID"] = a.ID
	case domain.RolePharmacist:
		user["pharmID"] = a.ID
	}
	return user
}

func profileBody(a Account) map[string]any {
	var history any
	if a.PatientHistory != "" {
		history = a.PatientHistory
	}
	return map[string]any{
		"patientID":      a.ID,
		"Name":           a.Name,
		"Email":          a.Email,
		"DOB":            a.DOB,
		"doctorID":       a.DoctorID,
		"PatientHistory": history,
	}
}

func prescriptionBody(p domain.Prescription) map[string]any {
	return map[string]any{
		"prescriptionID": p.ID,
		"patientID":      p.PatientID,
		"pharmID":        p.PharmacistID,
		"MedicineName":   p.MedicineName,
		"Instructions":   p.Instructions,
		"DatePrescribed": p.DatePrescribed,
		"DurationType":   string(p.DurationType),
		"CollectionCode": p.CollectionCode,
	}
}
