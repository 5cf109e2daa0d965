package domain

import "strings"

const DefaultDisplayName = "User"

// UserRecord is the user object returned by /api/me and the login endpoints.
type UserRecord struct {
	Name         string
	PatientID    string
	DoctorID     string
	PharmacistID string
}

type Identity struct {
	DisplayName string
	ID          string
}

// ResolveID returns the role's own id when present, otherwise the first
// non-empty of patient, doctor and pharmacist id.
func ResolveID(user UserRecord, role Role) string {
	var own string
	switch role {
	case RolePatient:
		own = user.PatientID
	case RoleDoctor:
		own = user.DoctorID
	case RolePharmacist:
		own = user.PharmacistID
	}
	if id := strings.TrimSpace(own); id != "" {
		return id
	}

	for _, candidate := range []string{user.PatientID, user.DoctorID, user.PharmacistID} {
		if id := strings.TrimSpace(candidate); id != "" {
			return id
		}
	}
	return ""
}

func NewIdentity(user UserRecord, role Role) Identity {
	name := strings.TrimSpace(user.Name)
	if name == "" {
		name = DefaultDisplayName
	}
	return Identity{DisplayName: name, ID: ResolveID(user, role)}
}

type SessionStatus int

const (
	SessionChecking SessionStatus = iota
	SessionUnauthenticated
	SessionAuthenticated
)

func (s SessionStatus) String() string {
	switch s {
	case SessionChecking:
		return "checking"
	case SessionUnauthenticated:
		return "unauthenticated"
	case SessionAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// SessionState is the client-visible projection of the server session.
// Role and Identity are zero unless Status is SessionAuthenticated.
type SessionState struct {
	Status   SessionStatus
	Role     Role
	Identity Identity
}

func CheckingSession() SessionState {
	return SessionState{Status: SessionChecking}
}

func UnauthenticatedSession() SessionState {
	return SessionState{Status: SessionUnauthenticated}
}

func AuthenticatedSession(role Role, user UserRecord) SessionState {
	return SessionState{
		Status:   SessionAuthenticated,
		Role:     role,
		Identity: NewIdentity(user, role),
	}
}

func (s SessionState) Authenticated() bool {
	return s.Status == SessionAuthenticated
}

// WhoAmI is the raw /api/me answer. Role is kept verbatim so callers can
// tell a missing role from an unrecognized one.
type WhoAmI struct {
	Role string
	User UserRecord
}
