package ports

import (
	"context"

	"github.com/bnema/care-cli/internal/domain"
)

type SessionAPI interface {
	WhoAmI(ctx context.Context) (domain.WhoAmI, error)
	Login(ctx context.Context, role domain.Role, creds domain.Credentials) (domain.UserRecord, error)
	Register(ctx context.Context, role domain.Role, reg domain.Registration) (string, error)
	Logout(ctx context.Context) error
}

// MessageAPI addresses a thread by counterpart id; an empty counterpart means
// the caller's own thread (/api/messages/me).
type MessageAPI interface {
	ListMessages(ctx context.Context, counterpart string) ([]domain.Message, error)
	SendMessage(ctx context.Context, counterpart string, msg domain.OutgoingMessage) error
}

type PrescriptionAPI interface {
	ListPrescriptions(ctx context.Context) ([]domain.Prescription, error)
	CreatePrescription(ctx context.Context, prescription domain.NewPrescription) (domain.Record, error)
	CollectPrescription(ctx context.Context, id string, code string) error
}

type PatientAPI interface {
	ListPatients(ctx context.Context) ([]domain.Patient, error)
	PatientProfile(ctx context.Context, id string) (domain.Record, error)
	UpdatePatientHistory(ctx context.Context, id string, history string) (domain.Record, error)
	AssignedDoctor(ctx context.Context) (domain.Record, error)
}

type PortalAPI interface {
	SessionAPI
	MessageAPI
	PrescriptionAPI
	PatientAPI
}

// Source loads one collection from one endpoint.
type Source[T any] interface {
	List(ctx context.Context) ([]T, error)
}

type SourceFunc[T any] func(ctx context.Context) ([]T, error)

func (f SourceFunc[T]) List(ctx context.Context) ([]T, error) {
	return f(ctx)
}
