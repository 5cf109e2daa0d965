package application

import (
	"context"
	"fmt"

	"github.com/bnema/care-cli/internal/domain"
	"github.com/bnema/care-cli/internal/ports"
)

// Mount is everything a workspace receives from the session.
type Mount struct {
	Role     domain.Role
	Identity domain.Identity
	Logout   func(ctx context.Context) domain.SessionState
}

type Workspace interface {
	Role() domain.Role
	Identity() domain.Identity
	Load(ctx context.Context)
	// Reload refreshes every panel when token is newer than the last one
	// passed in.
	Reload(ctx context.Context, token uint64)
	Logout(ctx context.Context) domain.SessionState
	Close()
}

type WorkspaceFactory func(Mount) Workspace

// Router maps an authenticated session to exactly one workspace.
type Router struct {
	logout    func(ctx context.Context) domain.SessionState
	factories map[domain.Role]WorkspaceFactory
}

func NewRouter(logout func(ctx context.Context) domain.SessionState, factories map[domain.Role]WorkspaceFactory) *Router {
	return &Router{logout: logout, factories: factories}
}

// DefaultWorkspaces binds every role to its workspace over api.
func DefaultWorkspaces(api ports.PortalAPI, clock ports.Clock) map[domain.Role]WorkspaceFactory {
	return map[domain.Role]WorkspaceFactory{
		domain.RolePatient: func(m Mount) Workspace {
			return NewPatientWorkspace(m, api, clock)
		},
		domain.RoleDoctor: func(m Mount) Workspace {
			return NewDoctorWorkspace(m, api, clock)
		},
		domain.RolePharmacist: func(m Mount) Workspace {
			return NewPharmacistWorkspace(m, api)
		},
	}
}

func (r *Router) Route(state domain.SessionState) (Mount, error) {
	if !state.Authenticated() {
		return Mount{}, fmt.Errorf("route session: %w", domain.ErrNotAuthenticated)
	}
	if _, ok := r.factories[state.Role]; !ok {
		return Mount{}, fmt.Errorf("route role %q: %w", state.Role, domain.ErrNoWorkspace)
	}
	return Mount{Role: state.Role, Identity: state.Identity, Logout: r.logout}, nil
}

// Mount builds the workspace for state. Callers end the session on
// domain.ErrNoWorkspace.
func (r *Router) Mount(state domain.SessionState) (Workspace, error) {
	mount, err := r.Route(state)
	if err != nil {
		return nil, err
	}
	return r.factories[mount.Role](mount), nil
}
