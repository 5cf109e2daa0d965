package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bnema/care-cli/internal/domain"
	"github.com/bnema/care-cli/internal/ports"
)

// TabState is the form state of one role tab.
type TabState struct {
	Role    domain.Role
	Login   domain.Credentials
	Signup  domain.Registration
	Message string
	IsError bool
	Loading bool
}

type tab struct {
	state TabState
	epoch uint64
}

type LoginResult struct {
	Role domain.Role
	User domain.UserRecord
}

// Gate is the login/signup form. It never changes the session itself; a
// successful login is handed back to the caller.
type Gate struct {
	api ports.SessionAPI

	mu     sync.Mutex
	active domain.Role
	tabs   map[domain.Role]*tab
}

func NewGate(api ports.SessionAPI) *Gate {
	g := &Gate{
		api:    api,
		active: domain.RolePatient,
		tabs:   make(map[domain.Role]*tab, len(domain.Roles)),
	}
	for _, role := range domain.Roles {
		g.tabs[role] = &tab{state: TabState{Role: role}}
	}
	return g
}

func (g *Gate) Active() domain.Role {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

func (g *Gate) Tab(role domain.Role) TabState {
	g.mu.Lock()
	defer g.mu.Unlock()
	if t, ok := g.tabs[role]; ok {
		return t.state
	}
	return TabState{Role: role}
}

// Activate switches to role and resets that tab. Requests still pending for
// the tab keep running but their outcome is no longer written to it.
func (g *Gate) Activate(role domain.Role) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.tabs[role]
	if !ok {
		return fmt.Errorf("activate tab: %w: %q", domain.ErrUnknownRole, role)
	}
	g.active = role
	t.epoch++
	t.state = TabState{Role: role}
	return nil
}

func (g *Gate) SetCredentials(creds domain.Credentials) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tabs[g.active].state.Login = creds
}

func (g *Gate) SetRegistration(reg domain.Registration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tabs[g.active].state.Signup = reg
}

func (g *Gate) Login(ctx context.Context) (LoginResult, error) {
	role, epoch, creds, err := begin(g, func(s TabState) error { return s.Login.Validate() }, func(s TabState) domain.Credentials {
		return domain.Credentials{Email: strings.TrimSpace(s.Login.Email), Password: s.Login.Password}
	})
	if err != nil {
		return LoginResult{}, err
	}

	user, err := g.api.Login(ctx, role, creds)
	if err != nil {
		message := gateFailure(err, domain.MsgLoginFailed)
		g.finish(role, epoch, message, true)
		return LoginResult{}, &domain.UserError{Message: message, Err: err}
	}

	g.finish(role, epoch, "", false)
	return LoginResult{Role: role, User: user}, nil
}

func (g *Gate) Register(ctx context.Context) (string, error) {
	role, epoch, reg, err := begin(g, func(s TabState) error { return s.Signup.Validate(s.Role) }, func(s TabState) domain.Registration {
		reg := s.Signup
		reg.Name = strings.TrimSpace(reg.Name)
		reg.Email = strings.TrimSpace(reg.Email)
		return reg
	})
	if err != nil {
		return "", err
	}

	message, err := g.api.Register(ctx, role, reg)
	if err != nil {
		failure := gateFailure(err, domain.MsgSignupFailed)
		g.finish(role, epoch, failure, true)
		return "", &domain.UserError{Message: failure, Err: err}
	}
	if strings.TrimSpace(message) == "" {
		message = domain.MsgAccountCreated
	}

	g.finish(role, epoch, message, false)
	return message, nil
}

// begin validates the active tab and marks it loading. It is generic over
// the payload so login and signup share the epoch bookkeeping.
func begin[P any](g *Gate, validate func(TabState) error, payload func(TabState) P) (domain.Role, uint64, P, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var zero P
	t := g.tabs[g.active]
	if err := validate(t.state); err != nil {
		t.state.Message = domain.UserMessage(err, "")
		t.state.IsError = true
		return "", 0, zero, err
	}
	t.state.Message = ""
	t.state.IsError = false
	t.state.Loading = true
	return g.active, t.epoch, payload(t.state), nil
}

func (g *Gate) finish(role domain.Role, epoch uint64, message string, isError bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t := g.tabs[role]
	if t.epoch != epoch {
		return
	}
	t.state.Loading = false
	t.state.Message = message
	t.state.IsError = isError
}

// gateFailure maps a failed credential exchange to its user-visible text. A
// response that never arrived, or could not be read, is a transport failure.
func gateFailure(err error, fallback string) string {
	var serverErr *domain.ServerError
	if errors.As(err, &serverErr) {
		return domain.UserMessage(serverErr, fallback)
	}
	return domain.MsgNetworkFailure
}
