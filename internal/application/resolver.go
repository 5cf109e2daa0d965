package application

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bnema/care-cli/internal/domain"
	"github.com/bnema/care-cli/internal/ports"
	"github.com/rs/zerolog"
)

// Resolver owns the single session of a client instance. Results of
// WhoAmI calls are applied only while their generation is current and the
// resolver is open.
type Resolver struct {
	api    ports.SessionAPI
	logger zerolog.Logger

	mu        sync.Mutex
	state     domain.SessionState
	gen       uint64
	closed    bool
	observers []func(domain.SessionState)
}

func NewResolver(api ports.SessionAPI, logger zerolog.Logger) *Resolver {
	return &Resolver{
		api:    api,
		logger: logger,
		state:  domain.CheckingSession(),
	}
}

// OnChange registers fn for every applied transition. It is called outside
// the resolver lock.
func (r *Resolver) OnChange(fn func(domain.SessionState)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.observers = append(r.observers, fn)
}

func (r *Resolver) State() domain.SessionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Resolver) Resolve(ctx context.Context) domain.SessionState {
	gen, ok := r.transition(0, domain.CheckingSession())
	if !ok {
		return r.State()
	}

	next := domain.UnauthenticatedSession()
	who, err := r.api.WhoAmI(ctx)
	switch {
	case err != nil:
		r.logger.Debug().Err(err).Msg("session check failed")
	case strings.TrimSpace(who.Role) == "":
		r.logger.Debug().Msg("session check returned no role")
	default:
		role, err := domain.ParseRole(who.Role)
		if err != nil {
			r.logger.Warn().Str("role", who.Role).Msg("session has unrecognized role, ending it")
			if logoutErr := r.api.Logout(ctx); logoutErr != nil {
				r.logger.Warn().Err(logoutErr).Msg("end session request failed")
			}
			break
		}
		next = domain.AuthenticatedSession(role, who.User)
	}

	r.transition(gen, next)
	return r.State()
}

// Authenticate records a session created by the credential gate.
func (r *Resolver) Authenticate(role domain.Role, user domain.UserRecord) (domain.SessionState, error) {
	if !role.Valid() {
		return r.State(), fmt.Errorf("authenticate: %w: %q", domain.ErrUnknownRole, role)
	}
	if _, ok := r.transition(0, domain.AuthenticatedSession(role, user)); !ok {
		return r.State(), fmt.Errorf("authenticate: %w", domain.ErrClosed)
	}
	return r.State(), nil
}

// Logout drops the session locally before asking the portal to end it, so a
// failed request never leaves an authenticated-looking state behind.
func (r *Resolver) Logout(ctx context.Context) domain.SessionState {
	r.transition(0, domain.UnauthenticatedSession())

	if err := r.api.Logout(ctx); err != nil {
		r.logger.Warn().Err(err).Msg("end session request failed")
	}
	return r.State()
}

func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.observers = nil
}

// transition applies next. A zero expected generation starts a new one;
// otherwise next is applied only if expected is still current.
func (r *Resolver) transition(expected uint64, next domain.SessionState) (uint64, bool) {
	r.mu.Lock()
	if r.closed || (expected != 0 && expected != r.gen) {
		r.mu.Unlock()
		if expected != 0 {
			r.logger.Debug().Str("discarded", next.Status.String()).Msg("stale session result")
		}
		return 0, false
	}
	if expected == 0 {
		r.gen++
	}
	gen := r.gen
	r.state = next
	observers := make([]func(domain.SessionState), len(r.observers))
	copy(observers, r.observers)
	r.mu.Unlock()

	r.logger.Debug().Str("status", next.Status.String()).Str("role", string(next.Role)).Msg("session transition")
	for _, fn := range observers {
		fn(next)
	}
	return gen, true
}
