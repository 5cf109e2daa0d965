package application

import (
	"context"
	"sync"

	"github.com/bnema/care-cli/internal/domain"
	"github.com/bnema/care-cli/internal/ports"
)

type PanelStatus int

const (
	PanelIdle PanelStatus = iota
	PanelLoading
	PanelReady
	PanelError
)

func (s PanelStatus) String() string {
	switch s {
	case PanelIdle:
		return "idle"
	case PanelLoading:
		return "loading"
	case PanelReady:
		return "ready"
	case PanelError:
		return "error"
	default:
		return "unknown"
	}
}

// Scope narrows a fetched collection to items whose Field equals Value.
// A zero Scope keeps everything.
type Scope[T any] struct {
	Field func(T) string
	Value string
}

func (s Scope[T]) keep(item T) bool {
	if s.Field == nil || s.Value == "" {
		return true
	}
	return s.Field(item) == s.Value
}

type PanelSnapshot[T any] struct {
	Status PanelStatus
	Items  []T
	Err    string
	Token  uint64
}

// Panel holds one server collection. It is only ever replaced by a fetch;
// writes go through Mutate, which refetches on success.
type Panel[T any] struct {
	source   ports.Source[T]
	fallback string

	mu         sync.Mutex
	scope      Scope[T]
	status     PanelStatus
	items      []T
	err        string
	token      uint64
	reloadSeen uint64
	gen        uint64
	closed     bool
}

func NewPanel[T any](source ports.Source[T], fallback string) *Panel[T] {
	return &Panel[T]{source: source, fallback: fallback}
}

// Fetch loads the collection. Only the most recently issued fetch may apply
// its result.
func (p *Panel[T]) Fetch(ctx context.Context) PanelSnapshot[T] {
	p.mu.Lock()
	if p.closed {
		defer p.mu.Unlock()
		return p.snapshotLocked()
	}
	p.gen++
	gen := p.gen
	scope := p.scope
	p.status = PanelLoading
	p.mu.Unlock()

	items, err := p.source.List(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || gen != p.gen {
		return p.snapshotLocked()
	}
	if err != nil {
		p.status = PanelError
		p.err = domain.UserMessage(err, p.fallback)
		return p.snapshotLocked()
	}

	narrowed := make([]T, 0, len(items))
	for _, item := range items {
		if scope.keep(item) {
			narrowed = append(narrowed, item)
		}
	}
	p.items = narrowed
	p.status = PanelReady
	p.err = ""
	return p.snapshotLocked()
}

// Refresh refetches with the current scope and advances the reload token.
func (p *Panel[T]) Refresh(ctx context.Context) PanelSnapshot[T] {
	p.mu.Lock()
	p.token++
	p.mu.Unlock()
	return p.Fetch(ctx)
}

// Reload refreshes when token is newer than the last token passed to Reload.
// Refreshes made by the panel itself do not consume tokens.
func (p *Panel[T]) Reload(ctx context.Context, token uint64) (PanelSnapshot[T], bool) {
	p.mu.Lock()
	if token <= p.reloadSeen {
		defer p.mu.Unlock()
		return p.snapshotLocked(), false
	}
	p.reloadSeen = token
	p.mu.Unlock()
	return p.Refresh(ctx), true
}

func (p *Panel[T]) SetScope(ctx context.Context, scope Scope[T]) PanelSnapshot[T] {
	p.mu.Lock()
	p.scope = scope
	p.mu.Unlock()
	return p.Fetch(ctx)
}

// Mutate runs one write. Success triggers exactly one Refresh; failure keeps
// the last collection and records the error text.
func (p *Panel[T]) Mutate(ctx context.Context, op func(ctx context.Context) error, fallback string) (PanelSnapshot[T], error) {
	p.mu.Lock()
	if p.closed {
		defer p.mu.Unlock()
		return p.snapshotLocked(), domain.ErrClosed
	}
	p.mu.Unlock()

	if err := op(ctx); err != nil {
		userErr := domain.NewUserError(err, fallback)
		p.mu.Lock()
		defer p.mu.Unlock()
		if !p.closed {
			// A fetch still in flight must not clear the failure.
			p.gen++
			p.status = PanelError
			p.err = userErr.Message
		}
		return p.snapshotLocked(), userErr
	}
	return p.Refresh(ctx), nil
}

func (p *Panel[T]) Snapshot() PanelSnapshot[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Close discards every result still in flight.
func (p *Panel[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *Panel[T]) snapshotLocked() PanelSnapshot[T] {
	return PanelSnapshot[T]{
		Status: p.status,
		Items:  append([]T(nil), p.items...),
		Err:    p.err,
		Token:  p.token,
	}
}
