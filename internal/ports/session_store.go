package ports

import "context"

// SessionStore keeps the opaque portal session credential between runs.
// Get returns domain.ErrSessionNotFound when nothing is stored under key.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
