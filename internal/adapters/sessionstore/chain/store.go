package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/care-cli/internal/adapters/sessionstore/file"
	"github.com/bnema/care-cli/internal/adapters/sessionstore/pass"
	"github.com/bnema/care-cli/internal/domain"
	"github.com/bnema/care-cli/internal/ports"
)

// Store keeps a session in primary when it can and in fallback otherwise, so
// a cookie lives in one backend at a time. A session found only in fallback
// moves to primary on the next read once primary accepts writes again.
type Store struct {
	primary  ports.SessionStore
	fallback ports.SessionStore
}

var _ ports.SessionStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary session store is nil")
	errNilFallbackStore = errors.New("fallback session store is nil")
)

func NewStore(primary ports.SessionStore, fallback ports.SessionStore) *Store {
	store, err := NewStoreChecked(primary, fallback)
	if err != nil {
		panic(err)
	}

	return store
}

func NewStoreChecked(primary ports.SessionStore, fallback ports.SessionStore) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Store{primary: primary, fallback: fallback}, nil
}

func NewPassFirstWithFileFallback(fileRoot string) (*Store, error) {
	return NewStoreChecked(pass.NewStore(), file.NewStore(fileRoot))
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	err := s.primary.Put(ctx, key, value)
	if err == nil {
		s.dropFallbackCopy(ctx, key)
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Put(ctx, key, value)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend put failed: %w; fallback backend put failed: %w", err, fallbackErr)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.primary.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if shouldSkipFallback(err) {
		return "", err
	}

	fallbackValue, fallbackErr := s.fallback.Get(ctx, key)
	if fallbackErr == nil {
		if errors.Is(err, domain.ErrSessionNotFound) && s.primary.Put(ctx, key, fallbackValue) == nil {
			s.dropFallbackCopy(ctx, key)
		}
		return fallbackValue, nil
	}
	if errors.Is(err, domain.ErrSessionNotFound) && errors.Is(fallbackErr, domain.ErrSessionNotFound) {
		return "", fmt.Errorf("session %q: %w", key, domain.ErrSessionNotFound)
	}
	if errors.Is(fallbackErr, domain.ErrSessionNotFound) {
		return "", fmt.Errorf("primary backend get failed: %w", err)
	}

	return "", fmt.Errorf("primary backend get failed: %w; fallback backend get failed: %w", err, fallbackErr)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.primary.Delete(ctx, key)
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Delete(ctx, key)
	if err == nil || fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend delete failed: %w; fallback backend delete failed: %w", err, fallbackErr)
}

// dropFallbackCopy removes a stale fallback entry once primary holds the
// session. Failure leaves the copy behind; primary is always read first.
func (s *Store) dropFallbackCopy(ctx context.Context, key string) {
	_ = s.fallback.Delete(ctx, key)
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
