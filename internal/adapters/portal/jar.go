package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"github.com/bnema/care-cli/internal/domain"
	"github.com/bnema/care-cli/internal/ports"
)

// SessionKey is where the session for baseURL lives in a session store.
func SessionKey(baseURL *url.URL) string {
	return "care/" + baseURL.Host + "/session"
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// sessionJar is a cookie jar whose cookies for the portal origin are mirrored
// into a session store.
type sessionJar struct {
	base  *url.URL
	store ports.SessionStore
	key   string

	mu    sync.Mutex
	jar   *cookiejar.Jar
	dirty bool
}

var _ http.CookieJar = (*sessionJar)(nil)

func newSessionJar(base *url.URL, store ports.SessionStore) (*sessionJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &sessionJar{base: base, store: store, key: SessionKey(base), jar: jar}, nil
}

func (j *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar.SetCookies(u, cookies)
	j.dirty = true
}

func (j *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

func (j *sessionJar) hasCookies() bool {
	return len(j.Cookies(j.base)) > 0
}

func (j *sessionJar) restore(ctx context.Context) error {
	if j.store == nil {
		return nil
	}
	raw, err := j.store.Get(ctx, j.key)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	var stored []storedCookie
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return fmt.Errorf("decode stored session: %w", err)
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		if c.Name == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar.SetCookies(j.base, cookies)
	return nil
}

// persist writes the current cookies when a response changed them.
func (j *sessionJar) persist(ctx context.Context) error {
	j.mu.Lock()
	if !j.dirty || j.store == nil {
		j.mu.Unlock()
		return nil
	}
	j.dirty = false
	cookies := j.jar.Cookies(j.base)
	j.mu.Unlock()

	if len(cookies) == 0 {
		if err := j.store.Delete(ctx, j.key); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	}

	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}
	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := j.store.Put(ctx, j.key, string(payload)); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// clear forgets every cookie locally and in the store.
func (j *sessionJar) clear(ctx context.Context) error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("create cookie jar: %w", err)
	}

	j.mu.Lock()
	j.jar = jar
	j.dirty = false
	j.mu.Unlock()

	if j.store == nil {
		return nil
	}
	if err := j.store.Delete(ctx, j.key); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
