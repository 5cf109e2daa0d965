package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/care-cli/internal/domain"
	"github.com/bnema/care-cli/internal/ports"
	"github.com/rs/zerolog"
)

const (
	maxResponseBytes      = 1 << 20
	defaultRequestTimeout = 30 * time.Second
)

type Config struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	// Sessions persists the session cookie between runs. Nil keeps it in memory.
	Sessions  ports.SessionStore
	Logger    zerolog.Logger
	UserAgent string
}

// Client speaks the portal JSON API with a cookie session.
type Client struct {
	baseURL   string
	http      *http.Client
	jar       *sessionJar
	timeout   time.Duration
	userAgent string
	logger    zerolog.Logger
}

var _ ports.PortalAPI = (*Client)(nil)

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if err := domain.ValidateBaseURL(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("create portal client: %w", err)
	}
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse portal base url: %w", err)
	}

	jar, err := newSessionJar(base, cfg.Sessions)
	if err != nil {
		return nil, err
	}
	if err := jar.restore(ctx); err != nil {
		cfg.Logger.Warn().Err(err).Msg("ignoring unreadable stored session")
	}

	httpClient := &http.Client{}
	if cfg.HTTPClient != nil {
		copied := *cfg.HTTPClient
		httpClient = &copied
	}
	httpClient.Jar = jar
	httpClient.Transport = &loggingTransport{next: httpClient.Transport, logger: cfg.Logger}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "care"
	}

	return &Client{
		baseURL:   base.String(),
		http:      httpClient,
		jar:       jar,
		timeout:   cfg.RequestTimeout,
		userAgent: userAgent,
		logger:    cfg.Logger,
	}, nil
}

// BaseURL is the normalized portal address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HasSession reports whether a session cookie is currently held.
func (c *Client) HasSession() bool {
	return c.jar.hasCookies()
}

func (c *Client) do(ctx context.Context, action, method, path string, in any, out any) error {
	endpoint, err := buildAPIURL(c.baseURL, path)
	if err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", action, err)
		}
		body = bytes.NewReader(payload)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", action, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := c.jar.persist(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("could not persist session")
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", action, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%s: %w", action, decodeServerError(resp.StatusCode, data))
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", action, err)
	}
	return nil
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.timeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	return context.WithTimeout(ctx, requestTimeout)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func decodeServerError(status int, data []byte) *domain.ServerError {
	serverErr := &domain.ServerError{Status: status}
	var payload errorResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return serverErr
	}
	serverErr.Message = strings.TrimSpace(payload.Error)
	if serverErr.Message == "" {
		serverErr.Message = strings.TrimSpace(payload.Message)
	}
	return serverErr
}

func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}
	if path == "" {
		return "", errors.New("api path is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	return strings.TrimRight(parsed.String(), "/") + path, nil
}

func segment(value string) string {
	return url.PathEscape(strings.TrimSpace(value))
}
