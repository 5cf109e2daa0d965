package portal

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

// loggingTransport tags each request with an id and logs its outcome.
// Bodies and cookies are never logged.
type loggingTransport struct {
	next   http.RoundTripper
	logger zerolog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}

	requestID := req.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
		req = req.Clone(req.Context())
		req.Header.Set(requestIDHeader, requestID)
	}

	start := time.Now()
	resp, err := next.RoundTrip(req)
	latency := time.Since(start)

	if err != nil {
		t.logger.Warn().
			Err(err).
			Str("request_id", requestID).
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Dur("latency", latency).
			Msg("portal request failed")
		return nil, err
	}

	event := t.logger.Debug()
	if resp.StatusCode >= http.StatusInternalServerError {
		event = t.logger.Warn()
	}
	event.
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("latency", latency).
		Msg("portal request")
	return resp, nil
}
