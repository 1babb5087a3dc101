// Package qrng fetches entropy from a remote quantum random number generator.
package qrng

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// maxResponseBytes caps how much of a backend response is read.
const maxResponseBytes = 1 << 20

// ErrMalformedResponse is returned when the backend answers 200 with a body
// that does not carry exactly the requested bytes.
var ErrMalformedResponse = errors.New("qrng: malformed response")

// retryIntervals are the waits before each retry. Every wait is also bounded
// by the caller's context.
var retryIntervals = []time.Duration{
	50 * time.Millisecond,
	200 * time.Millisecond,
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError reports a non-200 backend response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("qrng: backend returned status %d", e.StatusCode)
}

// Client implements ports.EntropySource against a QRNG HTTP backend.
//
// The backend is queried as GET <base>?bytes=N and must answer
// {"data":"<2N hex chars>"}.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPClient
	log        zerolog.Logger
}

// NewClient creates a QRNG client. apiKey is sent as X-API-Key when set.
func NewClient(baseURL, apiKey string, httpClient HTTPClient, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		log:        log.With().Str("component", "qrng").Logger(),
	}
}

type randomResponse struct {
	Data string `json:"data"`
}

// Fill requests len(p) bytes from the backend, retrying transport errors
// and 5xx responses until ctx expires or retries run out.
func (c *Client) Fill(ctx context.Context, p []byte) error {
	var lastErr error
	for attempt := 0; attempt <= len(retryIntervals); attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(retryIntervals[attempt-1])
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("qrng: %w (last error: %v)", ctx.Err(), lastErr)
			case <-timer.C:
			}
		}

		err := c.fetch(ctx, p)
		if err == nil {
			return nil
		}
		if !retryable(err) || ctx.Err() != nil {
			return err
		}
		lastErr = err
		c.log.Warn().Err(err).Int("attempt", attempt+1).Int("bytes", len(p)).Msg("qrng: request failed, retrying")
	}
	return fmt.Errorf("qrng: all retry attempts exhausted: %w", lastErr)
}

func (c *Client) fetch(ctx context.Context, p []byte) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("qrng: parsing backend url: %w", err)
	}
	q := u.Query()
	q.Set("bytes", strconv.Itoa(len(p)))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("qrng: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qrng: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode}
	}

	var body randomResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(body.Data) != 2*len(p) {
		return fmt.Errorf("%w: want %d hex chars, got %d", ErrMalformedResponse, 2*len(p), len(body.Data))
	}
	if _, err := hex.Decode(p, []byte(body.Data)); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	c.log.Debug().Int("bytes", len(p)).Msg("qrng: entropy received")
	return nil
}

func retryable(err error) bool {
	if errors.Is(err, ErrMalformedResponse) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	return true
}
