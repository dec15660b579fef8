package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rvasani/lenden/internal/common"
	"github.com/rvasani/lenden/internal/logging"
)

// TokenSource yields the current bearer credential, or "" when none is held.
// The session manager is the only writer of the credential; everything else,
// this gateway included, reads it through a TokenSource.
type TokenSource func() string

// Client issues envelope-speaking requests against the ledger service.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
	log     logging.Logger
}

// New builds a gateway for the given base URL. token may be nil for a client
// that never authenticates.
func New(baseURL string, timeout time.Duration, token TokenSource, log logging.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		token:   token,
		log:     log.With("component", "api"),
	}
}

// Do issues the request described by spec. A non-nil body is JSON-encoded.
//
// Failure planes are kept separate:
//   - network failure or an unreadable response wraps common.ErrUnavailable;
//   - a non-2xx status wraps common.ErrRequestFailed, carrying the
//     server-supplied message when one could be decoded;
//   - a 2xx response returns the parsed envelope unchanged, application
//     failures (success=false / error=true) included. The caller inspects
//     those itself.
func (c *Client) Do(ctx context.Context, spec Spec, body any) (*Envelope, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	u := c.baseURL + spec.Path
	if spec.RawQuery != "" {
		u += "?" + spec.RawQuery
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if t := c.token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", spec.Method, "path", spec.Path, "err", err)
		return nil, fmt.Errorf("%w: %s %s", common.ErrUnavailable, spec.Method, spec.Path)
	}
	defer resp.Body.Close()

	// The envelope is parsed regardless of HTTP status: error responses
	// usually still carry a message worth surfacing.
	var env Envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := "request failed"
		if decodeErr == nil && env.Message != "" {
			msg = env.Message
		}
		c.log.Debug(ctx, "non-2xx response", "method", spec.Method, "path", spec.Path, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %s", common.ErrRequestFailed, msg)
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("%w: undecodable response body", common.ErrUnavailable)
	}
	return &env, nil
}
