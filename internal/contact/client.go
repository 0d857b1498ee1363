package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// SubmitError reports a non-2xx answer.  Response holds the decoded body
// when the server sent one.
type SubmitError struct {
	Status   int
	Response *Response
}

func (e *SubmitError) Error() string {
	if e.Response != nil && e.Response.Message != "" {
		return fmt.Sprintf("contact: server answered %d: %s", e.Status, e.Response.Message)
	}
	return fmt.Sprintf("contact: server answered %d", e.Status)
}

// Client posts submissions to a site.  It is safe for concurrent use.
type Client struct {
	endpoint string
	http     *http.Client
	log      *zap.SugaredLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithLogger attaches a logger for request outcomes.
func WithLogger(l *zap.SugaredLogger) Option { return func(c *Client) { c.log = l } }

// NewClient returns a Client for the site at baseURL (scheme and host, with
// an optional path prefix).
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimRight(baseURL, "/") + Endpoint,
		http:     http.DefaultClient,
		log:      zap.NewNop().Sugar(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Submit validates s and, only when it is valid, sends it in exactly one
// request.  Nothing is retried.
//
// Errors: a validation error (form.IsValidationError) when s is invalid, a
// *SubmitError for any non-2xx status, or a wrapped transport error.
func (c *Client) Submit(ctx context.Context, s Submission) (*Response, error) {
	if err := s.Check(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("contact: encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("contact: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		c.log.Warnw("contact submit failed", "endpoint", c.endpoint, "err", err)
		return nil, fmt.Errorf("contact: post %s: %w", c.endpoint, err)
	}
	defer res.Body.Close()

	out, decodeErr := decodeResponse(res.Body)
	c.log.Debugw("contact submit answered", "endpoint", c.endpoint, "status", res.StatusCode)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return out, &SubmitError{Status: res.StatusCode, Response: out}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("contact: decode response: %w", decodeErr)
	}
	return out, nil
}

// decodeResponse reads a Response, returning nil and the error when the
// body is not one.
func decodeResponse(r io.Reader) (*Response, error) {
	var out Response
	if err := json.NewDecoder(io.LimitReader(r, 1<<20)).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
