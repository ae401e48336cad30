// Package salesapi is the HTTP client for the sales backend. The backend is
// the system of record for agents, products, promotions, pricing and orders;
// this package only fetches and submits.
//
// The backend's JSON is not uniform: ids arrive as numbers from some
// endpoints and strings from others, numeric fields are sometimes quoted,
// and list responses are either bare arrays or {status, data} envelopes.
// Decoding is therefore hand-written on go-faster/jx and coerces
// best-effort rather than failing.
package salesapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-faster/errors"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 16 << 20

// APIError is a non-2xx response from the backend. Its message is surfaced
// to the operator as-is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server responded %d", e.Status)
	}
	return fmt.Sprintf("server responded %d: %s", e.Status, e.Message)
}

// Client talks to the sales backend. Construct it with New; the zero value
// is not usable.
type Client struct {
	base string
	http *http.Client
}

// New creates a Client for the backend at baseURL. When hc is nil a default
// client is used; callers normally pass one wired with NewTransport.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: hc,
	}
}

// get issues a GET and returns the body and headers. Transport failures are
// wrapped; non-2xx responses become *APIError carrying the server message.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, http.Header, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

// send issues a request with a JSON body.
func (c *Client) send(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	data, _, err := c.do(req)
	return data, err
}

func (c *Client) do(req *http.Request) ([]byte, http.Header, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read %s %s response", req.Method, req.URL.Path)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.Header, &APIError{
			Status:  resp.StatusCode,
			Message: errorMessage(data),
		}
	}

	return data, resp.Header, nil
}
