package salesapi

import (
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// transport decorates every backend request with a request id and the
// session token, and logs the outcome with the context logger.
type transport struct {
	base  http.RoundTripper
	token string
}

// NewTransport wraps base so every request carries an X-Request-ID (a fresh
// UUID unless the caller already set one) and, when token is non-empty, the
// stored session token in the Authorization header. The token is sent
// verbatim; this client never validates or refreshes it.
func NewTransport(base http.RoundTripper, token string) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &transport{base: base, token: token}
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.New().String())
	}
	if t.token != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", t.token)
	}

	lg := zctx.From(req.Context())
	start := time.Now()

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		lg.Debug("backend request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err),
		)
		return nil, err
	}

	lg.Debug("backend request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, nil
}
