package apiclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/far7tna/portal/metrics"
)

// RequestIDHeader carries the id shared by a request and its retry.
const RequestIDHeader = "X-Request-ID"

// TokenStore supplies the current access token.
type TokenStore interface {
	TokenSource(ctx context.Context) oauth2.TokenSource
}

// Refresher obtains a replacement access token; "" means none is available.
type Refresher interface {
	Refresh(ctx context.Context) (string, error)
}

// Transport attaches the stored bearer token to every request and, on a 401,
// refreshes once and re-issues the request. A response to the re-issued request is
// returned as is, whatever its status.
type Transport struct {
	Base      http.RoundTripper
	Tokens    TokenStore
	Refresher Refresher
	Metrics   *metrics.Metrics
}

var _ http.RoundTripper = (*Transport)(nil)

// NewHTTPClient returns an http.Client using an authenticating Transport.
func NewHTTPClient(tokens TokenStore, refresher Refresher, timeout time.Duration, m *metrics.Metrics) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &Transport{
			Tokens:    tokens,
			Refresher: refresher,
			Metrics:   m,
		},
	}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	getBody, err := replayableBody(req)
	if err != nil {
		return nil, err
	}

	requestID := req.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	first, err := t.prepare(req, getBody, requestID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.base().RoundTrip(first)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	logger := log.With().Str("request_id", requestID).Str("method", req.Method).Str("path", req.URL.Path).Logger()
	logger.Debug().Msg("request unauthorized, refreshing token")

	newToken, err := t.Refresher.Refresh(req.Context())
	if err != nil || newToken == "" {
		logger.Debug().Err(err).Msg("no replacement token, returning 401")
		return resp, nil
	}

	retry, err := t.prepare(req, getBody, requestID, &oauth2.Token{AccessToken: newToken, TokenType: "Bearer"})
	if err != nil {
		return resp, nil
	}
	drain(resp)

	t.Metrics.RequestRetried()
	logger.Debug().Msg("retrying with refreshed token")
	return t.base().RoundTrip(retry)
}

// prepare clones req with a fresh body and the bearer header. A nil token means
// whatever the store currently holds.
func (t *Transport) prepare(req *http.Request, getBody func() (io.ReadCloser, error), requestID string, token *oauth2.Token) (*http.Request, error) {
	out := req.Clone(req.Context())
	out.Header.Set(RequestIDHeader, requestID)

	if getBody != nil {
		body, err := getBody()
		if err != nil {
			return nil, errors.Wrap(err, "replay request body")
		}
		out.Body = body
		out.GetBody = getBody
	}

	if token == nil && t.Tokens != nil {
		if tok, err := t.Tokens.TokenSource(req.Context()).Token(); err == nil {
			token = tok
		}
	}
	if token != nil {
		token.SetAuthHeader(out)
	}
	return out, nil
}

// replayableBody returns a body factory usable for both attempts. Bodies without
// GetBody are buffered once.
func replayableBody(req *http.Request) (func() (io.ReadCloser, error), error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	if req.GetBody != nil {
		_ = req.Body.Close()
		return req.GetBody, nil
	}
	raw, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, errors.Wrap(err, "buffer request body")
	}
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(raw)), nil
	}, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
