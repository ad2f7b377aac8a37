package refresh

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/far7tna/portal/credentials"
	"github.com/far7tna/portal/metrics"
)

// DefaultTimeout bounds one exchange when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// All callers share one slot; there is only ever one refresh token per session.
const flightKey = "refresh"

// Exchanger trades a refresh token for a new credential set.
type Exchanger interface {
	Exchange(ctx context.Context, refreshToken string) (credentials.Credentials, error)
}

// ExchangerFunc adapts a function to Exchanger.
type ExchangerFunc func(ctx context.Context, refreshToken string) (credentials.Credentials, error)

func (f ExchangerFunc) Exchange(ctx context.Context, refreshToken string) (credentials.Credentials, error) {
	return f(ctx, refreshToken)
}

// CredentialStore is the part of credentials.Store the coordinator needs.
type CredentialStore interface {
	RefreshToken(ctx context.Context) string
	Save(ctx context.Context, creds credentials.Credentials) error
	Clear(ctx context.Context) error
}

var _ CredentialStore = (*credentials.Store)(nil)

// Coordinator guarantees at most one refresh exchange is in flight. Everyone who asks
// while an exchange is running receives that exchange's result.
type Coordinator struct {
	store     CredentialStore
	exchanger Exchanger
	timeout   time.Duration
	metrics   *metrics.Metrics
	group     singleflight.Group
}

type Option func(*Coordinator)

func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

func NewCoordinator(store CredentialStore, exchanger Exchanger, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:     store,
		exchanger: exchanger,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh returns a fresh access token, or "" when none could be obtained. In the
// latter case the stored credentials have been cleared unless there were none.
//
// The exchange is not tied to ctx: a caller that gives up only stops waiting, and
// the remaining callers still get the result. A non-nil error means ctx ended first.
func (c *Coordinator) Refresh(ctx context.Context) (string, error) {
	var started bool
	ch := c.group.DoChan(flightKey, func() (interface{}, error) {
		started = true
		return c.exchange(context.WithoutCancel(ctx)), nil
	})

	select {
	case res := <-ch:
		if !started {
			c.metrics.RefreshJoined()
		}
		token, _ := res.Val.(string)
		return token, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Coordinator) exchange(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	refreshToken := c.store.RefreshToken(ctx)
	if refreshToken == "" {
		log.Debug().Msg("no refresh token stored, skipping exchange")
		c.metrics.RefreshOutcome(metrics.OutcomeNoToken)
		return ""
	}

	creds, err := c.exchanger.Exchange(ctx, refreshToken)
	if err == nil {
		err = c.store.Save(ctx, creds)
	}
	if err != nil {
		log.Warn().Err(err).Msg("token refresh failed, clearing credentials")
		if clearErr := c.store.Clear(context.WithoutCancel(ctx)); clearErr != nil {
			log.Err(clearErr).Msg("clearing credentials after failed refresh")
		}
		c.metrics.RefreshOutcome(metrics.OutcomeFailure)
		return ""
	}

	log.Debug().Str("user", creds.User.ID).Msg("access token refreshed")
	c.metrics.RefreshOutcome(metrics.OutcomeSuccess)
	return creds.AccessToken
}
