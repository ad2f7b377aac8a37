package refresh_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/far7tna/portal/credentials"
	"github.com/far7tna/portal/metrics"
	"github.com/far7tna/portal/refresh"
	"github.com/far7tna/portal/storage"
)

// blockingExchanger holds every exchange until release is closed.
type blockingExchanger struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
	result  credentials.Credentials
	err     error
}

func newBlockingExchanger(result credentials.Credentials, err error) *blockingExchanger {
	return &blockingExchanger{
		entered: make(chan struct{}, 16),
		release: make(chan struct{}),
		result:  result,
		err:     err,
	}
}

func (e *blockingExchanger) Exchange(ctx context.Context, refreshToken string) (credentials.Credentials, error) {
	e.calls.Add(1)
	e.entered <- struct{}{}
	select {
	case <-e.release:
	case <-ctx.Done():
		return credentials.Credentials{}, ctx.Err()
	}
	return e.result, e.err
}

type testFixture struct {
	store    *credentials.Store
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

func newTestFixture(t *testing.T, seeded bool) *testFixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	f := &testFixture{
		store:    credentials.NewStore(storage.NewMemory()),
		registry: reg,
		metrics:  metrics.New(metrics.WithRegistry(reg)),
	}
	if seeded {
		require.NoError(t, f.store.Save(context.Background(), credentialsFor("1")))
	}
	return f
}

func credentialsFor(gen string) credentials.Credentials {
	return credentials.Credentials{
		AccessToken:  "access-" + gen,
		RefreshToken: "refresh-" + gen,
		User:         credentials.UserProfile{ID: "u-1", Email: "c@far7tna.test", Role: credentials.RoleCustomer},
	}
}

func runConcurrent(n int, coord *refresh.Coordinator, exchanger *blockingExchanger) []string {
	var (
		ready   sync.WaitGroup
		done    sync.WaitGroup
		results = make([]string, n)
	)
	ready.Add(n)
	done.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer done.Done()
			ready.Done()
			results[i], _ = coord.Refresh(context.Background())
		}(i)
	}
	ready.Wait()
	<-exchanger.entered
	time.Sleep(50 * time.Millisecond)
	close(exchanger.release)
	done.Wait()
	return results
}

func TestConcurrentRefreshSharesOneExchange(t *testing.T) {
	f := newTestFixture(t, true)
	exchanger := newBlockingExchanger(credentialsFor("2"), nil)
	coord := refresh.NewCoordinator(f.store, exchanger, refresh.WithMetrics(f.metrics))

	results := runConcurrent(8, coord, exchanger)

	require.EqualValues(t, 1, exchanger.calls.Load())
	for _, token := range results {
		require.Equal(t, "access-2", token)
	}
	require.Equal(t, "access-2", f.store.AccessToken(context.Background()))
	require.Equal(t, "refresh-2", f.store.RefreshToken(context.Background()))
}

func TestFailedRefreshClearsCredentials(t *testing.T) {
	f := newTestFixture(t, true)
	exchanger := newBlockingExchanger(credentials.Credentials{}, errors.New("refresh token rejected"))
	coord := refresh.NewCoordinator(f.store, exchanger)

	results := runConcurrent(4, coord, exchanger)

	require.EqualValues(t, 1, exchanger.calls.Load())
	for _, token := range results {
		require.Empty(t, token)
	}
	require.False(t, f.store.IsAuthenticated(context.Background()))
	require.Empty(t, f.store.RefreshToken(context.Background()))
	require.Nil(t, f.store.CurrentUser(context.Background()))
}

func TestRefreshWithoutStoredToken(t *testing.T) {
	f := newTestFixture(t, false)
	var calls atomic.Int32
	coord := refresh.NewCoordinator(f.store, refresh.ExchangerFunc(
		func(context.Context, string) (credentials.Credentials, error) {
			calls.Add(1)
			return credentialsFor("2"), nil
		}))

	token, err := coord.Refresh(context.Background())
	require.NoError(t, err)
	require.Empty(t, token)
	require.Zero(t, calls.Load())
}

func TestRefreshSlotIsReleased(t *testing.T) {
	f := newTestFixture(t, true)
	var calls atomic.Int32
	coord := refresh.NewCoordinator(f.store, refresh.ExchangerFunc(
		func(_ context.Context, refreshToken string) (credentials.Credentials, error) {
			n := calls.Add(1)
			return credentialsFor(string(rune('1' + n))), nil
		}))

	first, err := coord.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, "access-2", first)

	second, err := coord.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, "access-3", second)
	require.EqualValues(t, 2, calls.Load())
}

func TestIncompleteExchangeResultClearsCredentials(t *testing.T) {
	f := newTestFixture(t, true)
	coord := refresh.NewCoordinator(f.store, refresh.ExchangerFunc(
		func(context.Context, string) (credentials.Credentials, error) {
			return credentials.Credentials{AccessToken: "only-access"}, nil
		}))

	token, err := coord.Refresh(context.Background())
	require.NoError(t, err)
	require.Empty(t, token)
	require.False(t, f.store.IsAuthenticated(context.Background()))
}

func TestExchangeTimeout(t *testing.T) {
	f := newTestFixture(t, true)
	exchanger := newBlockingExchanger(credentialsFor("2"), nil)
	coord := refresh.NewCoordinator(f.store, exchanger, refresh.WithTimeout(30*time.Millisecond))

	token, err := coord.Refresh(context.Background())
	require.NoError(t, err)
	require.Empty(t, token)
	require.False(t, f.store.IsAuthenticated(context.Background()))
}

func TestCallerCancellationDoesNotAbortExchange(t *testing.T) {
	f := newTestFixture(t, true)
	exchanger := newBlockingExchanger(credentialsFor("2"), nil)
	coord := refresh.NewCoordinator(f.store, exchanger)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := coord.Refresh(ctx)
		errCh <- err
	}()

	<-exchanger.entered
	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)

	joined := make(chan string, 1)
	go func() {
		token, _ := coord.Refresh(context.Background())
		joined <- token
	}()
	time.Sleep(20 * time.Millisecond)
	close(exchanger.release)

	require.Equal(t, "access-2", <-joined)
	require.EqualValues(t, 1, exchanger.calls.Load())
	require.Equal(t, "access-2", f.store.AccessToken(context.Background()))
}
