package apiclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/far7tna/portal/apiclient"
	"github.com/far7tna/portal/credentials"
	"github.com/far7tna/portal/internal/apitest"
	apperrors "github.com/far7tna/portal/internal/errors"
	"github.com/far7tna/portal/metrics"
	"github.com/far7tna/portal/refresh"
	"github.com/far7tna/portal/storage"
)

type testFixture struct {
	api    *apitest.Server
	store  *credentials.Store
	coord  *refresh.Coordinator
	auth   *apiclient.AuthAPI
	client *apiclient.Client
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()
	api := apitest.New(t)
	store := credentials.NewStore(storage.NewMemory())
	auth := apiclient.NewAuthAPI(api.URL, api.Client())
	m := metrics.New(metrics.WithRegistry(prometheus.NewRegistry()))
	coord := refresh.NewCoordinator(store, auth, refresh.WithMetrics(m))

	return &testFixture{
		api:    api,
		store:  store,
		coord:  coord,
		auth:   auth,
		client: apiclient.NewClient(api.URL, apiclient.NewHTTPClient(store, coord, 5*time.Second, m)),
	}
}

func (f *testFixture) login(t *testing.T, email string) credentials.Credentials {
	t.Helper()
	creds, err := f.auth.Login(context.Background(), email, apitest.DefaultPassword)
	require.NoError(t, err)
	require.NoError(t, f.store.Save(context.Background(), creds))
	return creds
}

// stubRefresher counts calls and returns a fixed token.
type stubRefresher struct {
	calls atomic.Int32
	token string
}

func (s *stubRefresher) Refresh(context.Context) (string, error) {
	s.calls.Add(1)
	return s.token, nil
}

func TestTransportAttachesBearerAndRequestID(t *testing.T) {
	f := newTestFixture(t)
	creds := f.login(t, apitest.AdminEmail)

	_, err := f.client.Resources(apiclient.ScopeAdmin).Categories.List(context.Background(), apiclient.Query{})
	require.NoError(t, err)

	reqs := f.api.RequestsTo(http.MethodGet, "/api/admin/categories")
	require.Len(t, reqs, 1)
	require.Equal(t, "Bearer "+creds.AccessToken, reqs[0].Authorization)
	require.NotEmpty(t, reqs[0].RequestID)
}

func TestTransportWithoutTokenSendsNoHeader(t *testing.T) {
	f := newTestFixture(t)

	_, err := f.client.Catalogue().List(context.Background(), apiclient.Query{})
	require.NoError(t, err)

	reqs := f.api.RequestsTo(http.MethodGet, "/api/services")
	require.Len(t, reqs, 1)
	require.Empty(t, reqs[0].Authorization)
}

func TestTransportRefreshesAndRetriesOnce(t *testing.T) {
	f := newTestFixture(t)
	old := f.login(t, apitest.AdminEmail)
	f.api.ExpireAccessTokens()

	_, err := f.client.Resources(apiclient.ScopeAdmin).Categories.List(context.Background(), apiclient.Query{})
	require.NoError(t, err)

	require.Equal(t, 1, f.api.RefreshCalls())
	reqs := f.api.RequestsTo(http.MethodGet, "/api/admin/categories")
	require.Len(t, reqs, 2)
	require.Equal(t, "Bearer "+old.AccessToken, reqs[0].Authorization)
	require.Equal(t, "Bearer "+f.store.AccessToken(context.Background()), reqs[1].Authorization)
	require.NotEqual(t, reqs[0].Authorization, reqs[1].Authorization)
	require.Equal(t, reqs[0].RequestID, reqs[1].RequestID)
}

func TestTransportConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	f := newTestFixture(t)
	f.login(t, apitest.AdminEmail)
	f.api.ExpireAccessTokens()
	f.api.SetRefreshDelay(150 * time.Millisecond)

	categories := f.client.Resources(apiclient.ScopeAdmin).Categories
	services := f.client.Resources(apiclient.ScopeAdmin).Services

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = categories.List(context.Background(), apiclient.Query{})
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = services.List(context.Background(), apiclient.Query{})
	}()
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.Equal(t, 1, f.api.RefreshCalls())

	token := "Bearer " + f.store.AccessToken(context.Background())
	for _, path := range []string{"/api/admin/categories", "/api/admin/services"} {
		reqs := f.api.RequestsTo(http.MethodGet, path)
		require.Len(t, reqs, 2, path)
		require.Equal(t, token, reqs[1].Authorization, path)
	}
}

func TestTransportRejectedRefreshSurfacesUnauthorized(t *testing.T) {
	f := newTestFixture(t)
	f.login(t, apitest.AdminEmail)
	f.api.ExpireAccessTokens()
	f.api.RejectRefresh(true)

	_, err := f.client.Resources(apiclient.ScopeAdmin).Categories.List(context.Background(), apiclient.Query{})
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	require.True(t, apiclient.IsStatus(err, http.StatusUnauthorized))

	require.False(t, f.store.IsAuthenticated(context.Background()))
	require.Nil(t, f.store.CurrentUser(context.Background()))
	require.Len(t, f.api.RequestsTo(http.MethodGet, "/api/admin/categories"), 1)
}

func TestTransportReplaysBodyOnRetry(t *testing.T) {
	f := newTestFixture(t)
	f.login(t, apitest.AdminEmail)
	f.api.ExpireAccessTokens()

	categories := f.client.Resources(apiclient.ScopeAdmin).Categories
	created, err := categories.Create(context.Background(), apiclient.Category{Name: "Cleaning", Slug: "cleaning", IsActive: true})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Cleaning", created.Name)

	page, err := categories.List(context.Background(), apiclient.Query{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
}

func TestTransportDoesNotRetryTwice(t *testing.T) {
	var hits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer upstream.Close()

	store := credentials.NewStore(storage.NewMemory())
	refresher := &stubRefresher{token: "fresh"}
	client := apiclient.NewClient(upstream.URL, apiclient.NewHTTPClient(store, refresher, time.Second, nil))

	err := client.Do(context.Background(), http.MethodGet, "/anything", nil, nil, nil)
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	require.EqualValues(t, 2, hits.Load())
	require.EqualValues(t, 1, refresher.calls.Load())
}

func TestTransportPassesThroughOtherFailures(t *testing.T) {
	t.Run("forbidden is not refreshed", func(t *testing.T) {
		f := newTestFixture(t)
		f.login(t, apitest.VendorEmail)

		_, err := f.client.Resources(apiclient.ScopeAdmin).Categories.List(context.Background(), apiclient.Query{})
		require.True(t, apiclient.IsStatus(err, http.StatusForbidden))
		require.Zero(t, f.api.RefreshCalls())
		require.True(t, f.store.IsAuthenticated(context.Background()))
	})

	t.Run("transport errors are returned unchanged", func(t *testing.T) {
		refresher := &stubRefresher{token: "fresh"}
		boom := errors.New("connection refused")
		transport := &apiclient.Transport{
			Base: roundTripFunc(func(*http.Request) (*http.Response, error) {
				return nil, boom
			}),
			Refresher: refresher,
		}
		client := apiclient.NewClient("http://api.invalid", &http.Client{Transport: transport})

		err := client.Do(context.Background(), http.MethodGet, "/x", nil, nil, nil)
		require.ErrorIs(t, err, boom)
		require.Zero(t, refresher.calls.Load())
	})
}

func TestTransportBuffersBodiesWithoutGetBody(t *testing.T) {
	var bodies []string
	var mu sync.Mutex
	var hits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(raw))
		mu.Unlock()
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	transport := &apiclient.Transport{
		Tokens:    credentials.NewStore(storage.NewMemory()),
		Refresher: &stubRefresher{token: "fresh"},
	}
	req, err := http.NewRequest(http.MethodPost, upstream.URL, readerOnly{strings.NewReader(`{"a":1}`)})
	require.NoError(t, err)
	require.Nil(t, req.GetBody)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, []string{`{"a":1}`, `{"a":1}`}, bodies)
}
