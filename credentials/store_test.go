package credentials_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/far7tna/portal/credentials"
	apperrors "github.com/far7tna/portal/internal/errors"
	"github.com/far7tna/portal/storage"
)

type testFixture struct {
	backend *storage.Memory
	store   *credentials.Store
}

func newTestFixture() *testFixture {
	backend := storage.NewMemory()
	return &testFixture{
		backend: backend,
		store:   credentials.NewStore(backend),
	}
}

func vendorCredentials() credentials.Credentials {
	return credentials.Credentials{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		User: credentials.UserProfile{
			ID:       "u-1",
			FullName: "Vera Vendor",
			Email:    "vera@far7tna.test",
			Role:     credentials.RoleVendor,
		},
	}
}

// failingBackend errors on every call.
type failingBackend struct{}

func (failingBackend) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("backend down")
}
func (failingBackend) SetMany(context.Context, map[string]string) error { return errors.New("backend down") }
func (failingBackend) Delete(context.Context, ...string) error          { return errors.New("backend down") }
func (failingBackend) Close() error                                     { return nil }

func TestStoreSaveAndRead(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()

	require.False(t, f.store.IsAuthenticated(ctx))
	require.Nil(t, f.store.CurrentUser(ctx))

	creds := vendorCredentials()
	require.NoError(t, f.store.Save(ctx, creds))

	require.True(t, f.store.IsAuthenticated(ctx))
	require.Equal(t, "access-1", f.store.AccessToken(ctx))
	require.Equal(t, "refresh-1", f.store.RefreshToken(ctx))
	require.Equal(t, &creds.User, f.store.CurrentUser(ctx))

	loaded, ok := f.store.Load(ctx)
	require.True(t, ok)
	require.Equal(t, creds, loaded)
}

func TestStoreClear(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()
	require.NoError(t, f.store.Save(ctx, vendorCredentials()))

	require.NoError(t, f.store.Clear(ctx))

	require.False(t, f.store.IsAuthenticated(ctx))
	require.Empty(t, f.store.AccessToken(ctx))
	require.Empty(t, f.store.RefreshToken(ctx))
	require.Nil(t, f.store.CurrentUser(ctx))
	require.Zero(t, f.backend.Len())

	_, ok := f.store.Load(ctx)
	require.False(t, ok)
}

func TestStoreRejectsPartialCredentials(t *testing.T) {
	ctx := context.Background()

	tests := map[string]func(c *credentials.Credentials){
		"missing access token":  func(c *credentials.Credentials) { c.AccessToken = "" },
		"missing refresh token": func(c *credentials.Credentials) { c.RefreshToken = "" },
		"missing user":          func(c *credentials.Credentials) { c.User = credentials.UserProfile{} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			f := newTestFixture()
			creds := vendorCredentials()
			mutate(&creds)

			err := f.store.Save(ctx, creds)
			require.ErrorIs(t, err, apperrors.ErrIncompleteCredentials)
			require.Zero(t, f.backend.Len())
		})
	}
}

func TestStoreCorruptUserIsAbsent(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()
	require.NoError(t, f.backend.SetMany(ctx, map[string]string{
		credentials.AccessTokenKey:  "a",
		credentials.RefreshTokenKey: "r",
		credentials.UserKey:         "{not-json",
	}))

	require.Nil(t, f.store.CurrentUser(ctx))
	require.True(t, f.store.IsAuthenticated(ctx))
}

func TestStoreBackendFailures(t *testing.T) {
	ctx := context.Background()
	store := credentials.NewStore(failingBackend{})

	require.Empty(t, store.AccessToken(ctx))
	require.Nil(t, store.CurrentUser(ctx))
	require.ErrorIs(t, store.Save(ctx, vendorCredentials()), apperrors.ErrStorage)
	require.ErrorIs(t, store.Clear(ctx), apperrors.ErrStorage)
}

func TestStoreSubscribe(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()

	var (
		mu     sync.Mutex
		events []credentials.ChangeEvent
	)
	unsubscribe, err := f.store.Subscribe(func(e credentials.ChangeEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	})
	require.NoError(t, err)

	require.NoError(t, f.store.Save(ctx, vendorCredentials()))
	require.NoError(t, f.store.Clear(ctx))

	mu.Lock()
	require.Len(t, events, 2)
	require.Equal(t, credentials.ChangeSaved, events[0].Kind)
	require.Equal(t, "u-1", events[0].User.ID)
	require.Equal(t, credentials.ChangeCleared, events[1].Kind)
	require.Nil(t, events[1].User)
	mu.Unlock()

	unsubscribe()
	require.NoError(t, f.store.Save(ctx, vendorCredentials()))

	mu.Lock()
	require.Len(t, events, 2)
	mu.Unlock()
}

func TestStoreConcurrentReadersSeeWholeRecords(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()
	require.NoError(t, f.store.Save(ctx, vendorCredentials()))

	var wg sync.WaitGroup
	stop := make(chan struct{})
	torn := make(chan credentials.Credentials, 1)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				creds, ok := f.store.Load(ctx)
				if ok && creds.AccessToken[len("access-"):] != creds.RefreshToken[len("refresh-"):] {
					select {
					case torn <- creds:
					default:
					}
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		creds := vendorCredentials()
		if i%2 == 0 {
			creds.AccessToken, creds.RefreshToken = "access-2", "refresh-2"
		}
		require.NoError(t, f.store.Save(ctx, creds))
	}
	close(stop)
	wg.Wait()

	select {
	case c := <-torn:
		t.Fatalf("observed mixed credentials %+v", c)
	default:
	}
}

func TestStoreTokenSource(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture()

	_, err := f.store.TokenSource(ctx).Token()
	require.ErrorIs(t, err, apperrors.ErrUnauthorized)

	require.NoError(t, f.store.Save(ctx, vendorCredentials()))
	tok, err := f.store.TokenSource(ctx).Token()
	require.NoError(t, err)
	require.Equal(t, "access-1", tok.AccessToken)
	require.Equal(t, "Bearer", tok.Type())
}
