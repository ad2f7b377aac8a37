package session_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/far7tna/portal/credentials"
	"github.com/far7tna/portal/refresh"
	"github.com/far7tna/portal/session"
	"github.com/far7tna/portal/storage"
)

type testFixture struct {
	store   *credentials.Store
	session *session.Context
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()
	store := credentials.NewStore(storage.NewMemory())
	sess, err := session.Open(context.Background(), store)
	require.NoError(t, err)
	t.Cleanup(sess.Close)
	return &testFixture{store: store, session: sess}
}

func credentialsAs(role credentials.Role) credentials.Credentials {
	return credentials.Credentials{
		AccessToken:  "access",
		RefreshToken: "refresh",
		User:         credentials.UserProfile{ID: "u-1", FullName: "Sam", Email: "sam@far7tna.test", Role: role},
	}
}

// recorder collects snapshots delivered to a subscriber.
type recorder struct {
	mu    sync.Mutex
	snaps []session.Snapshot
}

func (r *recorder) record(s session.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, s)
}

func (r *recorder) last() session.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snaps[len(r.snaps)-1]
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snaps)
}

func TestNewSessionIsLoadingUntilLoaded(t *testing.T) {
	store := credentials.NewStore(storage.NewMemory())
	require.NoError(t, store.Save(context.Background(), credentialsAs(credentials.RoleAdmin)))

	sess, err := session.New(store)
	require.NoError(t, err)
	defer sess.Close()
	require.True(t, sess.Current().Loading)
	require.False(t, sess.Current().IsAuthenticated)

	snap := sess.Load(context.Background())
	require.False(t, snap.Loading)
	require.True(t, snap.IsAuthenticated)
	require.Equal(t, []credentials.Role{credentials.RoleAdmin}, snap.Roles)
}

func TestLoginAndLogout(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture(t)
	require.False(t, f.session.Current().IsAuthenticated)

	rec := &recorder{}
	unsubscribe, err := f.session.Subscribe(rec.record)
	require.NoError(t, err)
	defer unsubscribe()

	var logouts []session.LogoutEvent
	stopLogout, err := f.session.OnLogout(func(e session.LogoutEvent) { logouts = append(logouts, e) })
	require.NoError(t, err)
	defer stopLogout()

	require.NoError(t, f.session.Login(ctx, credentialsAs(credentials.RoleVendor)))
	snap := f.session.Current()
	require.True(t, snap.IsAuthenticated)
	require.Equal(t, "sam@far7tna.test", snap.User.Email)
	require.True(t, snap.HasRole(credentials.RoleVendor))
	require.False(t, snap.HasRole(credentials.RoleAdmin))
	require.True(t, rec.last().IsAuthenticated)

	require.NoError(t, f.session.Logout(ctx))
	snap = f.session.Current()
	require.False(t, snap.IsAuthenticated)
	require.Nil(t, snap.User)
	require.Empty(t, snap.Roles)
	require.False(t, rec.last().IsAuthenticated)
	require.Equal(t, []session.LogoutEvent{{RedirectTo: "/login"}}, logouts)
	require.False(t, f.store.IsAuthenticated(ctx))
}

func TestSnapshotFollowsRefreshFailure(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture(t)
	require.NoError(t, f.session.Login(ctx, credentialsAs(credentials.RoleCustomer)))

	rec := &recorder{}
	unsubscribe, err := f.session.Subscribe(rec.record)
	require.NoError(t, err)
	defer unsubscribe()

	coord := refresh.NewCoordinator(f.store, refresh.ExchangerFunc(
		func(context.Context, string) (credentials.Credentials, error) {
			return credentials.Credentials{}, context.DeadlineExceeded
		}))
	token, err := coord.Refresh(ctx)
	require.NoError(t, err)
	require.Empty(t, token)

	require.Equal(t, 1, rec.len())
	require.False(t, rec.last().IsAuthenticated)
	require.False(t, f.session.Current().IsAuthenticated)
}

func TestSnapshotFollowsRefreshSuccess(t *testing.T) {
	ctx := context.Background()
	f := newTestFixture(t)
	require.NoError(t, f.session.Login(ctx, credentialsAs(credentials.RoleCustomer)))

	coord := refresh.NewCoordinator(f.store, refresh.ExchangerFunc(
		func(context.Context, string) (credentials.Credentials, error) {
			creds := credentialsAs(credentials.RoleCustomer)
			creds.AccessToken = "access-2"
			creds.User.FullName = "Sam Renamed"
			return creds, nil
		}))
	token, err := coord.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, "access-2", token)
	require.Equal(t, "Sam Renamed", f.session.Current().User.FullName)
}

func TestCorruptStoredUserIsUnauthenticated(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	require.NoError(t, backend.SetMany(ctx, map[string]string{
		credentials.AccessTokenKey:  "a",
		credentials.RefreshTokenKey: "r",
		credentials.UserKey:         "not json",
	}))

	sess, err := session.Open(ctx, credentials.NewStore(backend))
	require.NoError(t, err)
	defer sess.Close()
	require.False(t, sess.Current().IsAuthenticated)
	require.Nil(t, sess.Current().User)
}

func TestLandingPath(t *testing.T) {
	require.Equal(t, "/admin/dashboard", session.LandingPath(credentials.RoleAdmin))
	require.Equal(t, "/admin/dashboard", session.LandingPath("admin"))
	require.Equal(t, "/vendor/dashboard", session.LandingPath(credentials.RoleVendor))
	require.Equal(t, "/customer/dashboard", session.LandingPath(credentials.RoleCustomer))
	require.Equal(t, "/customer/dashboard", session.LandingPath(""))
}
