package session

import (
	"context"
	"sync"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/far7tna/portal/credentials"
)

// LoginPath is where a logged out user is sent.
const LoginPath = "/login"

const (
	snapshotTopic = "session:snapshot"
	logoutTopic   = "session:logout"
)

// LogoutEvent asks navigation listeners to leave the current page.
type LogoutEvent struct {
	RedirectTo string
}

// Context exposes the current session and keeps it in step with the credential store.
// Every store mutation, including those made by a token refresh, produces a new
// snapshot for subscribers. One store should back at most one Context.
type Context struct {
	store       *credentials.Store
	bus         EventBus.Bus
	unsubscribe func()

	lock sync.RWMutex
	snap Snapshot
}

// New returns a Context in the loading state. Call Load to read the store.
func New(store *credentials.Store) (*Context, error) {
	c := &Context{
		store: store,
		bus:   EventBus.New(),
		snap:  Snapshot{Loading: true},
	}
	unsubscribe, err := store.Subscribe(c.onStoreChange)
	if err != nil {
		return nil, err
	}
	c.unsubscribe = unsubscribe
	return c, nil
}

// Open is New followed by Load.
func Open(ctx context.Context, store *credentials.Store) (*Context, error) {
	c, err := New(store)
	if err != nil {
		return nil, err
	}
	c.Load(ctx)
	return c, nil
}

// Load reads the store and publishes the resulting snapshot.
func (c *Context) Load(ctx context.Context) Snapshot {
	return c.set(c.read(ctx))
}

func (c *Context) Current() Snapshot {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.snap
}

// Login persists creds; the snapshot follows from the resulting store change.
func (c *Context) Login(ctx context.Context, creds credentials.Credentials) error {
	if err := c.store.Save(ctx, creds); err != nil {
		return errors.Wrap(err, "login")
	}
	log.Info().Str("user", creds.User.Email).Str("role", creds.User.Role.String()).Msg("logged in")
	return nil
}

// Logout clears the credentials and tells navigation listeners to go to the login page.
// The session is unauthenticated afterwards even when clearing the store failed.
func (c *Context) Logout(ctx context.Context) error {
	err := c.store.Clear(ctx)
	if err != nil {
		log.Err(err).Msg("clearing credentials on logout")
		c.set(Snapshot{})
	}
	c.bus.Publish(logoutTopic, LogoutEvent{RedirectTo: LoginPath})
	return err
}

// Subscribe calls fn with every new snapshot. fn must not subscribe from inside the
// callback. The returned func removes fn.
func (c *Context) Subscribe(fn func(Snapshot)) (func(), error) {
	if err := c.bus.Subscribe(snapshotTopic, fn); err != nil {
		return nil, errors.Wrap(err, "subscribe to session")
	}
	return func() { _ = c.bus.Unsubscribe(snapshotTopic, fn) }, nil
}

// OnLogout calls fn after every logout.
func (c *Context) OnLogout(fn func(LogoutEvent)) (func(), error) {
	if err := c.bus.Subscribe(logoutTopic, fn); err != nil {
		return nil, errors.Wrap(err, "subscribe to logout")
	}
	return func() { _ = c.bus.Unsubscribe(logoutTopic, fn) }, nil
}

// Close stops following the store.
func (c *Context) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

func (c *Context) onStoreChange(credentials.ChangeEvent) {
	c.set(c.read(context.Background()))
}

func (c *Context) read(ctx context.Context) Snapshot {
	if !c.store.IsAuthenticated(ctx) {
		return Snapshot{}
	}
	return snapshotOf(c.store.CurrentUser(ctx))
}

func (c *Context) set(snap Snapshot) Snapshot {
	c.lock.Lock()
	c.snap = snap
	c.lock.Unlock()

	c.bus.Publish(snapshotTopic, snap)
	return snap
}
