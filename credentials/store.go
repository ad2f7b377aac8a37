package credentials

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	apperrors "github.com/far7tna/portal/internal/errors"
	"github.com/far7tna/portal/storage"
)

// Storage keys. They match the names the web client uses so a shared store stays readable.
const (
	AccessTokenKey  = "far7tna_access_token"
	RefreshTokenKey = "far7tna_refresh_token"
	UserKey         = "far7tna_user"
)

var allKeys = []string{AccessTokenKey, RefreshTokenKey, UserKey}

// Store is the single source of truth for the session credentials.
type Store struct {
	backend storage.Backend
	bus     EventBus.Bus
	lock    sync.RWMutex
}

func NewStore(backend storage.Backend) *Store {
	return &Store{
		backend: backend,
		bus:     EventBus.New(),
	}
}

// Save replaces the stored credentials. Partial records are rejected.
func (s *Store) Save(ctx context.Context, creds Credentials) error {
	if !creds.Complete() {
		return apperrors.ErrIncompleteCredentials
	}

	user, err := json.Marshal(creds.User)
	if err != nil {
		return errors.Wrap(err, "encode user profile")
	}

	s.lock.Lock()
	err = s.backend.SetMany(ctx, map[string]string{
		AccessTokenKey:  creds.AccessToken,
		RefreshTokenKey: creds.RefreshToken,
		UserKey:         string(user),
	})
	s.lock.Unlock()
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrStorage, "save credentials: %v", err)
	}

	profile := creds.User
	s.bus.Publish(ChangeTopic, ChangeEvent{Kind: ChangeSaved, User: &profile})
	return nil
}

// Clear removes every credential entry.
func (s *Store) Clear(ctx context.Context) error {
	s.lock.Lock()
	err := s.backend.Delete(ctx, allKeys...)
	s.lock.Unlock()
	if err != nil {
		return apperrors.Wrapf(apperrors.ErrStorage, "clear credentials: %v", err)
	}

	s.bus.Publish(ChangeTopic, ChangeEvent{Kind: ChangeCleared})
	return nil
}

func (s *Store) AccessToken(ctx context.Context) string {
	return s.get(ctx, AccessTokenKey)
}

func (s *Store) RefreshToken(ctx context.Context) string {
	return s.get(ctx, RefreshTokenKey)
}

// CurrentUser returns nil when no user is stored or the stored record is unreadable.
func (s *Store) CurrentUser(ctx context.Context) *UserProfile {
	raw := s.get(ctx, UserKey)
	if raw == "" {
		return nil
	}
	var user UserProfile
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		log.Warn().Err(err).Msg("stored user profile is corrupt, treating as absent")
		return nil
	}
	return &user
}

// IsAuthenticated is a presence check. Token expiry is left to the server.
func (s *Store) IsAuthenticated(ctx context.Context) bool {
	return s.AccessToken(ctx) != ""
}

// Load reads the full record under one lock. ok is false unless every part is present.
func (s *Store) Load(ctx context.Context) (Credentials, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	var creds Credentials
	creds.AccessToken = s.read(ctx, AccessTokenKey)
	creds.RefreshToken = s.read(ctx, RefreshTokenKey)
	raw := s.read(ctx, UserKey)
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &creds.User); err != nil {
			log.Warn().Err(err).Msg("stored user profile is corrupt, treating as absent")
			creds.User = UserProfile{}
		}
	}
	return creds, creds.Complete()
}

// Subscribe registers fn for every change event. fn runs on the goroutine that made the
// change and must not subscribe or unsubscribe from inside the callback.
func (s *Store) Subscribe(fn func(ChangeEvent)) (unsubscribe func(), err error) {
	if err := s.bus.Subscribe(ChangeTopic, fn); err != nil {
		return nil, errors.Wrap(err, "subscribe to credential changes")
	}
	return func() {
		_ = s.bus.Unsubscribe(ChangeTopic, fn)
	}, nil
}

func (s *Store) get(ctx context.Context, key string) string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.read(ctx, key)
}

func (s *Store) read(ctx context.Context, key string) string {
	v, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		log.Err(err).Str("key", key).Msg("reading credential store")
		return ""
	}
	if !ok {
		return ""
	}
	return v
}
