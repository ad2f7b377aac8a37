package apitest

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/far7tna/portal/credentials"
)

// Seeded accounts. All of them use DefaultPassword.
const (
	AdminEmail      = "admin@far7tna.test"
	VendorEmail     = "vendor@far7tna.test"
	CustomerEmail   = "customer@far7tna.test"
	DefaultPassword = "Passw0rd!"
)

type user struct {
	profile      credentials.UserProfile
	passwordHash string
}

// userRepo is keyed by lower-cased email.
type userRepo struct {
	users map[string]*user
	lock  sync.RWMutex
}

func newUserRepo() *userRepo {
	return &userRepo{users: make(map[string]*user)}
}

func (r *userRepo) add(email, password, fullName string, role credentials.Role) (credentials.UserProfile, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return credentials.UserProfile{}, err
	}
	u := &user{
		profile: credentials.UserProfile{
			ID:       uuid.NewString(),
			FullName: fullName,
			Email:    email,
			Role:     role,
		},
		passwordHash: string(hash),
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	r.users[strings.ToLower(email)] = u
	return u.profile, nil
}

// authenticate returns the profile when the password matches the stored hash.
func (r *userRepo) authenticate(email, password string) (credentials.UserProfile, bool) {
	r.lock.RLock()
	u, ok := r.users[strings.ToLower(email)]
	r.lock.RUnlock()
	if !ok {
		return credentials.UserProfile{}, false
	}
	if bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)) != nil {
		return credentials.UserProfile{}, false
	}
	return u.profile, true
}

func (r *userRepo) byID(id string) (credentials.UserProfile, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	for _, u := range r.users {
		if u.profile.ID == id {
			return u.profile, true
		}
	}
	return credentials.UserProfile{}, false
}
