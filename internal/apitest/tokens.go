package apitest

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/far7tna/portal/credentials"
)

// tokenIssuer signs HS256 access tokens and keeps one rotating refresh token per user.
type tokenIssuer struct {
	key       []byte
	accessTTL time.Duration

	lock     sync.Mutex
	live     map[string]string // access token jti to user ID
	refresh  map[string]string // refresh token to user ID
	byUserID map[string]string // user ID to refresh token
}

func newTokenIssuer(key []byte, accessTTL time.Duration) *tokenIssuer {
	return &tokenIssuer{
		key:       key,
		accessTTL: accessTTL,
		live:      make(map[string]string),
		refresh:   make(map[string]string),
		byUserID:  make(map[string]string),
	}
}

// issue creates an access token and replaces the user's refresh token.
func (ti *tokenIssuer) issue(profile credentials.UserProfile) (credentials.Credentials, error) {
	now := time.Now()
	jti := uuid.NewString()
	claims := jwtlib.MapClaims{
		"sub":   profile.ID,
		"email": profile.Email,
		"role":  string(profile.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(ti.accessTTL).Unix(),
		"jti":   jti,
	}
	access, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(ti.key)
	if err != nil {
		return credentials.Credentials{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return credentials.Credentials{}, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	refreshToken := hex.EncodeToString(tokenBytes)

	ti.lock.Lock()
	defer ti.lock.Unlock()
	if existing, ok := ti.byUserID[profile.ID]; ok {
		delete(ti.refresh, existing)
	}
	ti.refresh[refreshToken] = profile.ID
	ti.byUserID[profile.ID] = refreshToken
	ti.live[jti] = profile.ID

	return credentials.Credentials{
		AccessToken:  access,
		RefreshToken: refreshToken,
		User:         profile,
	}, nil
}

// redeem consumes a refresh token and returns its user ID.
func (ti *tokenIssuer) redeem(refreshToken string) (string, bool) {
	ti.lock.Lock()
	defer ti.lock.Unlock()
	userID, ok := ti.refresh[refreshToken]
	if !ok {
		return "", false
	}
	delete(ti.refresh, refreshToken)
	delete(ti.byUserID, userID)
	return userID, true
}

type accessClaims struct {
	Role string `json:"role"`
	jwtlib.RegisteredClaims
}

// verify checks signature, expiry and that the token has not been expired early.
func (ti *tokenIssuer) verify(raw string) (*accessClaims, bool) {
	var claims accessClaims
	token, err := jwtlib.ParseWithClaims(raw, &claims, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ti.key, nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	ti.lock.Lock()
	defer ti.lock.Unlock()
	if _, ok := ti.live[claims.ID]; !ok {
		return nil, false
	}
	return &claims, true
}

func (ti *tokenIssuer) expireAccess() {
	ti.lock.Lock()
	defer ti.lock.Unlock()
	ti.live = make(map[string]string)
}

func (ti *tokenIssuer) revokeRefresh() {
	ti.lock.Lock()
	defer ti.lock.Unlock()
	ti.refresh = make(map[string]string)
	ti.byUserID = make(map[string]string)
}
