// Package apitest runs an in-process fake of the marketplace REST API for tests.
package apitest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/far7tna/portal/credentials"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Request is what the fake API saw of one inbound request.
type Request struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
}

type Server struct {
	*httptest.Server

	users       *userRepo
	tokens      *tokenIssuer
	collections *collections

	refreshDelay  atomic.Int64
	rejectRefresh atomic.Bool

	loginCalls   atomic.Int32
	refreshCalls atomic.Int32

	reqLock  sync.Mutex
	requests []Request
}

type Option func(*options)

type options struct {
	accessTTL  time.Duration
	signingKey []byte
}

func WithAccessTTL(d time.Duration) Option {
	return func(o *options) {
		o.accessTTL = d
	}
}

// New starts the fake API with the seeded admin, vendor and customer accounts. It is
// closed when the test ends.
func New(tb testing.TB, opts ...Option) *Server {
	tb.Helper()

	o := options{
		accessTTL:  15 * time.Minute,
		signingKey: []byte("far7tna-apitest-signing-key"),
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		users:       newUserRepo(),
		tokens:      newTokenIssuer(o.signingKey, o.accessTTL),
		collections: newCollections(),
	}
	for _, seed := range []struct {
		email, name string
		role        credentials.Role
	}{
		{AdminEmail, "Ada Admin", credentials.RoleAdmin},
		{VendorEmail, "Vera Vendor", credentials.RoleVendor},
		{CustomerEmail, "Cal Customer", credentials.RoleCustomer},
	} {
		if _, err := s.users.add(seed.email, DefaultPassword, seed.name, seed.role); err != nil {
			tb.Fatalf("seed user %s: %v", seed.email, err)
		}
	}

	s.Server = httptest.NewServer(s.routes())
	tb.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recordRequest)

	r.Post("/api/auth/login", s.handleLogin)
	r.Post("/api/tokens/refresh", s.handleRefresh)

	r.Get("/api/services", s.handleList("public", "services"))
	r.Get("/api/services/{id}", s.handleGet("public", "services"))

	for _, scope := range []struct {
		name string
		role credentials.Role
	}{
		{"admin", credentials.RoleAdmin},
		{"vendor", credentials.RoleVendor},
		{"customer", credentials.RoleCustomer},
	} {
		r.Route("/api/"+scope.name, func(r chi.Router) {
			r.Use(s.requireBearer(scope.role))
			r.Get("/{collection}", s.handleScopedList(scope.name))
			r.Post("/{collection}", s.handleScopedCreate(scope.name))
			r.Get("/{collection}/{id}", s.handleScopedGet(scope.name))
			r.Put("/{collection}/{id}", s.handleScopedUpdate(scope.name))
			r.Delete("/{collection}/{id}", s.handleScopedDelete(scope.name))
		})
	}
	return r
}

// AddUser registers an extra account.
func (s *Server) AddUser(email, password, fullName string, role credentials.Role) credentials.UserProfile {
	profile, err := s.users.add(email, password, fullName, role)
	if err != nil {
		panic(err)
	}
	return profile
}

// Seed inserts items into a collection. Scope "public" backs /api/services.
func (s *Server) Seed(scope, collection string, items ...any) {
	for _, it := range items {
		doc, err := toItem(it)
		if err != nil {
			panic(err)
		}
		s.collections.insert(collectionKey(scope, collection), doc)
	}
}

// Issue mints credentials for a seeded account without going through login.
func (s *Server) Issue(email string) credentials.Credentials {
	var profile credentials.UserProfile
	s.users.lock.RLock()
	if u, ok := s.users.users[strings.ToLower(email)]; ok {
		profile = u.profile
	}
	s.users.lock.RUnlock()
	creds, err := s.tokens.issue(profile)
	if err != nil {
		panic(err)
	}
	return creds
}

// ExpireAccessTokens makes every access token issued so far fail with 401.
func (s *Server) ExpireAccessTokens() {
	s.tokens.expireAccess()
}

// RevokeRefreshTokens invalidates every outstanding refresh token.
func (s *Server) RevokeRefreshTokens() {
	s.tokens.revokeRefresh()
}

// RejectRefresh makes the refresh endpoint answer 401 regardless of the token.
func (s *Server) RejectRefresh(reject bool) {
	s.rejectRefresh.Store(reject)
}

// SetRefreshDelay holds each refresh response for d.
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.refreshDelay.Store(int64(d))
}

func (s *Server) LoginCalls() int {
	return int(s.loginCalls.Load())
}

func (s *Server) RefreshCalls() int {
	return int(s.refreshCalls.Load())
}

// Requests returns the requests received so far, oldest first.
func (s *Server) Requests() []Request {
	s.reqLock.Lock()
	defer s.reqLock.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsTo filters Requests by method and path.
func (s *Server) RequestsTo(method, path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) recordRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.reqLock.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		s.reqLock.Unlock()
		next.ServeHTTP(w, r)
	})
}

type claimsKey struct{}

func (s *Server) requireBearer(role credentials.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "Missing bearer token.")
				return
			}
			claims, ok := s.tokens.verify(raw)
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "Access token expired or invalid.")
				return
			}
			if credentials.ParseRole(claims.Role) != role {
				writeMessage(w, http.StatusForbidden, "Insufficient role.")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
		})
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.loginCalls.Add(1)

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Malformed login request.")
		return
	}
	profile, ok := s.users.authenticate(req.Email, req.Password)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}
	s.writeCredentials(w, profile)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)
	if d := time.Duration(s.refreshDelay.Load()); d > 0 {
		time.Sleep(d)
	}

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeMessage(w, http.StatusBadRequest, "refreshToken is required.")
		return
	}
	if s.rejectRefresh.Load() {
		writeMessage(w, http.StatusUnauthorized, "Refresh token rejected.")
		return
	}
	userID, ok := s.tokens.redeem(req.RefreshToken)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Refresh token rejected.")
		return
	}
	profile, ok := s.users.byID(userID)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unknown user.")
		return
	}
	s.writeCredentials(w, profile)
}

func (s *Server) writeCredentials(w http.ResponseWriter, profile credentials.UserProfile) {
	creds, err := s.tokens.issue(profile)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, creds)
}

func (s *Server) handleList(scope, collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := make(map[string]string)
		for k := range r.URL.Query() {
			params[k] = r.URL.Query().Get(k)
		}
		writeJSON(w, http.StatusOK, s.collections.list(collectionKey(scope, collection), params))
	}
}

func (s *Server) handleGet(scope, collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		it, ok := s.collections.get(collectionKey(scope, collection), chi.URLParam(r, "id"))
		if !ok {
			writeMessage(w, http.StatusNotFound, "Not found.")
			return
		}
		writeJSON(w, http.StatusOK, it)
	}
}

func (s *Server) handleScopedList(scope string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.handleList(scope, chi.URLParam(r, "collection"))(w, r)
	}
}

func (s *Server) handleScopedGet(scope string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.handleGet(scope, chi.URLParam(r, "collection"))(w, r)
	}
}

func (s *Server) handleScopedCreate(scope string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc item
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil || doc == nil {
			writeMessage(w, http.StatusBadRequest, "Expected a JSON object.")
			return
		}
		delete(doc, "id")
		created := s.collections.insert(collectionKey(scope, chi.URLParam(r, "collection")), doc)
		writeJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) handleScopedUpdate(scope string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc item
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil || doc == nil {
			writeMessage(w, http.StatusBadRequest, "Expected a JSON object.")
			return
		}
		updated, ok := s.collections.update(collectionKey(scope, chi.URLParam(r, "collection")), chi.URLParam(r, "id"), doc)
		if !ok {
			writeMessage(w, http.StatusNotFound, "Not found.")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) handleScopedDelete(scope string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.collections.remove(collectionKey(scope, chi.URLParam(r, "collection")), chi.URLParam(r, "id")) {
			writeMessage(w, http.StatusNotFound, "Not found.")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
