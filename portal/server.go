package portal

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/far7tna/portal/apiclient"
	"github.com/far7tna/portal/credentials"
	"github.com/far7tna/portal/guard"
	"github.com/far7tna/portal/internal/config"
	"github.com/far7tna/portal/metrics"
	"github.com/far7tna/portal/session"
)

const contentTypeHTML = "text/html; charset=utf-8"

type Config interface {
	config.EnvConfig
	config.PortalConfig
}

// Authenticator performs the password login. *apiclient.AuthAPI satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (credentials.Credentials, error)
}

// Deps are the collaborators a Server renders from.
type Deps struct {
	Session  *session.Context
	Auth     Authenticator
	API      *apiclient.Client
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// Server is the role based web portal. It holds one local session backed by the
// credential store, so every browser sees the same signed in user.
type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	router   chi.Router
	config   Config
	session  *session.Context
	auth     Authenticator
	api      *apiclient.Client
	guard    guard.Guard
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer

	errorPage   *template.Template
	unsubscribe []func()
}

func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Session == nil || deps.Auth == nil || deps.API == nil {
		return nil, fmt.Errorf("[portal New] session, auth and api are required")
	}

	s := &Server{
		env:      cfg.GetEnv(),
		router:   chi.NewRouter(),
		config:   cfg,
		session:  deps.Session,
		auth:     deps.Auth,
		api:      deps.API,
		guard:    guard.Guard{Source: deps.Session, Metrics: deps.Metrics},
		metrics:  deps.Metrics,
		gatherer: deps.Gatherer,
	}
	s.errorPage = mustParseTemplate("error.html")

	if err := s.followSession(); err != nil {
		return nil, fmt.Errorf("[portal New] %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close detaches the server from the session.
func (s *Server) Close() {
	for _, unsubscribe := range s.unsubscribe {
		unsubscribe()
	}
	s.unsubscribe = nil
}

func (s *Server) followSession() error {
	unsubscribe, err := s.session.Subscribe(func(snap session.Snapshot) {
		if snap.Loading {
			return
		}
		if !snap.IsAuthenticated {
			log.Debug().Msg("session signed out")
			return
		}
		log.Debug().Str("user", snap.User.Email).Str("role", snap.Role().String()).Msg("session updated")
	})
	if err != nil {
		return err
	}
	s.unsubscribe = append(s.unsubscribe, unsubscribe)

	unsubscribe, err = s.session.OnLogout(func(e session.LogoutEvent) {
		log.Info().Str("redirect", e.RedirectTo).Msg("logged out")
	})
	if err != nil {
		s.Close()
		return err
	}
	s.unsubscribe = append(s.unsubscribe, unsubscribe)
	return nil
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	_ = chi.Walk(s.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		logRoute(method, strings.TrimSuffix(route, "/*"))
		return nil
	})
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}
