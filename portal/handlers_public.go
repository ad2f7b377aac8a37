package portal

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/far7tna/portal/apiclient"
	"github.com/far7tna/portal/guard"
	apperrors "github.com/far7tna/portal/internal/errors"
	"github.com/far7tna/portal/session"
)

// loginForm preserves the submitted email and the return path on error.
type loginForm struct {
	Email string
	From  string
}

// HomeHandler renders the public service catalogue.
func (s *Server) HomeHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("home.html")
	catalogue := s.api.Catalogue()

	return func(w http.ResponseWriter, r *http.Request) {
		q := queryFrom(r)
		page, err := catalogue.List(r.Context(), q)
		if err != nil {
			s.apiFailure(w, r, publicShell, err)
			return
		}
		view := buildTable(r, q, page,
			func(svc apiclient.Service) string { return "/services/" + svc.ID },
			[]column[apiclient.Service]{
				{"Service", func(svc apiclient.Service) string { return svc.Title }},
				{"Price", func(svc apiclient.Service) string { return money(svc.Price) }},
			})
		s.render(w, r, tmpl, http.StatusOK, pageData{Title: "Services", Shell: publicShell, Content: view})
	}
}

func (s *Server) ServiceDetailsHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("service.html")
	catalogue := s.api.Catalogue()

	return func(w http.ResponseWriter, r *http.Request) {
		svc, err := catalogue.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			s.apiFailure(w, r, publicShell, err)
			return
		}
		s.render(w, r, tmpl, http.StatusOK, pageData{Title: svc.Title, Shell: publicShell, Content: svc})
	}
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, tmpl, http.StatusOK, pageData{
			Title:   "Sign in",
			Shell:   publicShell,
			Content: loginForm{From: guard.LoginRedirectTarget(r)},
		})
	}
}

// LoginSubmissionHandler processes the login form. On success the user goes back to
// the page the Authentication Gate turned them away from, or to their role's landing page.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := loginForm{
			Email: strings.TrimSpace(r.PostFormValue("email")),
			From:  guard.LoginRedirectTarget(r),
		}

		creds, err := s.auth.Login(r.Context(), form.Email, r.PostFormValue("password"))
		if err != nil {
			status, message := http.StatusBadGateway, "The marketplace is not responding. Try again shortly."
			if apperrors.Is(err, apperrors.ErrInvalidCredentials) {
				status, message = http.StatusUnauthorized, userMessage(err)
			} else {
				log.Err(err).Str("email", form.Email).Msg("login failed")
			}
			s.render(w, r, tmpl, status, pageData{Title: "Sign in", Shell: publicShell, Error: message, Content: form})
			return
		}

		if err := s.session.Login(r.Context(), creds); err != nil {
			log.Err(err).Msg("storing credentials")
			s.render(w, r, tmpl, http.StatusInternalServerError, pageData{
				Title:   "Sign in",
				Shell:   publicShell,
				Error:   "Signed in, but the session could not be saved.",
				Content: form,
			})
			return
		}

		target := form.From
		if target == "" {
			target = session.LandingPath(creds.User.Role)
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.session.Logout(r.Context()); err != nil {
			log.Err(err).Msg("logout")
		}
		http.Redirect(w, r, session.LoginPath, http.StatusSeeOther)
	}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("register.html")

	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, tmpl, http.StatusOK, pageData{Title: "Register", Shell: publicShell})
	}
}

// userMessage is the API's explanation of err, fit to show on a page.
func userMessage(err error) string {
	var apiErr *apiclient.APIError
	if apperrors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Something went wrong."
}
