package portal

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/far7tna/portal/credentials"
	"github.com/far7tna/portal/guard"
	apperrors "github.com/far7tna/portal/internal/errors"
)

type navLink struct {
	Label string
	Href  string
}

// shell is the navigation frame of one area of the portal.
type shell struct {
	Name  string
	Label string
	Nav   []navLink
}

var (
	publicShell = shell{
		Name: "public",
		Nav: []navLink{
			{"Services", RouteHome},
			{"Register", RouteRegister},
		},
	}
	customerShell = shell{
		Name:  "customer",
		Label: "My account",
		Nav: []navLink{
			{"Dashboard", RouteCustomerDashboard},
			{"Bookings", RouteCustomerBookings},
			{"Reviews", RouteCustomerReviews},
			{"Profile", RouteCustomerProfile},
		},
	}
	vendorShell = shell{
		Name:  "vendor",
		Label: "Vendor",
		Nav: []navLink{
			{"Dashboard", RouteVendorDashboard},
			{"Services", RouteVendorServices},
			{"Products", RouteVendorProducts},
			{"Bookings", RouteVendorBookings},
			{"Notifications", RouteVendorNotifications},
		},
	}
	adminShell = shell{
		Name:  "admin",
		Label: "Admin",
		Nav: []navLink{
			{"Dashboard", RouteAdminDashboard},
			{"Categories", RouteAdminCategories},
			{"Vendors", RouteAdminVendors},
			{"Services", RouteAdminServices},
			{"Users", RouteAdminUsers},
			{"Reviews", RouteAdminReviews},
			{"Broadcast", RouteAdminBroadcast},
		},
	}
)

// pageData is what the layout renders; Content is the page's own data.
type pageData struct {
	AppName string
	Title   string
	Shell   shell
	User    *credentials.UserProfile
	Flash   string
	Error   string
	Content any
}

// notices are the flash messages a redirect can ask for.
var notices = map[string]string{
	"created":   "Saved.",
	"updated":   "Changes saved.",
	"deleted":   "Deleted.",
	"broadcast": "Broadcast sent.",
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, status int, data pageData) {
	data.AppName = s.config.GetAppName()
	if data.User == nil {
		snap, ok := guard.SnapshotFrom(r.Context())
		if !ok {
			snap = s.session.Current()
		}
		data.User = snap.User
	}
	if data.Flash == "" {
		data.Flash = notices[r.URL.Query().Get("notice")]
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutTemplate, data); err != nil {
		log.Err(err).Str("path", r.URL.Path).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// apiFailure turns an API error into a response. A request the API still refuses after
// a refresh means the session is gone, so the user is sent to log in again.
func (s *Server) apiFailure(w http.ResponseWriter, r *http.Request, sh shell, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		http.Redirect(w, r, guard.LoginURL(r.URL.RequestURI()), http.StatusSeeOther)
	case apperrors.Is(err, apperrors.ErrNotFound):
		s.renderError(w, r, sh, http.StatusNotFound, "Not found", "That item no longer exists.")
	case apperrors.Is(err, apperrors.ErrBadRequest):
		s.renderError(w, r, sh, http.StatusBadRequest, "Rejected", userMessage(err))
	default:
		log.Err(err).Str("path", r.URL.Path).Msg("API request failed")
		s.renderError(w, r, sh, http.StatusBadGateway, "Unavailable", "The marketplace is not responding. Try again shortly.")
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, sh shell, status int, title, message string) {
	s.render(w, r, s.errorPage, status, pageData{Title: title, Shell: sh, Error: message})
}
