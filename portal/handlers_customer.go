package portal

import (
	"net/http"
	"strconv"

	"github.com/far7tna/portal/apiclient"
)

func (s *Server) customerResources() apiclient.Resources {
	return s.api.Resources(apiclient.ScopeCustomer)
}

func (s *Server) CustomerDashboardHandler() http.HandlerFunc {
	res := s.customerResources()
	return s.dashboardHandler("Dashboard", customerShell,
		countOf("Bookings", RouteCustomerBookings, res.Bookings),
		countOf("Reviews", RouteCustomerReviews, res.Reviews),
	)
}

func (s *Server) CustomerBookingsHandler() http.HandlerFunc {
	return listHandler(s, listPage[apiclient.Booking]{
		title:      "My bookings",
		shell:      customerShell,
		collection: s.customerResources().Bookings,
		href:       func(b apiclient.Booking) string { return "/services/" + b.ServiceID },
		columns:    bookingColumns,
	})
}

func (s *Server) CustomerReviewsHandler() http.HandlerFunc {
	return listHandler(s, listPage[apiclient.Review]{
		title:      "My reviews",
		shell:      customerShell,
		collection: s.customerResources().Reviews,
		href:       func(rv apiclient.Review) string { return "/services/" + rv.ServiceID },
		columns:    reviewColumns,
	})
}

func (s *Server) CustomerProfileHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("profile.html")

	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, tmpl, http.StatusOK, pageData{Title: "Profile", Shell: customerShell})
	}
}

var bookingColumns = []column[apiclient.Booking]{
	{"Service", func(b apiclient.Booking) string { return b.ServiceID }},
	{"Status", func(b apiclient.Booking) string { return b.Status }},
	{"Scheduled", func(b apiclient.Booking) string { return date(b.ScheduledAt) }},
}

var reviewColumns = []column[apiclient.Review]{
	{"Service", func(rv apiclient.Review) string { return rv.ServiceID }},
	{"Rating", func(rv apiclient.Review) string { return strconv.Itoa(rv.Rating) }},
	{"Comment", func(rv apiclient.Review) string { return rv.Comment }},
	{"Date", func(rv apiclient.Review) string { return date(rv.CreatedAt) }},
}
