package portal

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/far7tna/portal/credentials"
)

func (s *Server) initRoutes() {
	if s.config.GetMetricsEnabled() && s.gatherer != nil {
		s.router.Method(http.MethodGet, RouteMetrics,
			ChainMiddleware(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}), s.RecoverMiddleware))
	}

	s.router.Group(func(r chi.Router) {
		r.Use(s.HTMLMiddleware()...)

		// Public
		r.Get(RouteHome, s.HomeHandler())
		r.Get(RouteServiceDetails, s.ServiceDetailsHandler())
		r.Get(RouteLogin, s.LoginPageHandler())
		r.Post(RouteLogin, s.LoginSubmissionHandler())
		r.Post(RouteLogout, s.LogoutHandler())
		r.Get(RouteRegister, s.RegisterHandler())

		// Any signed in user
		r.Group(func(r chi.Router) {
			r.Use(s.guard.RequireAuth)

			dashboard := s.CustomerDashboardHandler()
			r.Get(RouteCustomer, dashboard)
			r.Get(RouteCustomerDashboard, dashboard)
			r.Get(RouteCustomerBookings, s.CustomerBookingsHandler())
			r.Get(RouteCustomerReviews, s.CustomerReviewsHandler())
			r.Get(RouteCustomerProfile, s.CustomerProfileHandler())
		})

		r.Group(func(r chi.Router) {
			r.Use(s.guard.RequireAuth, s.guard.RequireRole(credentials.RoleVendor))

			dashboard := s.VendorDashboardHandler()
			r.Get(RouteVendor, dashboard)
			r.Get(RouteVendorDashboard, dashboard)
			r.Get(RouteVendorServices, s.VendorServicesHandler())
			r.Get(RouteVendorProducts, s.VendorProductsHandler())
			r.Get(RouteVendorBookings, s.VendorBookingsHandler())
			r.Get(RouteVendorNotifications, s.VendorNotificationsHandler())
		})

		r.Group(func(r chi.Router) {
			r.Use(s.guard.RequireAuth, s.guard.RequireRole(credentials.RoleAdmin))

			dashboard := s.AdminDashboardHandler()
			r.Get(RouteAdmin, dashboard)
			r.Get(RouteAdminDashboard, dashboard)
			r.Get(RouteAdminCategories, s.AdminCategoriesHandler())
			r.Post(RouteAdminCategories, s.AdminCategoryCreateHandler())
			r.Get(RouteAdminCategory, s.AdminCategoryHandler())
			r.Post(RouteAdminCategory, s.AdminCategoryUpdateHandler())
			r.Post(RouteAdminCategoryDelete, s.AdminCategoryDeleteHandler())
			r.Get(RouteAdminVendors, s.AdminVendorsHandler())
			r.Get(RouteAdminServices, s.AdminServicesHandler())
			r.Get(RouteAdminUsers, s.AdminUsersHandler())
			r.Get(RouteAdminReviews, s.AdminReviewsHandler())
			r.Get(RouteAdminBroadcast, s.AdminBroadcastHandler())
			r.Post(RouteAdminBroadcast, s.AdminBroadcastSendHandler())
		})
	})
}
