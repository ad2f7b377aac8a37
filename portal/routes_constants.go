package portal

// Route path constants
// All portal routes are defined here to ensure consistency and prevent typos
const (
	// Public
	RouteHome           = "/"
	RouteLogin          = "/login"
	RouteLogout         = "/logout"
	RouteRegister       = "/register"
	RouteServiceDetails = "/services/{id}"

	// Customer
	RouteCustomer          = "/customer"
	RouteCustomerDashboard = "/customer/dashboard"
	RouteCustomerBookings  = "/customer/bookings"
	RouteCustomerReviews   = "/customer/reviews"
	RouteCustomerProfile   = "/customer/profile"

	// Vendor
	RouteVendor              = "/vendor"
	RouteVendorDashboard     = "/vendor/dashboard"
	RouteVendorServices      = "/vendor/services"
	RouteVendorProducts      = "/vendor/products"
	RouteVendorBookings      = "/vendor/bookings"
	RouteVendorNotifications = "/vendor/notifications"

	// Admin
	RouteAdmin               = "/admin"
	RouteAdminDashboard      = "/admin/dashboard"
	RouteAdminCategories     = "/admin/categories"
	RouteAdminCategory       = "/admin/categories/{id}"
	RouteAdminCategoryDelete = "/admin/categories/{id}/delete"
	RouteAdminVendors        = "/admin/vendors"
	RouteAdminServices       = "/admin/services"
	RouteAdminUsers          = "/admin/users"
	RouteAdminReviews        = "/admin/reviews"
	RouteAdminBroadcast      = "/admin/broadcast"

	RouteMetrics = "/metrics"
)
