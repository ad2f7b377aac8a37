package portal

import (
	"net/http"
	"strconv"

	"github.com/far7tna/portal/apiclient"
)

func (s *Server) vendorResources() apiclient.Resources {
	return s.api.Resources(apiclient.ScopeVendor)
}

func (s *Server) VendorDashboardHandler() http.HandlerFunc {
	res := s.vendorResources()
	return s.dashboardHandler("Dashboard", vendorShell,
		countOf("Services", RouteVendorServices, res.Services),
		countOf("Products", RouteVendorProducts, res.Products),
		countOf("Bookings", RouteVendorBookings, res.Bookings),
		countOf("Notifications", RouteVendorNotifications, res.Notifications),
	)
}

func (s *Server) VendorServicesHandler() http.HandlerFunc {
	return listHandler(s, listPage[apiclient.Service]{
		title:      "My services",
		shell:      vendorShell,
		collection: s.vendorResources().Services,
		href:       func(svc apiclient.Service) string { return "/services/" + svc.ID },
		columns:    serviceColumns,
	})
}

func (s *Server) VendorProductsHandler() http.HandlerFunc {
	return listHandler(s, listPage[apiclient.Product]{
		title:      "My products",
		shell:      vendorShell,
		collection: s.vendorResources().Products,
		columns: []column[apiclient.Product]{
			{"Product", func(p apiclient.Product) string { return p.Name }},
			{"Price", func(p apiclient.Product) string { return money(p.Price) }},
			{"Stock", func(p apiclient.Product) string { return strconv.Itoa(p.Stock) }},
		},
	})
}

func (s *Server) VendorBookingsHandler() http.HandlerFunc {
	return listHandler(s, listPage[apiclient.Booking]{
		title:      "Bookings",
		shell:      vendorShell,
		collection: s.vendorResources().Bookings,
		columns:    bookingColumns,
	})
}

func (s *Server) VendorNotificationsHandler() http.HandlerFunc {
	return listHandler(s, listPage[apiclient.Notification]{
		title:      "Notifications",
		shell:      vendorShell,
		collection: s.vendorResources().Notifications,
		columns: []column[apiclient.Notification]{
			{"Title", func(n apiclient.Notification) string { return n.Title }},
			{"Message", func(n apiclient.Notification) string { return n.Body }},
			{"Read", func(n apiclient.Notification) string { return yesNo(n.Read) }},
			{"Date", func(n apiclient.Notification) string { return date(n.CreatedAt) }},
		},
	})
}

var serviceColumns = []column[apiclient.Service]{
	{"Service", func(svc apiclient.Service) string { return svc.Title }},
	{"Price", func(svc apiclient.Service) string { return money(svc.Price) }},
	{"Active", func(svc apiclient.Service) string { return yesNo(svc.IsActive) }},
}
