package portal

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/far7tna/portal/apiclient"
	"github.com/far7tna/portal/credentials"
	"github.com/far7tna/portal/internal/utils"
)

type broadcastForm struct {
	Title     string
	Message   string
	Audience  credentials.Role
	Audiences []credentials.Role
}

func (s *Server) adminResources() apiclient.Resources {
	return s.api.Resources(apiclient.ScopeAdmin)
}

func (s *Server) AdminDashboardHandler() http.HandlerFunc {
	res := s.adminResources()
	return s.dashboardHandler("Dashboard", adminShell,
		countOf("Categories", RouteAdminCategories, res.Categories),
		countOf("Vendors", RouteAdminVendors, res.Vendors),
		countOf("Services", RouteAdminServices, res.Services),
		countOf("Users", RouteAdminUsers, res.Users),
		countOf("Reviews", RouteAdminReviews, res.Reviews),
	)
}

// AdminCategoriesHandler lists categories, optionally only the active ones.
func (s *Server) AdminCategoriesHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("categories.html")
	categories := s.adminResources().Categories

	return func(w http.ResponseWriter, r *http.Request) {
		q := queryFrom(r)
		onlyActive := r.URL.Query().Get("onlyActive") == "true"
		if onlyActive {
			q.Active = utils.Ptr(true)
		}
		page, err := categories.List(r.Context(), q)
		if err != nil {
			s.apiFailure(w, r, adminShell, err)
			return
		}
		view := buildTable(r, q, page,
			func(c apiclient.Category) string { return "/admin/categories/" + c.ID },
			[]column[apiclient.Category]{
				{"Name", func(c apiclient.Category) string { return c.Name }},
				{"Slug", func(c apiclient.Category) string { return c.Slug }},
				{"Active", func(c apiclient.Category) string { return yesNo(c.IsActive) }},
				{"Created", func(c apiclient.Category) string { return date(c.CreatedAt) }},
			})
		view.OnlyActive = onlyActive
		s.render(w, r, tmpl, http.StatusOK, pageData{Title: "Categories", Shell: adminShell, Content: view})
	}
}

func (s *Server) AdminCategoryCreateHandler() http.HandlerFunc {
	categories := s.adminResources().Categories

	return func(w http.ResponseWriter, r *http.Request) {
		category, ok := s.categoryFromForm(w, r, apiclient.Category{})
		if !ok {
			return
		}
		if _, err := categories.Create(r.Context(), category); err != nil {
			s.apiFailure(w, r, adminShell, err)
			return
		}
		http.Redirect(w, r, RouteAdminCategories+"?notice=created", http.StatusSeeOther)
	}
}

func (s *Server) AdminCategoryHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("category.html")
	categories := s.adminResources().Categories

	return func(w http.ResponseWriter, r *http.Request) {
		category, err := categories.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			s.apiFailure(w, r, adminShell, err)
			return
		}
		s.render(w, r, tmpl, http.StatusOK, pageData{Title: category.Name, Shell: adminShell, Content: category})
	}
}

// AdminCategoryUpdateHandler applies the form to the stored category so fields the form
// does not carry are kept.
func (s *Server) AdminCategoryUpdateHandler() http.HandlerFunc {
	categories := s.adminResources().Categories

	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		existing, err := categories.Get(r.Context(), id)
		if err != nil {
			s.apiFailure(w, r, adminShell, err)
			return
		}
		category, ok := s.categoryFromForm(w, r, existing)
		if !ok {
			return
		}
		if _, err := categories.Update(r.Context(), id, category); err != nil {
			s.apiFailure(w, r, adminShell, err)
			return
		}
		http.Redirect(w, r, RouteAdminCategories+"?notice=updated", http.StatusSeeOther)
	}
}

func (s *Server) AdminCategoryDeleteHandler() http.HandlerFunc {
	categories := s.adminResources().Categories

	return func(w http.ResponseWriter, r *http.Request) {
		if err := categories.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			s.apiFailure(w, r, adminShell, err)
			return
		}
		http.Redirect(w, r, RouteAdminCategories+"?notice=deleted", http.StatusSeeOther)
	}
}

func (s *Server) categoryFromForm(w http.ResponseWriter, r *http.Request, category apiclient.Category) (apiclient.Category, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return category, false
	}
	category.Name = strings.TrimSpace(r.PostFormValue("name"))
	if category.Name == "" {
		s.renderError(w, r, adminShell, http.StatusBadRequest, "Rejected", "A category needs a name.")
		return category, false
	}
	category.Slug = strings.TrimSpace(r.PostFormValue("slug"))
	if category.Slug == "" {
		category.Slug = slugify(category.Name)
	}
	category.IsActive = r.PostFormValue("isActive") == "true"
	return category, true
}

func slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

func (s *Server) AdminVendorsHandler() http.HandlerFunc {
	return listHandler(s, listPage[apiclient.Vendor]{
		title:      "Vendors",
		shell:      adminShell,
		collection: s.adminResources().Vendors,
		columns: []column[apiclient.Vendor]{
			{"Vendor", func(v apiclient.Vendor) string { return v.Name }},
			{"Email", func(v apiclient.Vendor) string { return v.Email }},
			{"Phone", func(v apiclient.Vendor) string { return v.Phone }},
			{"Approved", func(v apiclient.Vendor) string { return yesNo(v.IsApproved) }},
		},
	})
}

func (s *Server) AdminServicesHandler() http.HandlerFunc {
	return listHandler(s, listPage[apiclient.Service]{
		title:      "Services",
		shell:      adminShell,
		collection: s.adminResources().Services,
		href:       func(svc apiclient.Service) string { return "/services/" + svc.ID },
		columns:    serviceColumns,
	})
}

func (s *Server) AdminUsersHandler() http.HandlerFunc {
	return listHandler(s, listPage[apiclient.Account]{
		title:      "Users",
		shell:      adminShell,
		collection: s.adminResources().Users,
		columns: []column[apiclient.Account]{
			{"Name", func(a apiclient.Account) string { return a.FullName }},
			{"Email", func(a apiclient.Account) string { return a.Email }},
			{"Role", func(a apiclient.Account) string { return a.Role.String() }},
			{"Active", func(a apiclient.Account) string { return yesNo(a.IsActive) }},
		},
	})
}

func (s *Server) AdminReviewsHandler() http.HandlerFunc {
	return listHandler(s, listPage[apiclient.Review]{
		title:      "Reviews",
		shell:      adminShell,
		collection: s.adminResources().Reviews,
		columns:    reviewColumns,
	})
}

func (s *Server) AdminBroadcastHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("broadcast.html")

	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, tmpl, http.StatusOK, pageData{
			Title:   "Broadcast",
			Shell:   adminShell,
			Content: broadcastForm{Audiences: credentials.Roles},
		})
	}
}

// AdminBroadcastSendHandler sends an announcement to one role, or everyone.
func (s *Server) AdminBroadcastSendHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("broadcast.html")
	broadcasts := s.adminResources().Broadcasts

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		form := broadcastForm{
			Title:     strings.TrimSpace(r.PostFormValue("title")),
			Message:   strings.TrimSpace(r.PostFormValue("message")),
			Audience:  credentials.ParseRole(r.PostFormValue("audience")),
			Audiences: credentials.Roles,
		}
		if form.Title == "" || form.Message == "" {
			s.render(w, r, tmpl, http.StatusBadRequest, pageData{
				Title:   "Broadcast",
				Shell:   adminShell,
				Error:   "A broadcast needs a title and a message.",
				Content: form,
			})
			return
		}

		_, err := broadcasts.Create(r.Context(), apiclient.Broadcast{
			Title:    form.Title,
			Message:  form.Message,
			Audience: form.Audience,
		})
		if err != nil {
			s.apiFailure(w, r, adminShell, err)
			return
		}
		http.Redirect(w, r, RouteAdminBroadcast+"?notice=broadcast", http.StatusSeeOther)
	}
}
