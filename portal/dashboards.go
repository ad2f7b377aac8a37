package portal

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/far7tna/portal/apiclient"
)

type stat struct {
	Label string
	Count int
	Href  string
}

// counter is one dashboard tile.
type counter struct {
	label string
	href  string
	count func(context.Context) (int, error)
}

func countOf[T any](label, href string, c *apiclient.Collection[T]) counter {
	return counter{
		label: label,
		href:  href,
		count: func(ctx context.Context) (int, error) {
			page, err := c.List(ctx, apiclient.Query{Page: 1, PageSize: 1})
			return page.Total, err
		},
	}
}

// dashboardHandler loads every tile concurrently. Concurrent requests that meet an
// expired token share a single refresh.
func (s *Server) dashboardHandler(title string, sh shell, counters ...counter) http.HandlerFunc {
	tmpl := mustParseTemplate("dashboard.html")

	return func(w http.ResponseWriter, r *http.Request) {
		stats := make([]stat, len(counters))
		g, ctx := errgroup.WithContext(r.Context())
		for i, c := range counters {
			i, c := i, c
			g.Go(func() error {
				n, err := c.count(ctx)
				stats[i] = stat{Label: c.label, Count: n, Href: c.href}
				return err
			})
		}
		if err := g.Wait(); err != nil {
			s.apiFailure(w, r, sh, err)
			return
		}
		s.render(w, r, tmpl, http.StatusOK, pageData{Title: title, Shell: sh, Content: stats})
	}
}
