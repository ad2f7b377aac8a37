package portal

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/far7tna/portal/apiclient"
)

const defaultPageSize = 10

type tableRow struct {
	Href  string
	Cells []string
}

type pager struct {
	Page    int
	Pages   int
	Total   int
	PrevURL string
	NextURL string
}

// tableView backs the "table" partial and the list pages around it.
type tableView struct {
	Action     string
	Search     string
	OnlyActive bool
	Columns    []string
	Rows       []tableRow
	Pager      pager
}

type column[T any] struct {
	title string
	value func(T) string
}

// listPage describes a searchable paged table over one collection.
type listPage[T any] struct {
	title      string
	shell      shell
	collection *apiclient.Collection[T]
	href       func(T) string
	columns    []column[T]
}

func listHandler[T any](s *Server, lp listPage[T]) http.HandlerFunc {
	tmpl := mustParseTemplate("list.html")

	return func(w http.ResponseWriter, r *http.Request) {
		q := queryFrom(r)
		page, err := lp.collection.List(r.Context(), q)
		if err != nil {
			s.apiFailure(w, r, lp.shell, err)
			return
		}
		s.render(w, r, tmpl, http.StatusOK, pageData{
			Title:   lp.title,
			Shell:   lp.shell,
			Content: buildTable(r, q, page, lp.href, lp.columns),
		})
	}
}

func queryFrom(r *http.Request) apiclient.Query {
	values := r.URL.Query()
	page, err := strconv.Atoi(values.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	return apiclient.Query{
		Page:     page,
		PageSize: defaultPageSize,
		Search:   values.Get("search"),
	}
}

func buildTable[T any](r *http.Request, q apiclient.Query, page apiclient.Page[T], href func(T) string, columns []column[T]) tableView {
	view := tableView{
		Action: r.URL.Path,
		Search: q.Search,
		Rows:   make([]tableRow, 0, len(page.Items)),
	}
	for _, c := range columns {
		view.Columns = append(view.Columns, c.title)
	}
	for _, item := range page.Items {
		row := tableRow{Cells: make([]string, 0, len(columns))}
		if href != nil {
			row.Href = href(item)
		}
		for _, c := range columns {
			row.Cells = append(row.Cells, c.value(item))
		}
		view.Rows = append(view.Rows, row)
	}

	current := q.Page
	if current < 1 {
		current = 1
	}
	view.Pager = pager{Page: current, Pages: page.Pages(), Total: page.Total}
	if current > 1 {
		view.Pager.PrevURL = pageURL(r.URL, current-1)
	}
	if current < view.Pager.Pages {
		view.Pager.NextURL = pageURL(r.URL, current+1)
	}
	return view
}

func pageURL(u *url.URL, page int) string {
	values := u.Query()
	values.Del("notice")
	values.Set("page", strconv.Itoa(page))
	return u.Path + "?" + values.Encode()
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
