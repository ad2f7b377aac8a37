package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/far7tna/portal/internal/utils"
)

// Scope is the role prefix of a resource path.
type Scope string

const (
	ScopeAdmin    Scope = "admin"
	ScopeVendor   Scope = "vendor"
	ScopeCustomer Scope = "customer"
)

// Page is one page of a paged list.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Pages returns the page count, at least 1.
func (p Page[T]) Pages() int {
	if p.PageSize <= 0 || p.Total <= 0 {
		return 1
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// Query holds list parameters. Zero values are left out of the request.
type Query struct {
	Page     int
	PageSize int
	Search   string
	Active   *bool
	Filters  map[string]string
}

func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Active != nil {
		v.Set("isActive", strconv.FormatBool(utils.Value(q.Active)))
	}
	for k, val := range q.Filters {
		if val != "" {
			v.Set(k, val)
		}
	}
	return v
}

// Collection is the CRUD surface of one REST collection.
type Collection[T any] struct {
	client *Client
	path   string
}

func NewCollection[T any](client *Client, path string) *Collection[T] {
	return &Collection[T]{client: client, path: path}
}

func (c *Collection[T]) Path() string {
	return c.path
}

func (c *Collection[T]) List(ctx context.Context, q Query) (Page[T], error) {
	var page Page[T]
	if err := c.client.Do(ctx, http.MethodGet, c.path, q.Values(), nil, &page); err != nil {
		return Page[T]{}, err
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page, nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var item T
	err := c.client.Do(ctx, http.MethodGet, c.itemPath(id), nil, nil, &item)
	return item, err
}

// Create posts in and returns the created entity when the API echoes it.
func (c *Collection[T]) Create(ctx context.Context, in T) (T, error) {
	var out T
	err := c.client.Do(ctx, http.MethodPost, c.path, nil, in, &out)
	return out, err
}

func (c *Collection[T]) Update(ctx context.Context, id string, in T) (T, error) {
	var out T
	err := c.client.Do(ctx, http.MethodPut, c.itemPath(id), nil, in, &out)
	return out, err
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.client.Do(ctx, http.MethodDelete, c.itemPath(id), nil, nil, nil)
}

func (c *Collection[T]) itemPath(id string) string {
	return c.path + "/" + url.PathEscape(id)
}

// Resources groups the collections available under one scope.
type Resources struct {
	Categories    *Collection[Category]
	Products      *Collection[Product]
	Services      *Collection[Service]
	Vendors       *Collection[Vendor]
	Users         *Collection[Account]
	Reviews       *Collection[Review]
	Bookings      *Collection[Booking]
	Notifications *Collection[Notification]
	Broadcasts    *Collection[Broadcast]
}

func (c *Client) Resources(scope Scope) Resources {
	base := "/api/" + string(scope)
	return Resources{
		Categories:    NewCollection[Category](c, base+"/categories"),
		Products:      NewCollection[Product](c, base+"/products"),
		Services:      NewCollection[Service](c, base+"/services"),
		Vendors:       NewCollection[Vendor](c, base+"/vendors"),
		Users:         NewCollection[Account](c, base+"/users"),
		Reviews:       NewCollection[Review](c, base+"/reviews"),
		Bookings:      NewCollection[Booking](c, base+"/bookings"),
		Notifications: NewCollection[Notification](c, base+"/notifications"),
		Broadcasts:    NewCollection[Broadcast](c, base+"/broadcasts"),
	}
}

// Catalogue is the public service listing; it needs no credentials.
func (c *Client) Catalogue() *Collection[Service] {
	return NewCollection[Service](c, "/api/services")
}
