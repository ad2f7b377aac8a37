package apitest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type item = map[string]any

// collections is an in-memory document store keyed by "<scope>/<collection>".
type collections struct {
	data map[string][]item
	lock sync.RWMutex
}

func newCollections() *collections {
	return &collections{data: make(map[string][]item)}
}

func collectionKey(scope, name string) string {
	return scope + "/" + name
}

func toItem(v any) (item, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out item
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("expected a JSON object: %w", err)
	}
	return out, nil
}

func (c *collections) insert(key string, in item) item {
	if id, _ := in["id"].(string); id == "" {
		in["id"] = uuid.NewString()
	}
	if _, ok := in["createdAt"]; !ok {
		in["createdAt"] = time.Now().UTC().Format(time.RFC3339)
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	c.data[key] = append(c.data[key], in)
	return clone(in)
}

func clone(it item) item {
	out := make(item, len(it))
	for k, v := range it {
		out[k] = v
	}
	return out
}

func (c *collections) get(key, id string) (item, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	for _, it := range c.data[key] {
		if it["id"] == id {
			return clone(it), true
		}
	}
	return nil, false
}

func (c *collections) update(key, id string, in item) (item, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for i, it := range c.data[key] {
		if it["id"] != id {
			continue
		}
		for k, v := range in {
			it[k] = v
		}
		it["id"] = id
		c.data[key][i] = it
		return clone(it), true
	}
	return nil, false
}

func (c *collections) remove(key, id string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	items := c.data[key]
	for i, it := range items {
		if it["id"] == id {
			c.data[key] = append(items[:i], items[i+1:]...)
			return true
		}
	}
	return false
}

type listResult struct {
	Items    []item `json:"items"`
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// list filters by search text over string fields, then by exact match on the remaining
// parameters, and pages the result in insertion order.
func (c *collections) list(key string, params map[string]string) listResult {
	page := atoiDefault(params["page"], 1)
	pageSize := atoiDefault(params["pageSize"], 10)
	search := strings.ToLower(params["search"])

	c.lock.RLock()
	matched := make([]item, 0)
	for _, it := range c.data[key] {
		if search != "" && !matchesSearch(it, search) {
			continue
		}
		if !matchesFilters(it, params) {
			continue
		}
		matched = append(matched, clone(it))
	}
	c.lock.RUnlock()

	start := (page - 1) * pageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return listResult{
		Items:    matched[start:end],
		Total:    len(matched),
		Page:     page,
		PageSize: pageSize,
	}
}

func matchesSearch(it item, search string) bool {
	for _, v := range it {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), search) {
			return true
		}
	}
	return false
}

func matchesFilters(it item, params map[string]string) bool {
	for k, want := range params {
		switch k {
		case "page", "pageSize", "search":
			continue
		}
		if fmt.Sprint(it[k]) != want {
			return false
		}
	}
	return true
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
