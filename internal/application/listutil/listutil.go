// Package listutil parses paging and filter parameters for list endpoints.
package listutil

import (
	"net/url"
	"strconv"
)

// PageParams carries pagination parameters parsed from a request.
type PageParams struct {
	Page    int // 1-indexed page number
	PerPage int // rows per page
}

// FilterParams carries exact-match filters recognised by an endpoint.
type FilterParams struct {
	Filters map[string]string
}

// Get returns the filter value for key, or "".
func (f FilterParams) Get(key string) string {
	return f.Filters[key]
}

// PageInfo carries pagination metadata returned alongside a page of items.
type PageInfo struct {
	Page    int  `json:"page"`
	PerPage int  `json:"perPage"`
	HasMore bool `json:"hasMore"`
}

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 50

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{10, 25, 50, 100, 200}

// ParsePageParams extracts page and per_page from URL query values.
// PRE: none
// POST: returns valid PageParams with defaults applied
func ParsePageParams(q url.Values) PageParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if !isValidPerPage(perPage) {
		perPage = DefaultPerPage
	}
	return PageParams{Page: page, PerPage: perPage}
}

// Offset returns the SQL OFFSET for the page.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Limit returns the SQL LIMIT for the page, one more than PerPage so the
// caller can tell whether another page exists.
func (p PageParams) Limit() int {
	return p.PerPage + 1
}

// ParseFilterParams extracts named filters from URL query values.
// PRE: filterKeys lists the allowed filter parameter names
// POST: returns FilterParams with only recognised keys
func ParseFilterParams(q url.Values, filterKeys []string) FilterParams {
	fp := FilterParams{Filters: make(map[string]string)}
	for _, key := range filterKeys {
		if v := q.Get(key); v != "" {
			fp.Filters[key] = v
		}
	}
	return fp
}

// Trim cuts a page fetched with Limit() back to PerPage and reports whether more rows exist.
func Trim[T any](items []T, p PageParams) ([]T, PageInfo) {
	info := PageInfo{Page: p.Page, PerPage: p.PerPage}
	if len(items) > p.PerPage {
		info.HasMore = true
		items = items[:p.PerPage]
	}
	if items == nil {
		items = []T{}
	}
	return items, info
}

// Slice pages through a fully loaded list.
func Slice[T any](items []T, p PageParams) ([]T, PageInfo) {
	start := min(p.Offset(), len(items))
	end := min(start+p.Limit(), len(items))
	return Trim(items[start:end], p)
}

func isValidPerPage(n int) bool {
	for _, opt := range PerPageOptions {
		if n == opt {
			return true
		}
	}
	return false
}
