// Package pagination parses skip/limit/sort query parameters and shapes list
// responses.
package pagination

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is used when no limit is given
	DefaultLimit = 50
	// MaxLimit caps any requested page size
	MaxLimit = 500
)

// Params is a validated page request
type Params struct {
	Skip     int
	Limit    int
	SortBy   string
	SortDesc bool
}

// Page is the JSON shape of a list response
type Page[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Skip    int  `json:"skip"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

// NewPage wraps items with the totals for p
func NewPage[T any](items []T, total int, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:   items,
		Total:   total,
		Skip:    p.Skip,
		Limit:   p.Limit,
		HasMore: p.Skip+len(items) < total,
	}
}

// Parse validates raw query values. sort is a field name, optionally prefixed
// with "-" for descending; it must be one of allowedSort (the first entry is
// the default, descending). An empty allowedSort disables sorting.
func Parse(skip, limit, sort string, allowedSort ...string) (Params, error) {
	p := Params{Limit: DefaultLimit}

	if skip != "" {
		n, err := strconv.Atoi(skip)
		if err != nil || n < 0 {
			return Params{}, fmt.Errorf("skip must be a non-negative integer")
		}
		p.Skip = n
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			return Params{}, fmt.Errorf("limit must be a positive integer")
		}
		p.Limit = min(n, MaxLimit)
	}

	if len(allowedSort) == 0 {
		return p, nil
	}
	if sort == "" {
		p.SortBy, p.SortDesc = allowedSort[0], true
		return p, nil
	}
	field, desc := strings.TrimPrefix(sort, "-"), strings.HasPrefix(sort, "-")
	for _, f := range allowedSort {
		if f == field {
			p.SortBy, p.SortDesc = field, desc
			return p, nil
		}
	}
	return Params{}, fmt.Errorf("cannot sort by %q", field)
}

// Window applies skip/limit to n items and returns the slice bounds
func (p Params) Window(n int) (lo, hi int) {
	lo = min(p.Skip, n)
	hi = n
	if p.Limit > 0 {
		hi = min(lo+p.Limit, n)
	}
	return lo, hi
}
