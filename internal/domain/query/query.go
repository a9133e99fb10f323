// Package query turns list-endpoint URL parameters into a storage-neutral
// query: filters with comparison operators, field selection, sort order,
// pagination and an optional relation to populate.
package query

import (
	"encoding/json"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
)

const (
	DefaultPage  = 1
	DefaultLimit = 25
)

// Relations a list endpoint may populate.
const (
	PopulateCourses  = "courses"  // each bootcamp's courses
	PopulateBootcamp = "bootcamp" // each course's bootcamp summary
)

// Op is a comparison operator usable in a filter.
type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

// reserved keys never become filters.
var reserved = map[string]bool{"select": true, "sort": true, "page": true, "limit": true}

var keyPattern = regexp.MustCompile(`^([A-Za-z0-9_.]+)(?:\[(gt|gte|lt|lte|in)\])?$`)

type Filter struct {
	Field  string
	Op     Op
	Values []string // one value except for OpIn
}

type SortField struct {
	Field string
	Desc  bool
}

type Query struct {
	Filters  []Filter
	Select   []string
	Sort     []SortField
	Page     int
	Limit    int
	Populate string
}

// Offset is the number of rows skipped before the current page.
func (q Query) Offset() int { return (q.Page - 1) * q.Limit }

// Parse builds a Query from URL parameters. Keys of the form field[op] become
// range or set filters; every other non-reserved key is an equality filter.
func Parse(values url.Values) (Query, error) {
	q := Query{
		Page:  DefaultPage,
		Limit: DefaultLimit,
		Sort:  []SortField{{Field: "createdAt", Desc: true}},
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if reserved[key] {
			continue
		}
		m := keyPattern.FindStringSubmatch(key)
		if m == nil {
			return Query{}, apperror.Validation("Invalid query parameter %s", key)
		}
		op := OpEq
		if m[2] != "" {
			op = Op(m[2])
		}
		vals := values[key]
		if op == OpIn {
			vals = splitList(strings.Join(vals, ","))
			if len(vals) == 0 {
				return Query{}, apperror.Validation("Query parameter %s needs at least one value", key)
			}
		} else {
			vals = vals[len(vals)-1:]
		}
		q.Filters = append(q.Filters, Filter{Field: m[1], Op: op, Values: vals})
	}

	if s := values.Get("select"); s != "" {
		q.Select = splitList(s)
	}
	if s := values.Get("sort"); s != "" {
		q.Sort = q.Sort[:0]
		for _, f := range splitList(s) {
			if strings.HasPrefix(f, "-") {
				q.Sort = append(q.Sort, SortField{Field: f[1:], Desc: true})
			} else {
				q.Sort = append(q.Sort, SortField{Field: strings.TrimPrefix(f, "+")})
			}
		}
	}

	var err error
	if q.Page, err = positiveInt(values, "page", DefaultPage); err != nil {
		return Query{}, err
	}
	if q.Limit, err = positiveInt(values, "limit", DefaultLimit); err != nil {
		return Query{}, err
	}
	// page*limit must stay representable so Offset and Paginate cannot wrap.
	if q.Page > math.MaxInt/q.Limit {
		return Query{}, apperror.Validation("page is out of range for limit %d", q.Limit)
	}
	return q, nil
}

func positiveInt(values url.Values, key string, def int) (int, error) {
	raw := values.Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperror.Validation("%s must be a positive integer", key)
	}
	return n, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Page points at a neighbouring page.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination holds next/prev only when such a page exists.
type Pagination struct {
	Next *Page `json:"next,omitempty"`
	Prev *Page `json:"prev,omitempty"`
}

// Paginate derives the neighbouring pages from the total match count.
func (q Query) Paginate(total int) Pagination {
	var p Pagination
	if q.Page*q.Limit < total {
		p.Next = &Page{Page: q.Page + 1, Limit: q.Limit}
	}
	if q.Offset() > 0 {
		p.Prev = &Page{Page: q.Page - 1, Limit: q.Limit}
	}
	return p
}

// Result is the body list endpoints return verbatim.
type Result struct {
	Success    bool       `json:"success"`
	Count      int        `json:"count"`
	Pagination Pagination `json:"pagination"`
	Data       any        `json:"data"`
}

// Project reduces each item to the selected top-level JSON fields plus id.
// Items are returned unchanged when no fields were selected.
func Project[T any](items []T, fields []string) (any, error) {
	if len(fields) == 0 {
		if items == nil {
			return []T{}, nil
		}
		return items, nil
	}
	keep := map[string]bool{"id": true}
	for _, f := range fields {
		keep[strings.SplitN(f, ".", 2)[0]] = true
	}
	out := make([]map[string]json.RawMessage, 0, len(items))
	for _, it := range items {
		b, err := json.Marshal(it)
		if err != nil {
			return nil, err
		}
		var m map[string]json.RawMessage
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, err
		}
		for k := range m {
			if !keep[k] {
				delete(m, k)
			}
		}
		out = append(out, m)
	}
	return out, nil
}
