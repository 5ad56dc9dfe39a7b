// Package query turns request query parameters into store-agnostic filters
// and offset pagination.
package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"reliefnet-backend-go/internal/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Condition is a single field test. Field names are the stored field names.
type Condition struct {
	Field string
	Value string
}

// Filter is a conjunction of equality conditions and case-insensitive
// substring conditions.
type Filter struct {
	Equals   []Condition
	Contains []Condition
}

// Eq appends an equality condition when value is non-empty.
func (f *Filter) Eq(field, value string) {
	if value == "" {
		return
	}
	f.Equals = append(f.Equals, Condition{Field: field, Value: value})
}

// Like appends a case-insensitive substring condition when value is non-empty.
func (f *Filter) Like(field, value string) {
	if value == "" {
		return
	}
	f.Contains = append(f.Contains, Condition{Field: field, Value: value})
}

// Get returns the equality value for field, if any.
func (f Filter) Get(field string) (string, bool) {
	for _, c := range f.Equals {
		if c.Field == field {
			return c.Value, true
		}
	}
	return "", false
}

// Match evaluates the filter against a field lookup.
func (f Filter) Match(lookup func(field string) string) bool {
	for _, c := range f.Equals {
		if lookup(c.Field) != c.Value {
			return false
		}
	}
	for _, c := range f.Contains {
		if !strings.Contains(strings.ToLower(lookup(c.Field)), strings.ToLower(c.Value)) {
			return false
		}
	}
	return true
}

// Page is a 1-based page request. Limit has no upper bound.
type Page struct {
	Number int
	Limit  int
}

// Offset is the number of records skipped before this page. It saturates at
// math.MaxInt, so a page number too large to address is past the end.
func (p Page) Offset() int {
	if p.Number <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Limit
}

// ParsePage reads page and limit, falling back to the defaults for missing,
// non-numeric or non-positive values.
func ParsePage(page, limit string) Page {
	return Page{Number: positiveOr(page, DefaultPage), Limit: positiveOr(limit, DefaultLimit)}
}

func positiveOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Pagination is the metadata block returned next to list results.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// NewPagination computes totalPages as ceil(total/limit).
func NewPagination(p Page, total int) Pagination {
	return Pagination{
		CurrentPage:  p.Number,
		TotalPages:   int(math.Ceil(float64(total) / float64(p.Limit))),
		TotalItems:   total,
		ItemsPerPage: p.Limit,
	}
}

// Window returns the [start, end) bounds of page p over n items.
func (p Page) Window(n int) (int, int) {
	start := p.Offset()
	if start > n {
		start = n
	}
	end := n
	if p.Limit < n-start {
		end = start + p.Limit
	}
	return start, end
}

// DisasterFilter recognises type, severity and status.
func DisasterFilter(values url.Values) Filter {
	var f Filter
	f.Eq("type", values.Get("type"))
	f.Eq("severity", values.Get("severity"))
	f.Eq("status", values.Get("status"))
	return f
}

// ContributionFilter recognises disasterId, userId, status and
// contributionType. Malformed IDs are dropped with a warning; the literal
// "undefined" sent by some clients is dropped silently.
func ContributionFilter(values url.Values, logger *zap.Logger) Filter {
	var f Filter
	for _, field := range []string{"disasterId", "userId"} {
		v := values.Get(field)
		if v == "" || v == "undefined" {
			continue
		}
		if !models.ValidID(v) {
			if logger != nil {
				logger.Warn("Ignored invalid id filter", zap.String("field", field), zap.String("value", v))
			}
			continue
		}
		f.Eq(field, v)
	}
	f.Eq("status", values.Get("status"))
	f.Eq("contributionType", values.Get("contributionType"))
	return f
}

// RescueTeamFilter recognises specialization and availability by equality and
// ngoName as a case-insensitive substring.
func RescueTeamFilter(values url.Values) Filter {
	var f Filter
	f.Eq("specialization", values.Get("specialization"))
	f.Eq("availability", values.Get("availability"))
	f.Like("ngoName", values.Get("ngoName"))
	return f
}
