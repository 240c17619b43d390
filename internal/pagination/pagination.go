// Package pagination turns result pages and total-count estimates into
// page/total-page bookkeeping, and serializes page advances so only one
// fetch is in flight at a time.
package pagination

import "github.com/GregZOL/API-France-March--BOAMP/internal/port"

const (
	minPageSize = 1
	maxPageSize = 100
)

// ClampPage forces a 1-based page number.
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// ClampPageSize forces the page size into [1,100].
func ClampPageSize(size int) int {
	if size < minPageSize {
		return minPageSize
	}
	if size > maxPageSize {
		return maxPageSize
	}
	return size
}

// TotalPages computes the page count from a reported total, or from the
// shape of the current page when the provider reported none: a short page
// means the current page is the last one; a full page means the count is
// still unknown (returned as 0).
func TotalPages(total *int64, pageSize, itemCount, page int) int {
	if total != nil {
		pages := int((*total + int64(pageSize) - 1) / int64(pageSize))
		if pages < 1 {
			pages = 1
		}
		return pages
	}
	if itemCount < pageSize {
		return page
	}
	return 0
}

// PageState is the aggregated view of successive result pages.
type PageState struct {
	Page     int
	PageSize int
	Total    *int64
	// TotalPages is 0 while the page count is unknown.
	TotalPages int
	Items      []port.NormalizedRecord
	// Append keeps earlier pages (infinite scroll) instead of replacing
	// the view.
	Append bool
}

// Advance folds one fetched page into the state. The known page count is
// only ever revised downward once a short page is observed, never upward
// without a reported total.
func (s *PageState) Advance(page int, result *port.ResultPage) {
	s.Page = page
	if s.Append && page > 1 {
		s.Items = append(s.Items, result.Items...)
	} else {
		s.Items = result.Items
	}
	s.Total = result.Total

	computed := TotalPages(result.Total, s.PageSize, len(result.Items), page)
	switch {
	case result.Total != nil:
		s.TotalPages = computed
	case computed > 0 && (s.TotalPages == 0 || computed < s.TotalPages):
		s.TotalPages = computed
	}
}

// HasMore reports whether another page may exist. An unknown page count is
// treated optimistically.
func (s *PageState) HasMore() bool {
	return s.TotalPages == 0 || s.Page < s.TotalPages
}

// Allows reports whether a request for the given page should be issued at
// all: once the page count is established, requests beyond it are rejected
// client-side without a network call.
func (s *PageState) Allows(page int) bool {
	if page < 1 {
		return false
	}
	return s.TotalPages == 0 || page <= s.TotalPages
}
