package helpers

import (
	"net/http"
	"strconv"
	"strings"

	"evently/internal/domain"
)

// List sizes for GET /events.
const (
	FirstPage     = 1
	EventsPerPage = 20
	MaxPageSize   = 100
)

// PageQuery reads ?page and ?page_size from r. The web client's ?limit is
// accepted when page_size is absent. Bad values fall back to the defaults and
// oversized pages are clamped.
func PageQuery(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	size := positiveInt(q.Get("page_size"), 0)
	if size == 0 {
		size = positiveInt(q.Get("limit"), EventsPerPage)
	}
	return domain.PaginationParams{
		Page:     positiveInt(q.Get("page"), FirstPage),
		PageSize: min(size, MaxPageSize),
	}
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// PageInfo tells the client where a page sits in the full event list.
type PageInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// NewPageInfo describes page p of a list holding total rows.
func NewPageInfo(p domain.PaginationParams, total int) PageInfo {
	info := PageInfo{Page: p.Page, PageSize: p.PageSize, Total: total}
	if p.PageSize > 0 {
		info.TotalPages = (total + p.PageSize - 1) / p.PageSize
	}
	info.HasMore = p.Page < info.TotalPages
	return info
}
