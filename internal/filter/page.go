package filter

import (
	"math"
	"net/url"
	"strconv"
)

// PageConfig bounds the page sizes a request may ask for.
type PageConfig struct {
	Default int
	Max     int
}

// Page selects a window of a result set. Number is 1-based.
type Page struct {
	Number int
	Size   int
}

// PageFromValues reads `page` and `per_page`, falling back to defaults on bad input.
func PageFromValues(values url.Values, cfg PageConfig) Page {
	number := 1
	if raw := firstValue(values, ParamPage); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			number = v
		}
	}

	size := 0
	if raw := firstValue(values, ParamPerPage); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			size = v
		}
	}

	return NewPage(number, size, cfg)
}

// NewPage clamps number and size against cfg.
func NewPage(number, size int, cfg PageConfig) Page {
	if number <= 0 {
		number = 1
	}
	if size <= 0 {
		size = cfg.Default
	}
	if cfg.Max > 0 && size > cfg.Max {
		size = cfg.Max
	}
	if size <= 0 {
		size = 1
	}
	// Keep Offset within int.
	if last := math.MaxInt / size; number-1 > last {
		number = last + 1
	}
	return Page{Number: number, Size: size}
}

// Offset returns the number of rows skipped before this page.
func (p Page) Offset() int {
	if p.Number <= 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// Pagination summarises a page relative to the total match count.
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// Paginate describes page p of a result set holding total rows.
func Paginate(p Page, total int64) Pagination {
	pages := 0
	if p.Size > 0 {
		pages = int((total + int64(p.Size) - 1) / int64(p.Size))
	}
	return Pagination{
		Total:      total,
		Page:       p.Number,
		PerPage:    p.Size,
		TotalPages: pages,
		HasMore:    p.Number < pages,
	}
}
