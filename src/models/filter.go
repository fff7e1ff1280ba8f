// backend/src/models/filter.go
package models

// PurchaseFilter narrows purchase queries. Zero fields are ignored.
type PurchaseFilter struct {
	Category  string
	StartDate *Date // inclusive
	EndDate   *Date // inclusive
	Month     int   // 1-12
	Year      int
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Page selects a 1-based page of results.
type Page struct {
	Page  int
	Limit int
}

// Normalize applies the default page and limit and caps the limit.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

func NewPagination(p Page, total int) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Pagination{Page: p.Page, Limit: p.Limit, Total: total, Pages: pages}
}
