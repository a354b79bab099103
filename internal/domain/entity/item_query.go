package entity

import "math"

const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
	SortPopular   = "popular"
)

func IsValidItemSort(sort string) bool {
	switch sort {
	case SortNewest, SortOldest, SortPriceLow, SortPriceHigh, SortPopular:
		return true
	}
	return false
}

// ItemQuery describes one page of a catalog search. Nil prices and empty
// strings impose no constraint, except Status which defaults to Active.
type ItemQuery struct {
	TextQuery   string
	SellerID    string
	Status      string
	Category    string
	Subcategory string
	MinPrice    *float64
	MaxPrice    *float64
	Condition   string
	Province    string
	City        string
	District    string

	Sort     string
	Page     int
	PageSize int
}

// StatusFilter is the listing status the query matches.
func (q ItemQuery) StatusFilter() string {
	if q.Status == "" {
		return ItemStatusActive
	}
	return q.Status
}

func (q ItemQuery) Offset() int {
	return PageOffset(q.Page, q.PageSize)
}

// PageOffset is (page-1)*pageSize, saturating at math.MaxInt so huge page
// numbers land past the end instead of wrapping negative.
func PageOffset(page, pageSize int) int {
	if page <= 1 || pageSize <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}

// SearchResult is one page of items plus the total match count.
type SearchResult struct {
	Items      []*Item `json:"items"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalPages int     `json:"totalPages"`
}
