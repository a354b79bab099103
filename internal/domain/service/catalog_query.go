package service

import (
	"sort"

	"droplink/internal/domain/entity"
	"droplink/pkg/errors"
)

const (
	MaxPageSize     = 100
	MaxTrendingSize = 50
)

// ValidateItemQuery rejects out-of-range pagination, prices and unknown sort
// or condition values. An empty sort is treated as newest.
func ValidateItemQuery(q entity.ItemQuery) error {
	if q.Page < 1 {
		return errors.Validation("page must be at least 1")
	}
	if q.PageSize < 1 || q.PageSize > MaxPageSize {
		return errors.Validation("pageSize must be between 1 and 100")
	}
	if q.MinPrice != nil && *q.MinPrice < 0 {
		return errors.Validation("minPrice must be non-negative")
	}
	if q.MaxPrice != nil && *q.MaxPrice < 0 {
		return errors.Validation("maxPrice must be non-negative")
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return errors.Validation("minPrice must not exceed maxPrice")
	}
	if q.Sort != "" && !entity.IsValidItemSort(q.Sort) {
		return errors.Validation("sort must be one of: newest oldest price_low price_high popular")
	}
	if q.Status != "" && !entity.IsValidItemStatus(q.Status) {
		return errors.Validation("status must be one of: Active, Sold, Pending, Inactive, Removed")
	}
	if q.Condition != "" && !entity.IsValidCondition(q.Condition) {
		return errors.Validation("condition must be one of: Like New, Good, Fair, Poor")
	}
	return nil
}

// MatchesFilters applies every non-text filter. Items match only in the
// query's status, Active unless stated.
func MatchesFilters(item *entity.Item, q entity.ItemQuery) bool {
	if item.Status != q.StatusFilter() {
		return false
	}
	if q.SellerID != "" && item.SellerID != q.SellerID {
		return false
	}
	if q.Category != "" && item.Category != q.Category {
		return false
	}
	if q.Subcategory != "" && item.Subcategory != q.Subcategory {
		return false
	}
	if q.Condition != "" && item.Condition != q.Condition {
		return false
	}
	if q.Province != "" && item.Location.Province != q.Province {
		return false
	}
	if q.City != "" && item.Location.City != q.City {
		return false
	}
	if q.District != "" && item.Location.District != q.District {
		return false
	}
	if q.MinPrice != nil && item.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && item.Price > *q.MaxPrice {
		return false
	}
	return true
}

// ItemLess orders two items under a sort key; the id breaks remaining ties.
func ItemLess(a, b *entity.Item, sortKey string) bool {
	switch sortKey {
	case entity.SortOldest:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
	case entity.SortPriceLow:
		if a.Price != b.Price {
			return a.Price < b.Price
		}
	case entity.SortPriceHigh:
		if a.Price != b.Price {
			return a.Price > b.Price
		}
	case entity.SortPopular:
		if a.Views != b.Views {
			return a.Views > b.Views
		}
		if a.FavoriteCount != b.FavoriteCount {
			return a.FavoriteCount > b.FavoriteCount
		}
	default:
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
	}
	return a.ID < b.ID
}

// ApplyItemQuery filters, ranks, sorts and paginates items in memory. It is
// used by stores that cannot express text ranking natively.
func ApplyItemQuery(items []*entity.Item, q entity.ItemQuery) ([]*entity.Item, int64) {
	terms := SearchTerms(q.TextQuery)
	ranked := q.TextQuery != ""

	type scored struct {
		item  *entity.Item
		score float64
	}
	var matches []scored
	for _, item := range items {
		if !MatchesFilters(item, q) {
			continue
		}
		var score float64
		if ranked {
			score = TextScore(item, terms)
			if score == 0 {
				continue
			}
		}
		matches = append(matches, scored{item: item, score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if ranked && matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return ItemLess(matches[i].item, matches[j].item, q.Sort)
	})

	total := int64(len(matches))
	offset := q.Offset()
	if offset < 0 || offset >= len(matches) {
		return []*entity.Item{}, total
	}
	end := len(matches)
	if q.PageSize > 0 && q.PageSize < end-offset {
		end = offset + q.PageSize
	}

	page := make([]*entity.Item, 0, end-offset)
	for _, m := range matches[offset:end] {
		page = append(page, m.item)
	}
	return page, total
}

// RankTrending orders active items by views, then favorites, then recency.
func RankTrending(items []*entity.Item, limit int) []*entity.Item {
	active := make([]*entity.Item, 0, len(items))
	for _, item := range items {
		if item.Status == entity.ItemStatusActive {
			active = append(active, item)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		a, b := active[i], active[j]
		if a.Views != b.Views {
			return a.Views > b.Views
		}
		if a.FavoriteCount != b.FavoriteCount {
			return a.FavoriteCount > b.FavoriteCount
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	if limit > 0 && len(active) > limit {
		active = active[:limit]
	}
	return active
}
