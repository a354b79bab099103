package usecase

import (
	"context"

	"droplink/internal/domain/entity"
	"droplink/internal/domain/repository"
	"droplink/internal/domain/service"
	"droplink/pkg/errors"
	"droplink/pkg/logger"
	"droplink/pkg/utils"
)

const (
	DefaultSearchPageSize = 20
	DefaultTrendingLimit  = 10
)

type ItemUseCase struct {
	itemRepo repository.ItemRepository
	userRepo repository.UserRepository
}

func NewItemUseCase(itemRepo repository.ItemRepository, userRepo repository.UserRepository) *ItemUseCase {
	return &ItemUseCase{
		itemRepo: itemRepo,
		userRepo: userRepo,
	}
}

// SellerSummary is the seller block attached to item detail.
type SellerSummary struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	ProfileImage string              `json:"profileImage"`
	Location     entity.UserLocation `json:"location"`
	Rating       float64             `json:"rating"`
}

type ItemDetail struct {
	*entity.Item
	Seller *SellerSummary `json:"seller,omitempty"`
}

// Search only ever returns active listings.
func (uc *ItemUseCase) Search(ctx context.Context, query entity.ItemQuery) (*entity.SearchResult, error) {
	query.Status = ""
	return uc.search(ctx, query)
}

// ListSellerItems pages one seller's listings newest first. An empty status
// means Active.
func (uc *ItemUseCase) ListSellerItems(ctx context.Context, sellerID, status string, page, pageSize int) (*entity.SearchResult, error) {
	if _, err := uc.userRepo.GetByID(ctx, sellerID); err != nil {
		return nil, err
	}
	return uc.search(ctx, entity.ItemQuery{
		SellerID: sellerID,
		Status:   status,
		Sort:     entity.SortNewest,
		Page:     page,
		PageSize: pageSize,
	})
}

func (uc *ItemUseCase) search(ctx context.Context, query entity.ItemQuery) (*entity.SearchResult, error) {
	if query.Sort == "" {
		query.Sort = entity.SortNewest
	}
	if err := service.ValidateItemQuery(query); err != nil {
		return nil, err
	}

	items, total, err := uc.itemRepo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*entity.Item{}
	}

	return &entity.SearchResult{
		Items:      items,
		Total:      total,
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalPages: utils.TotalPages(total, query.PageSize),
	}, nil
}

func (uc *ItemUseCase) Trending(ctx context.Context, limit int) ([]*entity.Item, error) {
	if limit < 1 || limit > service.MaxTrendingSize {
		return nil, errors.Validation("limit must be between 1 and 50")
	}
	items, err := uc.itemRepo.Trending(ctx, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*entity.Item{}
	}
	return items, nil
}

// GetItem returns an item in any status. Views are counted for everyone but
// the seller; a failed increment does not fail the read.
func (uc *ItemUseCase) GetItem(ctx context.Context, itemID, viewerID string) (*ItemDetail, error) {
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if viewerID != item.SellerID {
		if err := uc.itemRepo.IncrementViews(ctx, itemID); err != nil {
			logger.Warn("could not count view for item %s: %v", itemID, err)
		} else {
			item.Views++
		}
	}

	detail := &ItemDetail{Item: item}
	seller, err := uc.userRepo.GetByID(ctx, item.SellerID)
	switch {
	case err == nil:
		detail.Seller = &SellerSummary{
			ID:           seller.ID,
			Name:         seller.Name,
			ProfileImage: seller.ProfileImage,
			Location:     seller.Location,
			Rating:       seller.Rating,
		}
	case !errors.Is(err, errors.CodeNotFound):
		return nil, err
	}
	return detail, nil
}
