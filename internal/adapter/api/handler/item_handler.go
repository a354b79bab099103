package handler

import (
	"github.com/labstack/echo/v4"

	"droplink/internal/adapter/api/middleware"
	"droplink/internal/domain/entity"
	"droplink/internal/usecase"
	"droplink/pkg/response"
	"droplink/pkg/utils"
)

type ItemHandler struct {
	itemUseCase *usecase.ItemUseCase
}

func NewItemHandler(itemUseCase *usecase.ItemUseCase) *ItemHandler {
	return &ItemHandler{
		itemUseCase: itemUseCase,
	}
}

func (h *ItemHandler) SearchItems(c echo.Context) error {
	pagination, err := utils.GetPaginationParams(c, usecase.DefaultSearchPageSize)
	if err != nil {
		return response.Error(c, err)
	}
	minPrice, err := utils.QueryFloat(c, "minPrice")
	if err != nil {
		return response.Error(c, err)
	}
	maxPrice, err := utils.QueryFloat(c, "maxPrice")
	if err != nil {
		return response.Error(c, err)
	}

	result, err := h.itemUseCase.Search(c.Request().Context(), entity.ItemQuery{
		TextQuery:   c.QueryParam("search"),
		Category:    c.QueryParam("category"),
		Subcategory: c.QueryParam("subcategory"),
		MinPrice:    minPrice,
		MaxPrice:    maxPrice,
		Condition:   c.QueryParam("condition"),
		Province:    c.QueryParam("province"),
		City:        c.QueryParam("city"),
		District:    c.QueryParam("district"),
		Sort:        c.QueryParam("sort"),
		Page:        pagination.Page,
		PageSize:    pagination.PageSize,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, result.Items, result.Total, result.Page, result.PageSize)
}

func (h *ItemHandler) ListSellerItems(c echo.Context) error {
	pagination, err := utils.GetPaginationParams(c, usecase.DefaultSearchPageSize)
	if err != nil {
		return response.Error(c, err)
	}

	result, err := h.itemUseCase.ListSellerItems(c.Request().Context(), c.Param("id"), c.QueryParam("status"), pagination.Page, pagination.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, result.Items, result.Total, result.Page, result.PageSize)
}

func (h *ItemHandler) TrendingItems(c echo.Context) error {
	limit, err := utils.QueryInt(c, "limit", usecase.DefaultTrendingLimit)
	if err != nil {
		return response.Error(c, err)
	}

	items, err := h.itemUseCase.Trending(c.Request().Context(), limit)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, items)
}

func (h *ItemHandler) GetItem(c echo.Context) error {
	item, err := h.itemUseCase.GetItem(c.Request().Context(), c.Param("id"), middleware.UID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, item)
}
