package utils

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"droplink/pkg/errors"
)

const MaxPageSize = 100

// PaginationParams represents pagination parameters
type PaginationParams struct {
	Page     int
	PageSize int
	Offset   int
}

// GetPaginationParams reads page and limit (or pageSize) from the query string.
// Absent values take the defaults; range checks are left to the use case so
// that out-of-range input is rejected rather than clamped.
func GetPaginationParams(c echo.Context, defaultPageSize int) (PaginationParams, error) {
	page, err := QueryInt(c, "page", 1)
	if err != nil {
		return PaginationParams{}, err
	}

	sizeKey := "limit"
	if c.QueryParam(sizeKey) == "" && c.QueryParam("pageSize") != "" {
		sizeKey = "pageSize"
	}
	pageSize, err := QueryInt(c, sizeKey, defaultPageSize)
	if err != nil {
		return PaginationParams{}, err
	}

	return NewPagination(page, pageSize), nil
}

func NewPagination(page, pageSize int) PaginationParams {
	offset := 0
	switch {
	case page <= 1 || pageSize <= 0:
	case page-1 > math.MaxInt/pageSize:
		offset = math.MaxInt
	default:
		offset = (page - 1) * pageSize
	}
	return PaginationParams{
		Page:     page,
		PageSize: pageSize,
		Offset:   offset,
	}
}

// Validate enforces page >= 1 and 1 <= pageSize <= MaxPageSize.
func (p PaginationParams) Validate() error {
	if p.Page < 1 {
		return errors.Validation("page must be at least 1")
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		return errors.Validation("pageSize must be between 1 and 100")
	}
	return nil
}

func QueryInt(c echo.Context, key string, defaultValue int) (int, error) {
	raw := c.QueryParam(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Validation(key + " must be an integer")
	}
	return value, nil
}

// QueryFloat returns nil when the parameter is absent.
func QueryFloat(c echo.Context, key string) (*float64, error) {
	raw := c.QueryParam(key)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.Validation(key + " must be a number")
	}
	return &value, nil
}

// TotalPages is ceil(total/pageSize).
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return pages
}
