package handler

import (
	"github.com/labstack/echo/v4"

	"droplink/internal/domain/repository"
	"droplink/internal/usecase"
	"droplink/pkg/response"
)

type DevTokenHandler struct {
	issuer   usecase.TokenIssuer
	userRepo repository.UserRepository
}

func NewDevTokenHandler(issuer usecase.TokenIssuer, userRepo repository.UserRepository) *DevTokenHandler {
	return &DevTokenHandler{
		issuer:   issuer,
		userRepo: userRepo,
	}
}

// GenerateUserToken mints a token for an existing user. Only mounted in
// development.
func (h *DevTokenHandler) GenerateUserToken(c echo.Context) error {
	user, err := h.userRepo.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	token, err := h.issuer.GenerateToken(c.Request().Context(), user.ID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"token": token,
		"user":  user.Profile(),
	})
}
