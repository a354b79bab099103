package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"droplink/internal/adapter/api/middleware"
	"droplink/internal/domain/entity"
	"droplink/internal/usecase"
	"droplink/pkg/response"
	"droplink/pkg/utils"
)

type MessageHandler struct {
	messageUseCase *usecase.MessageUseCase
}

func NewMessageHandler(messageUseCase *usecase.MessageUseCase) *MessageHandler {
	return &MessageHandler{
		messageUseCase: messageUseCase,
	}
}

type offerRequest struct {
	Amount    float64    `json:"amount" validate:"gt=0"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type attachmentRequest struct {
	URL      string `json:"url" validate:"required"`
	Type     string `json:"type"`
	Filename string `json:"filename"`
	Size     int64  `json:"size" validate:"min=0"`
}

type sendMessageRequest struct {
	ReceiverID  string              `json:"receiverId" validate:"required"`
	ItemID      string              `json:"itemId" validate:"required"`
	Content     string              `json:"content" validate:"required"`
	Type        string              `json:"type" validate:"omitempty,oneof=text image offer"`
	Offer       *offerRequest       `json:"offer,omitempty"`
	Attachments []attachmentRequest `json:"attachments,omitempty" validate:"omitempty,max=10,dive"`
}

func (h *MessageHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	input := usecase.SendMessageInput{
		ReceiverID: req.ReceiverID,
		ItemID:     req.ItemID,
		Content:    req.Content,
		Type:       req.Type,
	}
	if req.Offer != nil {
		input.Offer = &usecase.OfferInput{Amount: req.Offer.Amount, ExpiresAt: req.Offer.ExpiresAt}
	}
	for _, a := range req.Attachments {
		input.Attachments = append(input.Attachments, entity.Attachment{
			URL:      a.URL,
			Type:     a.Type,
			Filename: a.Filename,
			Size:     a.Size,
		})
	}

	message, err := h.messageUseCase.SendMessage(c.Request().Context(), middleware.UID(c), input)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, message)
}

func (h *MessageHandler) ListConversations(c echo.Context) error {
	limit, err := utils.QueryInt(c, "limit", usecase.DefaultConversationLimit)
	if err != nil {
		return response.Error(c, err)
	}

	conversations, err := h.messageUseCase.ListConversations(c.Request().Context(), middleware.UID(c), limit)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, conversations)
}

// GetConversation returns a page of messages and marks the caller's unread
// messages in it as read.
func (h *MessageHandler) GetConversation(c echo.Context) error {
	pagination, err := utils.GetPaginationParams(c, usecase.DefaultMessagePageSize)
	if err != nil {
		return response.Error(c, err)
	}

	messages, err := h.messageUseCase.GetConversation(
		c.Request().Context(),
		middleware.UID(c),
		c.Param("key"),
		pagination.Page,
		pagination.PageSize,
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"messages": messages,
		"page":     pagination.Page,
		"pageSize": pagination.PageSize,
	})
}

func (h *MessageHandler) MarkConversationRead(c echo.Context) error {
	updated, err := h.messageUseCase.MarkConversationRead(c.Request().Context(), middleware.UID(c), c.Param("key"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{
		"updated": updated,
	})
}

func (h *MessageHandler) MarkMessageRead(c echo.Context) error {
	if err := h.messageUseCase.MarkMessageRead(c.Request().Context(), middleware.UID(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{
		"message": "Message marked as read",
	})
}

func (h *MessageHandler) DeleteMessage(c echo.Context) error {
	if err := h.messageUseCase.DeleteMessage(c.Request().Context(), middleware.UID(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{
		"message": "Message deleted",
	})
}
