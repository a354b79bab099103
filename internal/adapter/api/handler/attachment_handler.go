package handler

import (
	"io"
	"strconv"

	"github.com/labstack/echo/v4"

	"droplink/internal/adapter/api/middleware"
	"droplink/internal/usecase"
	"droplink/pkg/errors"
	"droplink/pkg/logger"
	"droplink/pkg/response"
)

type AttachmentHandler struct {
	attachmentUseCase *usecase.AttachmentUseCase
}

func NewAttachmentHandler(attachmentUseCase *usecase.AttachmentUseCase) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentUseCase: attachmentUseCase,
	}
}

// UploadAttachment accepts a multipart "file" field and returns the stored
// attachment, ready to be sent with a message.
func (h *AttachmentHandler) UploadAttachment(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("File is required", err))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to open file", err))
	}
	defer file.Close()

	attachment, err := h.attachmentUseCase.Upload(
		c.Request().Context(),
		middleware.UID(c),
		file,
		fileHeader.Filename,
		fileHeader.Size,
	)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, attachment)
}

// ServeAttachment streams attachments held by the GridFS and in-memory stores.
func (h *AttachmentHandler) ServeAttachment(c echo.Context) error {
	rc, meta, err := h.attachmentUseCase.Open(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	defer rc.Close()

	header := c.Response().Header()
	header.Set(echo.HeaderContentType, meta.ContentType)
	header.Set("Cache-Control", "private, max-age=86400")
	if meta.Size > 0 {
		header.Set(echo.HeaderContentLength, strconv.FormatInt(meta.Size, 10))
	}
	c.Response().WriteHeader(200)

	if _, err := io.Copy(c.Response(), rc); err != nil {
		logger.Warn("attachment %s: stream interrupted: %v", c.Param("id"), err)
	}
	return nil
}
