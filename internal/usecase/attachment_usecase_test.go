package usecase

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"droplink/internal/infrastructure/storage"
	"droplink/pkg/errors"
)

// pngHeader is the smallest prefix mimetype recognises as image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestAttachmentUseCase_Upload(t *testing.T) {
	store := storage.NewMemoryStore("/v1/attachments/")
	uc := NewAttachmentUseCase(store, &stubLimiter{}, 1024)
	ctx := context.Background()

	att, err := uc.Upload(ctx, "amy", bytes.NewReader(pngHeader), "dot.png", int64(len(pngHeader)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", att.Type)
	assert.Equal(t, "dot.png", att.Filename)
	assert.Equal(t, int64(len(pngHeader)), att.Size)
	assert.Contains(t, att.URL, "/v1/attachments/")

	rc, meta, err := uc.Open(ctx, att.URL[len("/v1/attachments/"):])
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, "image/png", meta.ContentType)
}

func TestAttachmentUseCase_UploadRejects(t *testing.T) {
	store := storage.NewMemoryStore("/v1/attachments/")
	ctx := context.Background()

	t.Run("not an image", func(t *testing.T) {
		uc := NewAttachmentUseCase(store, &stubLimiter{}, 1024)
		body := []byte("#!/bin/sh\necho hi\n")
		_, err := uc.Upload(ctx, "amy", bytes.NewReader(body), "dot.png", int64(len(body)))
		assert.True(t, errors.Is(err, errors.CodeValidation))
	})

	t.Run("declared size over limit", func(t *testing.T) {
		uc := NewAttachmentUseCase(store, &stubLimiter{}, 8)
		_, err := uc.Upload(ctx, "amy", bytes.NewReader(pngHeader), "dot.png", int64(len(pngHeader)))
		assert.True(t, errors.Is(err, errors.CodeValidation))
	})

	t.Run("undeclared size over limit", func(t *testing.T) {
		uc := NewAttachmentUseCase(store, &stubLimiter{}, 16)
		_, err := uc.Upload(ctx, "amy", bytes.NewReader(pngHeader), "dot.png", -1)
		assert.True(t, errors.Is(err, errors.CodeValidation))
	})

	t.Run("empty", func(t *testing.T) {
		uc := NewAttachmentUseCase(store, &stubLimiter{}, 1024)
		_, err := uc.Upload(ctx, "amy", bytes.NewReader(nil), "dot.png", 0)
		assert.True(t, errors.Is(err, errors.CodeValidation))
	})

	t.Run("rate limited", func(t *testing.T) {
		uc := NewAttachmentUseCase(store, &stubLimiter{deny: true}, 1024)
		_, err := uc.Upload(ctx, "amy", bytes.NewReader(pngHeader), "dot.png", int64(len(pngHeader)))
		assert.True(t, errors.Is(err, errors.CodeTooManyRequests))
	})
}
