package usecase

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"

	"droplink/internal/domain/entity"
	"droplink/internal/domain/service"
	"droplink/internal/infrastructure/ratelimit"
	"droplink/pkg/errors"
)

// sniffLen covers every signature mimetype needs for the allowed image types.
const sniffLen = 3072

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

type AttachmentUseCase struct {
	files       service.FileUploadService
	rateLimiter RateLimiter
	maxBytes    int64
}

func NewAttachmentUseCase(files service.FileUploadService, rateLimiter RateLimiter, maxBytes int64) *AttachmentUseCase {
	return &AttachmentUseCase{
		files:       files,
		rateLimiter: rateLimiter,
		maxBytes:    maxBytes,
	}
}

// Upload stores an image attachment. The content type is detected from the
// bytes; the client-declared type is ignored.
func (uc *AttachmentUseCase) Upload(ctx context.Context, uploaderID string, file io.Reader, filename string, size int64) (*entity.Attachment, error) {
	if allowed, wait := uc.rateLimiter.Allow(uploaderID, ratelimit.ActionUpload); !allowed {
		return nil, errors.TooManyRequests(fmt.Sprintf("Too many uploads, retry in %d seconds", int(wait.Seconds())+1))
	}
	if size > uc.maxBytes {
		return nil, errors.Validation(fmt.Sprintf("file exceeds the %d byte limit", uc.maxBytes))
	}

	br := bufio.NewReaderSize(file, sniffLen)
	header, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, errors.BadRequest("Failed to read file", err)
	}
	if len(header) == 0 {
		return nil, errors.Validation("file is empty")
	}

	mtype := mimetype.Detect(header)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return nil, errors.Validation("file type not allowed: only jpeg, png, gif and webp images are accepted")
	}

	limited := &limitedReader{r: br, remaining: uc.maxBytes}
	stored, err := uc.files.UploadFile(ctx, limited, mtype.String(), filename, uploaderID)
	if err != nil {
		if limited.exceeded {
			return nil, errors.Validation(fmt.Sprintf("file exceeds the %d byte limit", uc.maxBytes))
		}
		return nil, err
	}

	return &entity.Attachment{
		URL:      stored.URL,
		Type:     stored.ContentType,
		Filename: stored.Filename,
		Size:     stored.Size,
	}, nil
}

func (uc *AttachmentUseCase) Open(ctx context.Context, objectName string) (io.ReadCloser, *service.StoredFile, error) {
	return uc.files.OpenFile(ctx, objectName)
}

// limitedReader fails the read once more than remaining bytes arrive, so a
// body without a declared length still cannot exceed the limit.
type limitedReader struct {
	r         io.Reader
	remaining int64
	exceeded  bool
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		l.exceeded = true
		return n, errors.Validation("file too large")
	}
	return n, err
}
