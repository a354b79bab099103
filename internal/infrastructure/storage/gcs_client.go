package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"droplink/internal/domain/service"
	"droplink/pkg/errors"
)

type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
}

func NewCloudStorageClient(ctx context.Context, bucketName string, opts ...option.ClientOption) (*CloudStorageClient, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
	}, nil
}

func (c *CloudStorageClient) UploadFile(ctx context.Context, file io.Reader, contentType, filename, uploaderID string) (*service.StoredFile, error) {
	objectName := attachmentObjectName(uploaderID, contentType)

	obj := c.client.Bucket(c.bucketName).Object(objectName)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400"
	wc.Metadata = map[string]string{
		"uploadedBy": uploaderID,
		"filename":   filename,
	}

	size, err := io.Copy(wc, file)
	if err != nil {
		wc.Close()
		return nil, fmt.Errorf("failed to copy file to GCS: %w", err)
	}
	if err := wc.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}

	return &service.StoredFile{
		ObjectName:  objectName,
		URL:         fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, objectName),
		ContentType: contentType,
		Filename:    filename,
		Size:        size,
	}, nil
}

func (c *CloudStorageClient) OpenFile(ctx context.Context, objectName string) (io.ReadCloser, *service.StoredFile, error) {
	reader, err := c.client.Bucket(c.bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return nil, nil, errors.NotFound("Attachment", err)
		}
		return nil, nil, errors.Internal("Failed to open attachment", err)
	}

	return reader, &service.StoredFile{
		ObjectName:  objectName,
		URL:         fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, objectName),
		ContentType: reader.Attrs.ContentType,
		Filename:    path.Base(objectName),
		Size:        reader.Attrs.Size,
	}, nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}

// attachmentObjectName places uploads under attachments/<uploader>/ with an
// extension taken from the sniffed content type.
func attachmentObjectName(uploaderID, contentType string) string {
	ext := ".bin"
	if mt := mimetype.Lookup(contentType); mt != nil {
		ext = mt.Extension()
	}
	return fmt.Sprintf("attachments/%s/%s%s", uploaderID, uuid.NewString(), ext)
}
