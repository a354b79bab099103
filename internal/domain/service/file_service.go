package service

import (
	"context"
	"io"
)

// StoredFile describes an uploaded attachment. ObjectName is the backend's
// key; URL is what clients fetch.
type StoredFile struct {
	ObjectName  string
	URL         string
	ContentType string
	Filename    string
	Size        int64
}

type FileUploadService interface {
	UploadFile(ctx context.Context, file io.Reader, contentType, filename, uploaderID string) (*StoredFile, error)
	OpenFile(ctx context.Context, objectName string) (io.ReadCloser, *StoredFile, error)
	Close() error
}
