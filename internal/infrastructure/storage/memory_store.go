package storage

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/google/uuid"

	"droplink/internal/domain/service"
	"droplink/pkg/errors"
)

type memoryFile struct {
	meta service.StoredFile
	data []byte
}

// MemoryStore holds attachments in process for local runs and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	files     map[string]memoryFile
	urlPrefix string
}

func NewMemoryStore(urlPrefix string) *MemoryStore {
	return &MemoryStore{
		files:     make(map[string]memoryFile),
		urlPrefix: urlPrefix,
	}
}

func (s *MemoryStore) UploadFile(ctx context.Context, file io.Reader, contentType, filename, uploaderID string) (*service.StoredFile, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Internal("Failed to read attachment", err)
	}

	id := uuid.NewString()
	meta := service.StoredFile{
		ObjectName:  id,
		URL:         s.urlPrefix + id,
		ContentType: contentType,
		Filename:    filename,
		Size:        int64(len(data)),
	}

	s.mu.Lock()
	s.files[id] = memoryFile{meta: meta, data: data}
	s.mu.Unlock()

	stored := meta
	return &stored, nil
}

func (s *MemoryStore) OpenFile(ctx context.Context, objectName string) (io.ReadCloser, *service.StoredFile, error) {
	s.mu.RLock()
	f, ok := s.files[objectName]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, errors.NotFound("Attachment", nil)
	}

	meta := f.meta
	return io.NopCloser(bytes.NewReader(f.data)), &meta, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
