package storage

import (
	"context"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"droplink/internal/domain/service"
	"droplink/pkg/errors"
)

// GridFSStore keeps attachments in MongoDB when no bucket is configured.
// Files are served back through the API at urlPrefix + id.
type GridFSStore struct {
	bucket    *gridfs.Bucket
	urlPrefix string
}

func NewGridFSStore(bucket *gridfs.Bucket, urlPrefix string) *GridFSStore {
	return &GridFSStore{
		bucket:    bucket,
		urlPrefix: urlPrefix,
	}
}

func (s *GridFSStore) UploadFile(ctx context.Context, file io.Reader, contentType, filename, uploaderID string) (*service.StoredFile, error) {
	opts := options.GridFSUpload().SetMetadata(bson.M{
		"contentType": contentType,
		"uploadedBy":  uploaderID,
	})

	stream, err := s.bucket.OpenUploadStream(filename, opts)
	if err != nil {
		return nil, errors.Internal("Failed to open upload stream", err)
	}
	defer stream.Close()

	size, err := io.Copy(stream, file)
	if err != nil {
		stream.Abort()
		return nil, errors.Internal("Failed to store attachment", err)
	}

	id := stream.FileID.(primitive.ObjectID).Hex()
	return &service.StoredFile{
		ObjectName:  id,
		URL:         s.urlPrefix + id,
		ContentType: contentType,
		Filename:    filename,
		Size:        size,
	}, nil
}

func (s *GridFSStore) OpenFile(ctx context.Context, objectName string) (io.ReadCloser, *service.StoredFile, error) {
	id, err := primitive.ObjectIDFromHex(objectName)
	if err != nil {
		return nil, nil, errors.NotFound("Attachment", err)
	}

	stream, err := s.bucket.OpenDownloadStream(id)
	if err != nil {
		if err == gridfs.ErrFileNotFound {
			return nil, nil, errors.NotFound("Attachment", err)
		}
		return nil, nil, errors.Internal("Failed to open attachment", err)
	}

	file := stream.GetFile()
	contentType := "application/octet-stream"
	if file.Metadata != nil {
		if v, ok := file.Metadata.Lookup("contentType").StringValueOK(); ok {
			contentType = v
		}
	}

	return stream, &service.StoredFile{
		ObjectName:  objectName,
		URL:         s.urlPrefix + objectName,
		ContentType: contentType,
		Filename:    file.Name,
		Size:        file.Length,
	}, nil
}

// Close is a no-op; the Mongo client owns the connection.
func (s *GridFSStore) Close() error {
	return nil
}
