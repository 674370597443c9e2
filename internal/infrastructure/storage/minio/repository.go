package minio

import (
	"bytes"
	"context"
	"io"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/EcoExpand-AI/internal/domain/knowledge"
	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EcoExpand-AI/pkg/errors"
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")
	ErrInvalidRequest = errors.New(errors.ErrCodeValidation, "bucket and object key are required")
	ErrClientClosed   = errors.New(errors.ErrCodeServiceUnavailable, "minio client is closed")
)

// ObjectRepository reads and writes objects in the configured bucket.
type ObjectRepository interface {
	knowledge.SnapshotStore
	// Open streams objectKey. The caller closes the reader.
	Open(ctx context.Context, objectKey string) (io.ReadCloser, error)
	// Get reads objectKey fully.
	Get(ctx context.Context, objectKey string) ([]byte, error)
}

type minioRepository struct {
	client *MinIOClient
	logger logging.Logger
}

func NewMinIORepository(client *MinIOClient, log logging.Logger) ObjectRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &minioRepository{client: client, logger: log}
}

// PutSnapshot uploads a rendered graph image under key.
func (r *minioRepository) PutSnapshot(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return ErrInvalidRequest
	}
	if r.client.isClosed() {
		return ErrClientClosed
	}
	opts := minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"source": "knowledge-graph"},
	}
	info, err := r.client.GetClient().PutObject(ctx, r.client.Bucket(), key, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "upload failed")
	}
	r.logger.Debug("snapshot stored", logging.String("key", info.Key), logging.Int64("size", info.Size))
	return nil
}

func (r *minioRepository) Open(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	if objectKey == "" {
		return nil, ErrInvalidRequest
	}
	if r.client.isClosed() {
		return nil, ErrClientClosed
	}
	bucket := r.client.Bucket()
	if _, err := r.client.GetClient().StatObject(ctx, bucket, objectKey, minio.StatObjectOptions{}); err != nil {
		return nil, mapError(err, objectKey)
	}
	obj, err := r.client.GetClient().GetObject(ctx, bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err, objectKey)
	}
	return obj, nil
}

func (r *minioRepository) Get(ctx context.Context, objectKey string) ([]byte, error) {
	rc, err := r.Open(ctx, objectKey)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, mapError(err, objectKey)
	}
	return data, nil
}

func mapError(err error, objectKey string) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrObjectNotFound.WithDetail(objectKey)
	}
	return errors.Wrap(err, errors.ErrCodeStorageError, "download failed").WithDetail(objectKey)
}
