package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"ideaforge/internal/app/model"
)

var _ Archiver = (*GCSStorage)(nil)

type GCSStorage struct {
	client *storage.Client
	bucket string
	prefix string
}

type RemoteObject struct {
	Name    string
	Size    int64
	Updated time.Time
}

func NewGCSStorage(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*GCSStorage, error) {
	if bucket == "" {
		return nil, errors.New("GCS bucket is not configured")
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (s *GCSStorage) Close() error {
	return s.client.Close()
}

// Save uploads the batch as JSON and returns its gs:// URI.
func (s *GCSStorage) Save(ctx context.Context, batch *model.Batch) (string, error) {
	data, err := encodeBatch(batch)
	if err != nil {
		return "", err
	}

	name := s.objectName(batch)
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"
	w.ChunkSize = 0

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to upload batch: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to upload batch: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", s.bucket, name), nil
}

func (s *GCSStorage) List(ctx context.Context) ([]RemoteObject, error) {
	query := &storage.Query{Prefix: s.listPrefix()}

	var objects []RemoteObject
	it := s.client.Bucket(s.bucket).Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}

		if path.Ext(attrs.Name) != ".json" {
			continue
		}
		objects = append(objects, RemoteObject{
			Name:    attrs.Name,
			Size:    attrs.Size,
			Updated: attrs.Updated,
		})
	}

	return objects, nil
}

func (s *GCSStorage) objectName(batch *model.Batch) string {
	return path.Join(s.prefix, batchFileName(batch))
}

func (s *GCSStorage) listPrefix() string {
	prefix := strings.Trim(s.prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}
