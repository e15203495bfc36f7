// Package service holds supporting services that sit beside the wizard:
// currently the object-storage archive of generated documents.
package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/matahariann/kontrakgen/config"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// ArchiveService uploads a copy of each generated document to object
// storage. The wizard works fine without it; a failed upload never blocks
// the download.
type ArchiveService struct {
	client *minio.Client
	bucket string
	config *config.ArchiveConfig
}

func NewArchiveService(cfg *config.ArchiveConfig) (*ArchiveService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &ArchiveService{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *ArchiveService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// StoreDocument uploads one generated file and returns the object name.
// Objects are grouped by prefix and dated so repeated generations with the
// same filename never overwrite each other.
func (s *ArchiveService) StoreDocument(ctx context.Context, filename string, data []byte) (string, error) {
	objectName := s.ObjectName(filename, time.Now())
	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: docxContentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload document: %w", err)
	}

	return objectName, nil
}

// ObjectName builds the storage key for one upload.
func (s *ArchiveService) ObjectName(filename string, at time.Time) string {
	return fmt.Sprintf("%s/%s/%s", s.config.Prefix, at.Format("2006-01-02"), filename)
}

// PublicURL returns a direct URL for the object (if bucket policy allows).
func (s *ArchiveService) PublicURL(objectName string) string {
	protocol := "http"
	if s.config.UseSSL {
		protocol = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", protocol, s.config.Endpoint, s.bucket, objectName)
}
