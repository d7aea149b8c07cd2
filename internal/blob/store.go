// Package blob adapts the object store holding rendered invoice artifacts.
// A missing configuration degrades to a disabled store; callers treat
// upload failure as a non-fatal condition.
package blob

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/railzwaylabs/tably/internal/config"
	"go.uber.org/zap"
)

var ErrDisabled = errors.New("blob_store_disabled")

type Store interface {
	Enabled() bool
	Put(ctx context.Context, key string, data []byte, contentType string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type minioStore struct {
	client *minio.Client
	bucket string
}

func New(cfg config.Config, log *zap.Logger) (Store, error) {
	if cfg.Storage.Endpoint == "" {
		log.Named("blob").Info("blob store not configured, artifacts disabled")
		return disabledStore{}, nil
	}

	client, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioStore{client: client, bucket: cfg.Storage.Bucket}, nil
}

func (s *minioStore) Enabled() bool { return true }

func (s *minioStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (s *minioStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

type disabledStore struct{}

func (disabledStore) Enabled() bool { return false }

func (disabledStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return ErrDisabled
}

func (disabledStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "", ErrDisabled
}
