// Package storage archives per-session audio recordings to object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	apperrors "github.com/sentrymeet/sentrymeet/errors"
	"github.com/sentrymeet/sentrymeet/pkg/config"
)

// MinIOArchiver stores WAV recordings in a MinIO bucket.
type MinIOArchiver struct {
	client *minio.Client
	bucket string
}

// NewMinIOArchiver creates the archiver and makes sure its bucket exists.
func NewMinIOArchiver(cfg *config.StorageConfig) (*MinIOArchiver, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	a := &MinIOArchiver{client: client, bucket: cfg.BucketName}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}
	return a, nil
}

func (a *MinIOArchiver) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// UploadAudio stores one WAV recording. Transient failures are retried with
// exponential backoff; recordings are fire-and-forget so the caller only
// logs the final error.
func (a *MinIOArchiver) UploadAudio(ctx context.Context, objectName string, wav []byte) error {
	upload := func() error {
		_, err := a.client.PutObject(ctx, a.bucket, objectName,
			bytes.NewReader(wav), int64(len(wav)),
			minio.PutObjectOptions{ContentType: "audio/wav"})
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(upload, policy); err != nil {
		return apperrors.ErrStorageFailed("upload recording", err).WithDetail("object", objectName)
	}
	return nil
}

// RecordingURL returns a presigned download URL for an archived recording.
func (a *MinIOArchiver) RecordingURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	u, err := a.client.PresignedGetObject(ctx, a.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return u.String(), nil
}
