// Package storage uploads journal photos and profile pictures to S3 and
// returns the public URL the records persist.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
}

type Uploader struct {
	client *s3.Client
	bucket string
	region string
}

func NewUploader(cfg Config) (*Uploader, error) {
	if cfg.BucketName == "" {
		return nil, errors.New("bucket name is required")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, errors.New("aws credentials are required")
	}

	client := s3.New(s3.Options{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	})

	return &Uploader{
		client: client,
		bucket: cfg.BucketName,
		region: cfg.Region,
	}, nil
}

// Upload stores one multipart file and returns its public URL.
func (u *Uploader) Upload(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	key := ObjectKey(fileHeader.Filename)

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(fileHeader.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to s3: %w", err)
	}

	return u.PublicURL(key), nil
}

func (u *Uploader) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
}

// ObjectKey builds a collision-resistant key from the upload time and the
// original filename. A filename that sanitizes to nothing gets a uuid instead.
func ObjectKey(filename string) string {
	name := sanitizeFilename(filepath.Base(filename))
	if name == "" {
		name = uuid.New().String()
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), name)
}

// sanitizeFilename keeps alphanumerics, dots, hyphens and underscores.
func sanitizeFilename(s string) string {
	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			result.WriteRune(r)
		}
	}
	return strings.Trim(result.String(), ".")
}
