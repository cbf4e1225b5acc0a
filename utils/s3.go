package utils

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageUploader stores meal photos in a bucket and returns their public URL.
type ImageUploader struct {
	client  objectPutter
	bucket  string
	baseURL string
}

// NewImageUploader serves URLs from cdnURL when set, otherwise from the bucket's
// virtual-hosted endpoint.
func NewImageUploader(cfg aws.Config, bucket, cdnURL string) *ImageUploader {
	base := strings.TrimRight(cdnURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, cfg.Region)
	}
	return &ImageUploader{client: s3.NewFromConfig(cfg), bucket: bucket, baseURL: base}
}

func (u *ImageUploader) Upload(ctx context.Context, prefix string, data []byte) (string, error) {
	contentType := http.DetectContentType(data)
	ext := ".jpg"
	if contentType == "image/png" {
		ext = ".png"
	}
	key := fmt.Sprintf("meal-photos/%s-%d%s", sanitizeKey(prefix), time.Now().UnixNano(), ext)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return u.baseURL + "/" + key, nil
}

func sanitizeKey(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}
