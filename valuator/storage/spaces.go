package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// SpacesService stores valuation screenshots in a DigitalOcean Space so the
// vision pipeline can reference them after the upload request ends.
type SpacesService struct {
	client *s3.Client
	bucket string
	region string
	root   string
}

func NewSpacesService(key, secret, region, bucket, root string) (*SpacesService, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load spaces config: %w", err)
	}

	return &SpacesService{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
		root:   strings.TrimPrefix(root, "/"),
	}, nil
}

// UploadScreenshot stores one screenshot under the game's prefix and returns
// its public URL.
func (s *SpacesService) UploadScreenshot(ctx context.Context, gameName string, data []byte, contentType string) (string, error) {
	ext := "png"
	if strings.Contains(contentType, "jpeg") || strings.Contains(contentType, "jpg") {
		ext = "jpg"
	}
	key := fmt.Sprintf("%s/%s/%d.%s", s.root, sanitizePathSegment(gameName), time.Now().UnixNano(), ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
		ACL:         "public-read",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload screenshot: %w", err)
	}

	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s", s.bucket, s.region, key), nil
}

// DeleteScreenshot removes an uploaded screenshot by its object key.
func (s *SpacesService) DeleteScreenshot(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete screenshot %s: %w", key, err)
	}
	return nil
}

func (s *SpacesService) GetBucket() string { return s.bucket }
func (s *SpacesService) GetRegion() string { return s.region }

// Object keys keep only characters that are safe in URLs without escaping.
func sanitizePathSegment(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
