package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appconfig "scenecraft-backend/internal/config"
)

// Asset folders under the bucket
const (
	AudioPrefix      = "scenesync/audio"
	StoryboardPrefix = "scenesync/storyboards"
)

// S3Service uploads project assets (sequence audio, storyboard images)
type S3Service struct {
	client *s3.Client
	bucket string
	region string
}

// NewS3Service creates the S3 client. Returns nil when the bucket is
// unconfigured; upload endpoints report 503 in that case.
func NewS3Service(ctx context.Context, cfg appconfig.S3Config) (*S3Service, error) {
	if cfg.BucketName == "" {
		log.Println("[Storage] AWS_S3_BUCKET not set, uploads disabled")
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	log.Printf("[Storage] S3 initialized: bucket=%s, region=%s", cfg.BucketName, cfg.Region)

	return &S3Service{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.BucketName,
		region: cfg.Region,
	}, nil
}

// Upload stores one object and returns its public URL. The key is
// generated under the given prefix; the original filename only
// contributes its extension.
func (s *S3Service) Upload(ctx context.Context, prefix, filename, contentType string, data []byte) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", "", err
	}

	log.Printf("[Storage] Uploaded %s (%d bytes)", key, len(data))
	return s.PublicURL(key), key, nil
}

// Delete removes one object. Failures are logged, not propagated;
// orphaned objects are acceptable while dangling DB rows are not.
func (s *S3Service) Delete(ctx context.Context, key string) {
	if s == nil || key == "" {
		return
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Printf("[Storage] Failed to delete %s: %v", key, err)
	}
}

// PublicURL builds the virtual-hosted URL for an object key
func (s *S3Service) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// KeyFromURL recovers the object key from a URL produced by PublicURL.
// Returns "" for foreign URLs so callers never delete objects this
// service did not create.
func (s *S3Service) KeyFromURL(url string) string {
	if s == nil {
		return ""
	}
	base := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucket, s.region)
	if !strings.HasPrefix(url, base) {
		return ""
	}
	return strings.TrimPrefix(url, base)
}
