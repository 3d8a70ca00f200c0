// Package images serves country gallery images out of an S3-compatible
// bucket, handing presigned GET URLs to the API so the bucket can stay
// private.
package images

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/doraapp/dora/internal/model"
)

const presignTTL = 15 * time.Minute

// Config holds S3-compatible storage configuration. Endpoint is optional and
// allows MinIO or other S3-compatible backends.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Configured reports whether enough settings are present to reach a bucket.
func (c Config) Configured() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Store lists images for a country. Objects are keyed "<code>/<filename>".
type Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

func NewStore(cfg Config) *Store {
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}
	client := s3.New(opts)
	return &Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}
}

// List returns presigned URLs for every object under the country's prefix.
func (s *Store) List(ctx context.Context, countryCode string) ([]model.CountryImage, error) {
	prefix := strings.ToUpper(strings.TrimSpace(countryCode)) + "/"

	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("list images for %s: %w", countryCode, err)
	}

	var images []model.CountryImage
	for _, obj := range out.Contents {
		if obj.Key == nil || strings.HasSuffix(*obj.Key, "/") {
			continue
		}
		req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    obj.Key,
		}, s3.WithPresignExpires(presignTTL))
		if err != nil {
			return nil, fmt.Errorf("presign %s: %w", *obj.Key, err)
		}
		images = append(images, model.CountryImage{Key: *obj.Key, URL: req.URL})
	}
	return images, nil
}
