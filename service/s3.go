package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// DefaultCoverPrefix is the key prefix covers live under when none is configured.
const DefaultCoverPrefix = "covers/"

var (
	ErrUnsupportedCover = errors.New("only jpeg, png and webp covers are allowed")
	ErrForeignCoverKey  = errors.New("key is not a cover")
)

var coverContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// CoverContentType returns the lowercased extension of filename and the
// content type the cover is served with.
func CoverContentType(filename string) (ext, contentType string, err error) {
	ext = strings.ToLower(filepath.Ext(filename))
	contentType, ok := coverContentTypes[ext]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedCover, filename)
	}
	return ext, contentType, nil
}

type CoverBucketConfig struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// Prefix defaults to DefaultCoverPrefix.
	Prefix string
}

// objectAPI is the part of the S3 client covers need.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// CoverBucket stores book cover images in S3.
type CoverBucket struct {
	api    objectAPI
	bucket string
	region string
	prefix string
}

// NewCoverBucket loads the AWS default config for cfg.Region. Static
// credentials are used only when both halves are set.
func NewCoverBucket(ctx context.Context, cfg CoverBucketConfig) (*CoverBucket, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("cover bucket: AWS_S3_BUCKET is required")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("cover bucket: load aws config: %w", err)
	}
	return newCoverBucket(s3.NewFromConfig(awsCfg), cfg), nil
}

func newCoverBucket(api objectAPI, cfg CoverBucketConfig) *CoverBucket {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultCoverPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &CoverBucket{api: api, bucket: cfg.Bucket, region: cfg.Region, prefix: prefix}
}

// Put uploads a cover under a fresh random key and returns that key. The
// type is checked before anything is sent.
func (b *CoverBucket) Put(ctx context.Context, filename string, body io.Reader) (string, error) {
	ext, contentType, err := CoverContentType(filename)
	if err != nil {
		return "", err
	}
	key := b.prefix + uuid.NewString() + ext
	_, err = b.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("cover bucket: put %s: %w", key, err)
	}
	return key, nil
}

// Remove deletes a cover. Keys outside the cover prefix are refused.
func (b *CoverBucket) Remove(ctx context.Context, key string) error {
	if !strings.HasPrefix(key, b.prefix) || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrForeignCoverKey, key)
	}
	_, err := b.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("cover bucket: delete %s: %w", key, err)
	}
	return nil
}

// URL returns the virtual-hosted address of key.
func (b *CoverBucket) URL(key string) string {
	return ObjectURL(b.bucket, b.region, key)
}

func ObjectURL(bucket, region, key string) string {
	return "https://" + bucket + ".s3." + region + ".amazonaws.com/" + (&url.URL{Path: key}).EscapedPath()
}
