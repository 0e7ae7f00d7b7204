package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// S3Config describes an S3-compatible bucket.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional, e.g. https://<account>.r2.cloudflarestorage.com or minio.local:9000
	AccessKey string // optional; the default AWS credential chain is used when empty
	SecretKey string
	// PublicBaseURL overrides the URL prefix returned for uploaded objects,
	// e.g. a CDN in front of the bucket.
	PublicBaseURL string
	// ACL is applied to every upload when set (e.g. "public-read"). Buckets
	// with object ownership enforced reject ACLs, so it is empty by default.
	ACL          string
	UsePathStyle bool
}

// servesPublicly reports whether returned URLs are readable without a bucket
// policy: either objects are uploaded with an ACL or a public front is set.
func (c S3Config) servesPublicly() bool {
	return strings.TrimSpace(c.ACL) != "" || strings.TrimSpace(c.PublicBaseURL) != ""
}

type s3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads objects to an S3-compatible bucket.
type S3Store struct {
	client   s3PutAPI
	cfg      S3Config
	endpoint string
	logger   zerolog.Logger
}

// NewS3Store loads AWS configuration and creates the S3 client.
func NewS3Store(ctx context.Context, cfg S3Config, logger zerolog.Logger) (*S3Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("storage: s3 bucket is required")
	}
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	endpoint := normalizeEndpoint(cfg.Endpoint)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	logger.Info().
		Str("bucket", cfg.Bucket).
		Str("region", cfg.Region).
		Str("endpoint", endpoint).
		Msg("s3 store initialized")
	if !cfg.servesPublicly() {
		logger.Warn().
			Str("bucket", cfg.Bucket).
			Msg("uploads carry no ACL and no public base URL is set; image URLs are only readable if the bucket policy grants public read")
	}

	return &S3Store{client: client, cfg: cfg, endpoint: endpoint, logger: logger}, nil
}

// Put uploads data under key and returns the object's public URL.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if s == nil || s.client == nil {
		return "", errors.New("storage: no store configured")
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(cleanKey),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	}
	if s.cfg.ACL != "" {
		input.ACL = types.ObjectCannedACL(s.cfg.ACL)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.logger.Error().Err(err).
			Str("bucket", s.cfg.Bucket).
			Str("key", cleanKey).
			Int("size", len(data)).
			Msg("s3 upload failed")
		return "", fmt.Errorf("storage: put object: %w", err)
	}

	url := s.objectURL(cleanKey)
	s.logger.Debug().
		Str("bucket", s.cfg.Bucket).
		Str("key", cleanKey).
		Int("size", len(data)).
		Str("url", url).
		Msg("s3 upload complete")
	return url, nil
}

// objectURL builds the unsigned URL of an uploaded object.
func (s *S3Store) objectURL(key string) string {
	if base := strings.TrimRight(strings.TrimSpace(s.cfg.PublicBaseURL), "/"); base != "" {
		return base + "/" + key
	}
	if s.endpoint != "" {
		if s.cfg.UsePathStyle {
			return fmt.Sprintf("%s/%s/%s", s.endpoint, s.cfg.Bucket, key)
		}
		scheme, host, _ := strings.Cut(s.endpoint, "://")
		return fmt.Sprintf("%s://%s.%s/%s", scheme, s.cfg.Bucket, host, key)
	}
	if s.cfg.Region != "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.cfg.Bucket, key)
}

func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return ""
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	return endpoint
}

var _ ObjectStore = (*S3Store)(nil)
