// Package s3 fetches datasets stored in S3-compatible object storage
// (AWS S3 or MinIO) from s3://bucket/key URIs.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrNotFound is returned when the object does not exist.
var ErrNotFound = errors.New("s3 object not found")

// Config holds the client parameters. Credentials fall back to the default
// AWS chain when AccessKeyID is empty.
type Config struct {
	Region          string
	Endpoint        string // optional; enables a custom endpoint such as MinIO
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// Fetcher implements source.Fetcher for s3:// URIs.
type Fetcher struct {
	client *s3.Client
	logger *slog.Logger
}

// New creates a Fetcher. optFns are applied to the S3 client options after
// cfg.
func New(ctx context.Context, cfg Config, logger *slog.Logger, optFns ...func(*s3.Options)) (*Fetcher, error) {
	region := cfg.Region
	if region == "" {
		region = "eu-west-3"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	opts := append([]func(*s3.Options){func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}}, optFns...)

	return &Fetcher{client: s3.NewFromConfig(awsCfg, opts...), logger: logger}, nil
}

// Open streams the object named by uri. The caller closes the body.
func (f *Fetcher) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%s: %w", uri, ErrNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", uri, err)
	}
	f.logger.Debug("s3 object opened", "bucket", bucket, "key", key, "size", aws.ToInt64(out.ContentLength))
	return out.Body, nil
}

// ParseURI splits s3://bucket/key into its bucket and key.
func ParseURI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", fmt.Errorf("parse %q: %w", uri, err)
	}
	if u.Scheme != "s3" {
		return "", "", fmt.Errorf("parse %q: scheme must be s3", uri)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("parse %q: expected s3://bucket/key", uri)
	}
	return u.Host, key, nil
}
