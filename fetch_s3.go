// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// s3API is the part of the S3 client used by [S3Fetcher].
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Fetcher fetches s3://bucket/key URLs. The client is created on first use
// from the default AWS configuration.
type S3Fetcher struct {
	once     sync.Once
	client   s3API
	err      error
	region   string
	endpoint string
}

// S3FetcherOption configures a [S3Fetcher].
type S3FetcherOption func(*S3Fetcher)

// WithS3Client sets the client, the default AWS configuration is not loaded.
func WithS3Client(client *s3.Client) S3FetcherOption {
	return func(f *S3Fetcher) {
		f.client = client
	}
}

// WithS3Region sets the AWS region.
func WithS3Region(region string) S3FetcherOption {
	return func(f *S3Fetcher) {
		f.region = region
	}
}

// WithS3Endpoint sets a custom endpoint (for S3-compatible services like MinIO).
func WithS3Endpoint(endpoint string) S3FetcherOption {
	return func(f *S3Fetcher) {
		f.endpoint = endpoint
	}
}

// NewS3Fetcher returns a fetcher for s3 URLs.
func NewS3Fetcher(opts ...S3FetcherOption) *S3Fetcher {
	f := &S3Fetcher{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// init loads the AWS configuration unless a client was provided.
func (f *S3Fetcher) init(ctx context.Context) error {
	f.once.Do(func() {
		if f.client != nil {
			return
		}

		var loadOpts []func(*config.LoadOptions) error
		if f.region != "" {
			loadOpts = append(loadOpts, config.WithRegion(f.region))
		}
		cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			f.err = fmt.Errorf("%w: loading AWS config: %w", ErrTransport, err)
			return
		}

		f.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			if f.endpoint != "" {
				o.BaseEndpoint = aws.String(f.endpoint)
				o.UsePathStyle = true
			}
		})
	})
	return f.err
}

// Fetch returns the body of the object addressed by rawURL. Missing buckets
// and keys map to [ErrNotFound].
func (f *S3Fetcher) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	bucket, key, err := parseS3URL(rawURL)
	if err != nil {
		return nil, err
	}
	if err := f.init(ctx); err != nil {
		return nil, err
	}

	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		var nsb *types.NoSuchBucket
		if errors.As(err, &nsk) || errors.As(err, &nsb) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, rawURL)
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, rawURL)
		}
		return nil, fmt.Errorf("%w: reading %s: %w", ErrTransport, rawURL, err)
	}
	return out.Body, nil
}

// parseS3URL splits s3://bucket/key into bucket and key.
func parseS3URL(rawURL string) (string, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: invalid url %q: %w", ErrTransport, rawURL, err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if u.Scheme != "s3" || u.Host == "" || key == "" {
		return "", "", fmt.Errorf("%w: invalid s3 url %q", ErrTransport, rawURL)
	}
	return u.Host, key, nil
}
