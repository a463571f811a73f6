package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"weatherline/internal/pkg/logx"
)

// RemoteConfig holds the settings required to connect to S3-compatible storage.
type RemoteConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// s3Fetcher fetches batch objects from S3-compatible storage.
type s3Fetcher struct {
	client *s3.Client
}

// newS3Fetcher initializes the S3 client using a custom configuration that
// supports S3-compatible endpoints.
func newS3Fetcher(cfg RemoteConfig) (*s3Fetcher, error) {
	sdkCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		config.WithRegion("auto"),
	)
	if err != nil {
		logx.Error(err, "Failed to load AWS SDK config")
		return nil, errors.New("failed to initialize S3 client configuration")
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &s3Fetcher{client: client}, nil
}

// Fetch downloads the object addressed by an s3://bucket/key URI.
func (f *s3Fetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	bucket, key, err := splitURI(uri)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
		}
		logx.Error(err, "S3 batch fetch failed", "uri", uri)
		return nil, fmt.Errorf("fetch batch object %s: %w", uri, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read batch object %s: %w", uri, err)
	}
	return data, nil
}

// splitURI splits s3://bucket/key into its bucket and key parts.
func splitURI(uri string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(uri, remoteScheme)
	bucket, key, ok := strings.Cut(trimmed, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: invalid S3 URI %q", ErrNotFound, uri)
	}
	return bucket, key, nil
}
