// Package objectstore fetches remote documents so the ingestion pipeline can
// treat every source as a local file.
package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	cfg "github.com/lihongwen/pgvector-kit/internal/config"
	"github.com/lihongwen/pgvector-kit/internal/core"
)

type S3Fetcher struct {
	downloader *manager.Downloader
}

func NewS3Fetcher(ctx context.Context, cfg *cfg.Config) (core.ObjectFetcher, error) {
	if cfg.AwsAccessKey == "" || cfg.AwsSecretKey == "" {
		return nil, fmt.Errorf("AWS credentials not set")
	}
	if cfg.AwsRegion == "" {
		return nil, fmt.Errorf("AWS_REGION not set")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.AwsRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AwsAccessKey, cfg.AwsSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Fetcher{downloader: manager.NewDownloader(client)}, nil
}

// Fetch downloads s3://bucket/key into a temp file named after the object so
// the parser registry still sees the right extension. The caller removes the
// file (and its directory) when done.
func (f *S3Fetcher) Fetch(ctx context.Context, bucket, key string) (string, error) {
	ctxGet, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	dir, err := os.MkdirTemp("", "pgvector-kit-s3-")
	if err != nil {
		return "", fmt.Errorf("temp dir: %w", err)
	}
	local := filepath.Join(dir, filepath.Base(key))

	out, err := os.Create(local)
	if err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("create %s: %w", local, err)
	}
	defer out.Close()

	_, err = f.downloader.Download(ctxGet, out, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("download s3://%s/%s: %w", bucket, key, err)
	}
	return local, nil
}

// ParseS3URI splits s3://bucket/key into its parts.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(uri, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}
