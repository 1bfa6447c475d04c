package s3

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

const (
	DefaultRegion   = "us-east-1"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// LoadConfig resolves AWS credentials from the shared config, optionally for a named profile.
func LoadConfig(ctx context.Context, profile, region string) (*awssdk.Config, error) {
	if region == "" {
		region = DefaultRegion
	}
	opts := []func(*config.LoadOptions) error{
		config.WithDefaultRegion(region),
	}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	_, err = awsCfg.Credentials.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("invalid AWS credentials for profile %s: %w", profile, err)
	}

	return &awsCfg, nil
}

type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher copies finished workbooks to an S3 bucket.
type Publisher struct {
	client Uploader
	bucket string
	prefix string
}

func NewPublisher(client Uploader, bucket, prefix string) (*Publisher, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 client is nil")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	return &Publisher{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

func NewPublisherFromConfig(cfg awssdk.Config, bucket, prefix string) (*Publisher, error) {
	return NewPublisher(s3.NewFromConfig(cfg), bucket, prefix)
}

// Publish uploads the file at localPath under the configured prefix and returns its URI.
func (p *Publisher) Publish(ctx context.Context, localPath string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer file.Close()

	key := path.Join(p.prefix, filepath.Base(localPath))
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      awssdk.String(p.bucket),
		Key:         awssdk.String(key),
		Body:        file,
		ContentType: awssdk.String(xlsxContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to s3://%s/%s: %w", p.bucket, key, err)
	}

	uri := fmt.Sprintf("s3://%s/%s", p.bucket, key)
	zerolog.Ctx(ctx).Info().Str("uri", uri).Msg("workbook published")
	return uri, nil
}
