package s3

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// objectPutter is the slice of the S3 API the uploader needs. The SDK
// client satisfies it; tests substitute a fake.
type objectPutter interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

// Uploader copies saved report artifacts into an S3 bucket under
// {prefix}/{country}/{date}.{ext}.
type Uploader struct {
	client    objectPutter
	bucket    string
	keyPrefix string
}

// NewUploader creates an Uploader against the real S3 client. Credentials
// resolve through the SDK's default chain (env vars, shared config,
// instance role).
func NewUploader(ctx context.Context, bucket, region, keyPrefix string) (*Uploader, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &Uploader{
		client:    awss3.NewFromConfig(cfg),
		bucket:    bucket,
		keyPrefix: keyPrefix,
	}, nil
}

// Upload puts one local artifact into the bucket. The object key is built
// from the country and date, keeping the artifact's extension.
func (u *Uploader) Upload(ctx context.Context, localPath, country, date string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	key := path.Join(u.keyPrefix, country, date+filepath.Ext(localPath))
	_, err = u.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentTypeFor(localPath)),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", u.bucket, key, err)
	}
	return nil
}

func contentTypeFor(p string) string {
	switch filepath.Ext(p) {
	case ".csv":
		return "text/csv"
	case ".jsonl":
		return "application/x-ndjson"
	default:
		return "application/octet-stream"
	}
}
