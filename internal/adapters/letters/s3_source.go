package letters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"present-delivery-service/internal/pkg/errs"
	"present-delivery-service/internal/platform/obs"
	"present-delivery-service/internal/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type objectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source implements LetterSource by reading letter images from S3.
type S3Source struct {
	client objectGetter
	logger *slog.Logger
}

func NewS3Source(client objectGetter, logger *slog.Logger) *S3Source {
	return &S3Source{client: client, logger: logger.With("component", "s3_source")}
}

// NewS3Client builds a client pinned to the bucket's region.
func NewS3Client(cfg aws.Config, region string) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if region != "" {
			o.Region = region
		}
	})
}

func (s *S3Source) Fetch(ctx context.Context, loc ports.ObjectLocator) (_ []byte, err error) {
	const op = "s3.Fetch"
	defer obs.Time(ctx, s.logger, op)(&err)

	if loc.Bucket == "" || loc.Key == "" {
		return nil, errs.FetchError(op, errors.New("bucket and key are required"))
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, errs.FetchError(op, fmt.Errorf("get s3://%s/%s: %w", loc.Bucket, loc.Key, err))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errs.FetchError(op, fmt.Errorf("read s3://%s/%s: %w", loc.Bucket, loc.Key, err))
	}

	s.logger.InfoContext(ctx, "letter image fetched", "bucket", loc.Bucket, "key", loc.Key, "bytes", len(data))
	return data, nil
}
