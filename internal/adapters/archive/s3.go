package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/athebyme/catalog-sync/pkg/jsonl"
)

// ObjectPutter часть s3.Client, которая нужна архиву
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options параметры архива
type Options struct {
	Bucket   string
	Region   string
	Prefix   string
	Endpoint string
}

// S3Archiver сохраняет копии выгрузок JSONL в S3
type S3Archiver struct {
	client ObjectPutter
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Archiver создает архив на основе стандартной цепочки учетных данных AWS
func NewS3Archiver(ctx context.Context, opts Options) (*S3Archiver, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3ArchiverWithClient(client, opts.Bucket, opts.Prefix), nil
}

func NewS3ArchiverWithClient(client ObjectPutter, bucket, prefix string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

// ObjectKey строит ключ вида {prefix}/{shop}/{timestamp}-{uuid}.jsonl
func (a *S3Archiver) ObjectKey(shopDomain string) string {
	name := fmt.Sprintf("%s-%s.jsonl", a.now().UTC().Format("20060102T150405Z"), uuid.New().String())
	return path.Join(a.prefix, shopDomain, name)
}

// Archive сохраняет payload и возвращает ключ объекта
func (a *S3Archiver) Archive(ctx context.Context, shopDomain string, payload []byte) (string, error) {
	key := a.ObjectKey(shopDomain)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(payload),
		ContentLength: aws.Int64(int64(len(payload))),
		ContentType:   aws.String(jsonl.ContentType),
		Metadata:      map[string]string{"shop-domain": shopDomain},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload payload to S3: %w", err)
	}

	return key, nil
}
