package archive

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Archiver_Archive(t *testing.T) {
	p := &fakePutter{}
	a := NewS3ArchiverWithClient(p, "bucket", "catalog-sync")
	a.now = func() time.Time { return time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC) }

	key, err := a.Archive(context.Background(), "demo.myshopify.com", []byte("{}\n{}"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "catalog-sync/demo.myshopify.com/20250301T123000Z-"), key)
	assert.True(t, strings.HasSuffix(key, ".jsonl"))
	assert.Equal(t, "bucket", aws.ToString(p.input.Bucket))
	assert.Equal(t, key, aws.ToString(p.input.Key))
	assert.Equal(t, "application/x-jsonlines", aws.ToString(p.input.ContentType))
	assert.Equal(t, []byte("{}\n{}"), p.body)
}

func TestS3Archiver_Error(t *testing.T) {
	a := NewS3ArchiverWithClient(&fakePutter{err: errors.New("denied")}, "bucket", "")
	_, err := a.Archive(context.Background(), "demo.myshopify.com", nil)
	assert.ErrorContains(t, err, "denied")
}
