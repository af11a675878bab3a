package audit

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopAndLogSink(t *testing.T) {
	ctx := context.Background()
	e := NewEvent(ActionSignIn, "alice", "c-1")

	assert.NoError(t, NopSink{}.Record(ctx, e))
	assert.NoError(t, NewLogSink(logging.Nop{}).Record(ctx, e))
}

func TestObjectKey(t *testing.T) {
	e := Event{Action: ActionSignOut, At: time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)}
	key := objectKey(e)
	assert.Regexp(t, regexp.MustCompile(`^audit/2025/03/07/signout-[0-9a-f-]{36}\.json$`), key)
}

func withS3Seams(t *testing.T, put func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)) {
	t.Helper()
	origLoad, origPut := loadDefaultAWSConfig, putObject
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{Region: "us-east-1"}, nil
	}
	putObject = put
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		putObject = origPut
	})
}

func TestS3Sink_Record(t *testing.T) {
	var gotBucket, gotKey string
	var gotBody Event
	withS3Seams(t, func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		gotBucket = aws.ToString(in.Bucket)
		gotKey = aws.ToString(in.Key)
		raw, err := io.ReadAll(in.Body)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			return nil, err
		}
		return &s3.PutObjectOutput{}, nil
	})

	sink, err := NewS3Sink(context.Background(), S3Options{Region: "us-east-1", Bucket: "audit-bucket", BaseEndpoint: "http://localhost:9000"})
	require.NoError(t, err)

	e := NewEvent(ActionSignIn, "alice", "c-1")
	require.NoError(t, sink.Record(context.Background(), e))

	assert.Equal(t, "audit-bucket", gotBucket)
	assert.Contains(t, gotKey, "/signin-")
	assert.Equal(t, "alice", gotBody.Username)
	assert.Equal(t, "c-1", gotBody.ClientID)
}

func TestS3Sink_PutError(t *testing.T) {
	withS3Seams(t, func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, errors.New("bucket gone")
	})

	sink, err := NewS3Sink(context.Background(), S3Options{Bucket: "b"})
	require.NoError(t, err)

	err = sink.Record(context.Background(), NewEvent(ActionSignOut, "alice", "c-1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket gone")
}

func TestNewS3Sink_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}
	defer func() { loadDefaultAWSConfig = orig }()

	_, err := NewS3Sink(context.Background(), S3Options{})
	require.Error(t, err)
}
