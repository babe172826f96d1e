package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts        []*s3.PutObjectInput
	deletes     []string
	existing    map[string]bool
	created     []string
	policies    []string
	deleteErr   error
	lastOptions s3.Options
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	_, _ = io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(_ context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.existing[aws.ToString(in.Bucket)] {
		return &s3.HeadBucketOutput{}, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeS3) CreateBucket(_ context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created = append(f.created, aws.ToString(in.Bucket))
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeS3) PutBucketPolicy(_ context.Context, in *s3.PutBucketPolicyInput, _ ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error) {
	f.policies = append(f.policies, aws.ToString(in.Policy))
	return &s3.PutBucketPolicyOutput{}, nil
}

func newFakeStore(t *testing.T, fake *fakeS3) *S3Store {
	t.Helper()

	origClient := newS3ClientFromConfig
	t.Cleanup(func() { newS3ClientFromConfig = origClient })
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectAPI {
		for _, fn := range optFns {
			fn(&fake.lastOptions)
		}
		return fake
	}

	store, err := NewS3Store(context.Background(), S3Options{
		Endpoint:  "http://127.0.0.1:9000",
		Region:    "us-east-1",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		PublicURL: "http://127.0.0.1:9000",
	})
	require.NoError(t, err)
	return store
}

func TestNewS3Store_ConfiguresPathStyleEndpoint(t *testing.T) {
	fake := &fakeS3{}
	newFakeStore(t, fake)

	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(fake.lastOptions.BaseEndpoint))
	assert.True(t, fake.lastOptions.UsePathStyle)
}

func TestNewS3Store_ConfigError(t *testing.T) {
	orig := loadDefaultAWSConfig
	defer func() { loadDefaultAWSConfig = orig }()
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	_, err := NewS3Store(context.Background(), S3Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load-fail")
}

func TestS3Store_Upload(t *testing.T) {
	fake := &fakeS3{}
	store := newFakeStore(t, fake)

	url, err := store.Upload(context.Background(), BucketEventPhotos, "abc-fete.png", strings.NewReader("img"), 3, "image/png")

	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/event-photos/abc-fete.png", url)
	require.Len(t, fake.puts, 1)
	assert.Equal(t, "event-photos", aws.ToString(fake.puts[0].Bucket))
	assert.Equal(t, "image/png", aws.ToString(fake.puts[0].ContentType))
	assert.Equal(t, int64(3), aws.ToInt64(fake.puts[0].ContentLength))
}

func TestS3Store_UploadUnknownBucket(t *testing.T) {
	store := newFakeStore(t, &fakeS3{})
	_, err := store.Upload(context.Background(), "nope", "k", strings.NewReader(""), 0, "image/png")
	assert.ErrorIs(t, err, ErrUnknownBucket)
}

func TestS3Store_Remove(t *testing.T) {
	fake := &fakeS3{}
	store := newFakeStore(t, fake)

	require.NoError(t, store.Remove(context.Background(), BucketPostPhotos, "u/1.png", "u/2.png"))
	assert.Equal(t, []string{"u/1.png", "u/2.png"}, fake.deletes)

	fake.deleteErr = errors.New("denied")
	assert.Error(t, store.Remove(context.Background(), BucketPostPhotos, "u/3.png"))
}

func TestS3Store_EnsureBuckets(t *testing.T) {
	fake := &fakeS3{existing: map[string]bool{BucketReportPhotos: true}}
	store := newFakeStore(t, fake)

	require.NoError(t, store.EnsureBuckets(context.Background()))

	assert.ElementsMatch(t, []string{BucketEventPhotos, BucketPostPhotos, BucketProfilePictures}, fake.created)
	assert.Len(t, fake.policies, 3)
	assert.Contains(t, fake.policies[0], "s3:GetObject")
}
