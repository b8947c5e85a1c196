package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/docme/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *S3Store {
	return NewS3Store(&sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "docme",
	})
}

// stubAWS replaces the AWS constructors with fakes and restores them after
// the test.
func stubAWS(t *testing.T) {
	t.Helper()
	origLoad, origNewS3, origNewPre := loadDefaultAWSConfig, newS3ClientFromConfig, newS3PresignClient
	origPut, origGet := presignPutObject, presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
}

func Test_getPresignClient_AppliesConfig(t *testing.T) {
	stubAWS(t)
	store := newTestStore()

	var region string
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		region = lo.Region
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	pc, err := store.getPresignClient(context.Background())
	require.NoError(t, err)
	require.NotNil(t, pc)
	assert.Equal(t, "us-east-1", region)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, err = store.getPresignClient(context.Background())
	require.EqualError(t, err, "load-fail")
}

func TestPresignPut(t *testing.T) {
	stubAWS(t)
	store := newTestStore()

	var in *s3.PutObjectInput
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, i *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		in = i
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		assert.Equal(t, presignExpiry, po.Expires)
		return &v4.PresignedHTTPRequest{URL: "https://minio/put"}, nil
	}

	url, err := store.PresignPut(context.Background(), "users/u-1/x.png")
	require.NoError(t, err)
	assert.Equal(t, "https://minio/put", url)
	assert.Equal(t, "docme", *in.Bucket)
	assert.Equal(t, "users/u-1/x.png", *in.Key)
	assert.Equal(t, "image/png", *in.ContentType)

	presignPutObject = func(*s3.PresignClient, context.Context, *s3.PutObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("put-fail")
	}
	_, err = store.PresignPut(context.Background(), "k")
	require.ErrorContains(t, err, "presign put: put-fail")
}

func TestPresignGet(t *testing.T) {
	stubAWS(t)
	store := newTestStore()

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, i *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://minio/get/" + *i.Key}, nil
	}

	url, err := store.PresignGet(context.Background(), "users/u-1/x.png")
	require.NoError(t, err)
	assert.Equal(t, "https://minio/get/users/u-1/x.png", url)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, err = store.PresignGet(context.Background(), "k")
	require.ErrorContains(t, err, "presign client: load-fail")
}

func TestImageKey(t *testing.T) {
	key := ImageKey("u-1")
	assert.Regexp(t, regexp.MustCompile(`^users/u-1/\d{4}/\d{2}/\d{2}/[0-9a-f-]{36}\.png$`), key)
	assert.NotEqual(t, key, ImageKey("u-1"))
}
