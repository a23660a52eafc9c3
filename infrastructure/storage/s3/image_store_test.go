package s3

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "plotbot/pkg/errors"
)

type fakePutter struct {
	input *awss3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	f.input = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &awss3.PutObjectOutput{}, nil
}

type fakePresigner struct {
	err error
}

func (f *fakePresigner) PresignGetObject(ctx context.Context, in *awss3.GetObjectInput, optFns ...func(*awss3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	var opts awss3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return &v4.PresignedHTTPRequest{
		URL:    "https://" + aws.ToString(in.Bucket) + ".example/" + aws.ToString(in.Key) + "?expires=" + opts.Expires.String(),
		Method: "GET",
	}, nil
}

func TestImageStore_Save(t *testing.T) {
	putter := &fakePutter{}
	store := NewImageStore(putter, &fakePresigner{}, "plots", 10*time.Minute, nil)

	got, err := store.Save(context.Background(), "plots/req-1/sin.png", []byte("png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "https://plots.example/plots/req-1/sin.png?expires=10m0s", got)
	assert.Equal(t, "plots", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "plots/req-1/sin.png", aws.ToString(putter.input.Key))
	assert.Equal(t, "image/png", aws.ToString(putter.input.ContentType))
	assert.Equal(t, int64(9), aws.ToInt64(putter.input.ContentLength))
	assert.Equal(t, []byte("png-bytes"), putter.body)
}

func TestImageStore_SaveErrors(t *testing.T) {
	tests := []struct {
		name     string
		putErr   error
		presign  error
		wantType pkgerrors.ErrorType
		wantCode string
	}{
		{
			name:     "missing bucket",
			putErr:   &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "bucket does not exist"},
			wantType: pkgerrors.ErrorTypeStorage,
			wantCode: "NoSuchBucket",
		},
		{
			name:     "throttled",
			putErr:   &smithy.GenericAPIError{Code: "SlowDown", Message: "reduce your request rate"},
			wantType: pkgerrors.ErrorTypeUnavailable,
			wantCode: "SlowDown",
		},
		{
			name:     "transport",
			putErr:   errors.New("dial tcp: i/o timeout"),
			wantType: pkgerrors.ErrorTypeStorage,
		},
		{
			name:     "presign",
			presign:  errors.New("no credentials"),
			wantType: pkgerrors.ErrorTypeStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewImageStore(&fakePutter{err: tt.putErr}, &fakePresigner{err: tt.presign}, "plots", time.Minute, nil)

			_, err := store.Save(context.Background(), "k.png", []byte("x"))
			require.Error(t, err)

			appErr := pkgerrors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantType, appErr.Type)
			assert.Equal(t, tt.wantCode, appErr.Code)
		})
	}
}

func TestImageStore_PresignsWithRealSigner(t *testing.T) {
	client := awss3.New(awss3.Options{
		Region: "ap-northeast-1",
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "secret"}, nil
		}),
	})
	store := NewImageStore(&fakePutter{}, awss3.NewPresignClient(client), "plotbot-images", 10*time.Minute, nil)

	raw, err := store.Save(context.Background(), "plots/req-1/cos.png", []byte("png"))
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(u.Path, "/plots/req-1/cos.png"))
	assert.Contains(t, u.Host+u.Path, "plotbot-images")
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}
