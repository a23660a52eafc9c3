// Package s3 stores rendered plots in an S3 bucket and hands out presigned
// GET URLs for the chat client to fetch them.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	pkgerrors "plotbot/pkg/errors"
)

const contentTypePNG = "image/png"

// ObjectPutter is the subset of the S3 client the store uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

// ObjectPresigner is the subset of the S3 presign client the store uses.
type ObjectPresigner interface {
	PresignGetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// ImageStore implements ports.ImageStore on S3.
type ImageStore struct {
	client    ObjectPutter
	presigner ObjectPresigner
	bucket    string
	expiry    time.Duration
	logger    *zap.Logger
}

// NewImageStore creates an S3-backed image store.
func NewImageStore(client ObjectPutter, presigner ObjectPresigner, bucket string, expiry time.Duration, logger *zap.Logger) *ImageStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageStore{
		client:    client,
		presigner: presigner,
		bucket:    bucket,
		expiry:    expiry,
		logger:    logger,
	}
}

// NewImageStoreFromClient wires the store to an S3 client and its presigner.
func NewImageStoreFromClient(client *awss3.Client, bucket string, expiry time.Duration, logger *zap.Logger) *ImageStore {
	return NewImageStore(client, awss3.NewPresignClient(client), bucket, expiry, logger)
}

// Save uploads png under key and returns a presigned GET URL valid for the
// configured expiry.
func (s *ImageStore) Save(ctx context.Context, key string, png []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(png),
		ContentLength: aws.Int64(int64(len(png))),
		ContentType:   aws.String(contentTypePNG),
	})
	if err != nil {
		return "", classify("PutObject", err)
	}

	req, err := s.presigner.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, awss3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", classify("PresignGetObject", err)
	}

	s.logger.Debug("Stored plot image",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("bytes", len(png)),
		zap.Duration("expiry", s.expiry),
	)
	return req.URL, nil
}

// classify maps AWS API failures onto the application error taxonomy.
func classify(operation string, err error) error {
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return pkgerrors.NewStorageError(operation, err)
	}

	switch ae.ErrorCode() {
	case "SlowDown", "ServiceUnavailable", "RequestTimeout", "InternalError":
		return pkgerrors.NewUnavailableError("s3").
			WithCode(ae.ErrorCode()).
			WithCause(fmt.Errorf("%s: %w", operation, err))
	default:
		return pkgerrors.NewStorageError(operation, err).WithCode(ae.ErrorCode())
	}
}
