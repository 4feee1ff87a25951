package aws

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Client archives uploaded resumes.
type S3Client struct {
	client s3API
	bucket string
	prefix string
}

// NewS3Client builds a client; endpoint is set for S3-compatible stores such as R2 or MinIO.
func NewS3Client(cfg aws.Config, bucket, prefix, endpoint string) *S3Client {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Client{client: client, bucket: bucket, prefix: prefix}
}

// ArchiveResume stores data under <prefix><yyyy/mm/dd>/<id>/<filename> and returns the key.
func (c *S3Client) ArchiveResume(ctx context.Context, id, filename, contentType string, data []byte) (string, error) {
	key := c.prefix + path.Join(time.Now().UTC().Format("2006/01/02"), id, path.Base(filename))

	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return key, nil
}
