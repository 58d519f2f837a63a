package s3blob

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Writer implements domain.BlobWriter against an S3-compatible backend.
// An optional key prefix namespaces all objects, so multiple deployments
// can share one bucket.
type Writer struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewWriter creates a Writer that uploads into the client's bucket. The
// prefix, if non-empty, is prepended to every object key.
func NewWriter(c *Client, prefix string) *Writer {
	return &Writer{
		client: c.s3,
		bucket: c.bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Put uploads data as a single PutObject request. Scan reports are small
// JSON documents, so multipart uploads are unnecessary.
func (w *Writer) Put(ctx context.Context, path string, data io.Reader, contentType string) error {
	key := path
	if w.prefix != "" {
		key = w.prefix + "/" + strings.TrimPrefix(path, "/")
	}

	_, err := w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3blob: put object %s: %w", key, err)
	}
	return nil
}
