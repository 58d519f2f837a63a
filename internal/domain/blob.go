package domain

import (
	"context"
	"io"
)

// BlobWriter stores scan reports in object storage for offline analysis.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
