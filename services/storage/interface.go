package storage

import (
	"context"
	"io"
)

// UploadResult is what the media library keeps about a stored file.
type UploadResult struct {
	PublicID string
	URL      string
	Bytes    int64
	Format   string
}

// FileStorage is the remote asset store.
type FileStorage interface {
	Upload(ctx context.Context, file io.Reader, folder, resourceType string) (*UploadResult, error)
	Delete(ctx context.Context, publicID, resourceType string) error
}
