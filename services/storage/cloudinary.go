package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// CloudinaryStorage implements FileStorage on Cloudinary's upload API.
type CloudinaryStorage struct {
	cld    *cloudinary.Cloudinary
	logger *zap.Logger
}

// NewCloudinaryStorage builds a client from account credentials.
func NewCloudinaryStorage(cloudName, apiKey, apiSecret string, logger *zap.Logger) (*CloudinaryStorage, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	logger.Info("Cloudinary storage initialized", zap.String("cloudName", cloudName))
	return &CloudinaryStorage{cld: cld, logger: logger}, nil
}

// Upload stores file under folder and returns its permanent identifier and URL.
func (s *CloudinaryStorage) Upload(ctx context.Context, file io.Reader, folder, resourceType string) (*UploadResult, error) {
	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       folder,
		ResourceType: resourceType,
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary: failed to upload file: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary: upload rejected: %s", result.Error.Message)
	}
	if result.PublicID == "" {
		return nil, fmt.Errorf("cloudinary: no public ID returned")
	}
	return &UploadResult{
		PublicID: result.PublicID,
		URL:      result.SecureURL,
		Bytes:    int64(result.Bytes),
		Format:   result.Format,
	}, nil
}

// Delete removes a file. A file that is already gone is not an error.
func (s *CloudinaryStorage) Delete(ctx context.Context, publicID, resourceType string) error {
	result, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	if err != nil {
		return fmt.Errorf("cloudinary: failed to delete file: %w", err)
	}
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("cloudinary: delete %s returned %q", publicID, result.Result)
	}
	return nil
}
