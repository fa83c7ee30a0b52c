package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	mediaRepo "studiobook/database/repository/media"
	"studiobook/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const mediaRoot = "studio"

// MediaService manages the studio's public gallery, showreels and samples.
type MediaService struct {
	files  FileStorage
	repo   mediaRepo.MediaRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewMediaService(files FileStorage, repo mediaRepo.MediaRepository, logger *zap.Logger) *MediaService {
	return &MediaService{files: files, repo: repo, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// resourceType maps a media kind onto Cloudinary's resource families; audio
// is stored as "video".
func resourceType(kind models.MediaKind) string {
	if kind == models.MediaImage {
		return "image"
	}
	return "video"
}

// Upload stores the file under studio/<kind>s and records it.
func (s *MediaService) Upload(ctx context.Context, kind models.MediaKind, title string, file io.Reader) (*models.MediaItem, error) {
	if s.files == nil {
		return nil, errors.New("media storage is not configured")
	}
	if _, ok := models.ParseMediaKind(string(kind)); !ok {
		return nil, models.NewValidationError("unknown media kind %q", kind)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, models.NewValidationError("title is required")
	}

	folder := fmt.Sprintf("%s/%ss", mediaRoot, kind)
	res, err := s.files.Upload(ctx, file, folder, resourceType(kind))
	if err != nil {
		s.logger.Error("Media upload failed", zap.String("kind", string(kind)), zap.Error(err))
		return nil, err
	}

	item := &models.MediaItem{
		ID:        uuid.NewString(),
		Kind:      kind,
		Title:     title,
		PublicID:  res.PublicID,
		URL:       res.URL,
		Bytes:     res.Bytes,
		Format:    res.Format,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		// Do not leave an orphan in the bucket.
		if delErr := s.files.Delete(ctx, res.PublicID, resourceType(kind)); delErr != nil {
			s.logger.Warn("Failed to clean up orphaned upload", zap.String("publicID", res.PublicID), zap.Error(delErr))
		}
		return nil, err
	}
	s.logger.Info("Media uploaded", zap.String("mediaID", item.ID), zap.String("publicID", item.PublicID))
	return item, nil
}

func (s *MediaService) List(ctx context.Context, kind string) ([]models.MediaItem, error) {
	if kind == "" {
		return s.repo.List(ctx, "")
	}
	k, ok := models.ParseMediaKind(kind)
	if !ok {
		return nil, models.NewValidationError("unknown media kind %q", kind)
	}
	return s.repo.List(ctx, k)
}

// Delete removes the remote file first, then the record.
func (s *MediaService) Delete(ctx context.Context, id string) error {
	item, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, mediaRepo.ErrNotFound) {
		return models.NewNotFoundError("media", id)
	}
	if err != nil {
		return err
	}
	if s.files != nil {
		if err := s.files.Delete(ctx, item.PublicID, resourceType(item.Kind)); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, mediaRepo.ErrNotFound) {
		return err
	}
	s.logger.Info("Media deleted", zap.String("mediaID", id))
	return nil
}
