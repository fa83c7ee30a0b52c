package mediaRepo

import (
	"context"
	"errors"

	"studiobook/models"
)

var ErrNotFound = errors.New("media item not found")

// MediaRepository stores handles to assets that live in Cloudinary.
type MediaRepository interface {
	Create(ctx context.Context, item *models.MediaItem) error
	GetByID(ctx context.Context, id string) (*models.MediaItem, error)
	// List returns newest first; an empty kind lists everything.
	List(ctx context.Context, kind models.MediaKind) ([]models.MediaItem, error)
	Delete(ctx context.Context, id string) error
}
