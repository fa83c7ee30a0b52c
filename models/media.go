package models

import "time"

// MediaKind is the Cloudinary resource family of a media item.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
)

func ParseMediaKind(s string) (MediaKind, bool) {
	switch MediaKind(s) {
	case MediaImage, MediaVideo, MediaAudio:
		return MediaKind(s), true
	}
	return "", false
}

// MediaItem is a handle to a stored studio asset (gallery photo, showreel, sample).
type MediaItem struct {
	ID        string    `bson:"id" json:"id"`
	Kind      MediaKind `bson:"kind" json:"kind"`
	Title     string    `bson:"title" json:"title"`
	PublicID  string    `bson:"publicId" json:"publicId"`
	URL       string    `bson:"url" json:"url"`
	Bytes     int64     `bson:"bytes" json:"bytes"`
	Format    string    `bson:"format" json:"format"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
