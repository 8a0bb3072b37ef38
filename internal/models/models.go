package models

import (
	"path/filepath"
	"strings"
	"time"
)

// Kind selects the metadata collection and object-store keyspace a media
// item belongs to.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".webm": true,
	".mkv":  true,
	".avi":  true,
	".m4v":  true,
}

// KindForFilename classifies a filename by extension. Anything that is not a
// known video container is treated as an image.
func KindForFilename(name string) Kind {
	ext := strings.ToLower(filepath.Ext(name))
	if videoExtensions[ext] {
		return KindVideo
	}
	return KindImage
}

// ParseKind validates a kind string coming in over the API.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindImage, KindVideo:
		return Kind(s), true
	}
	return "", false
}

// Media is a single uploaded image or video. ID doubles as the metadata
// document key and is derived from the original filename; FullPath and
// ThumbPath are object-store keys. DownloadURL and ThumbURL are resolved by
// the gallery read model and never persisted.
type Media struct {
	ID          string    `bson:"_id" json:"id"`
	Kind        Kind      `bson:"kind" json:"kind"`
	FullPath    string    `bson:"full_path" json:"full_path"`
	ThumbPath   string    `bson:"thumb_path" json:"thumb_path"`
	Date        string    `bson:"date" json:"date"`
	Event       *string   `bson:"event" json:"event,omitempty"`
	Caption     string    `bson:"caption,omitempty" json:"caption,omitempty"`
	Size        int64     `bson:"size" json:"size"`
	ContentType string    `bson:"content_type" json:"content_type"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`

	DownloadURL string `bson:"-" json:"download_url,omitempty"`
	ThumbURL    string `bson:"-" json:"thumb_url,omitempty"`
}

// Event groups media by occasion. ImageIDs is a denormalized forward
// reference; the authoritative backward reference is each Media's Event
// field. The deletion pipeline keeps the two eventually consistent.
type Event struct {
	ID        string    `bson:"_id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Date      string    `bson:"date" json:"date"`
	Emoji     string    `bson:"emoji" json:"emoji"`
	ImageIDs  []string  `bson:"image_ids" json:"image_ids"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// FullKey returns the object-store key for a media binary.
func FullKey(kind Kind, id string) string {
	if kind == KindVideo {
		return "videos/full/" + id
	}
	return "images/full/" + id
}

// ThumbKey returns the object-store key for a media preview. Video previews
// are JPEG still frames, so they carry their own extension.
func ThumbKey(kind Kind, id string) string {
	if kind == KindVideo {
		return "videos/thumb/" + id + ".jpg"
	}
	return "images/thumb/" + id
}
