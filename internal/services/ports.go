package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/models"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/notify"
)

// ObjectStore is the binary side of the system. Delete reports a missing
// object as utils.ErrNotFound; the pipelines treat that as non-fatal.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
	ResolveURL(ctx context.Context, key string) (string, error)
}

// MediaStore is the metadata side for media documents. Set merges fields
// into the document (creating it when absent) so partial re-runs are
// idempotent. ClearEventRefs commits all its updates as one atomic unit.
type MediaStore interface {
	Exists(ctx context.Context, kind models.Kind, id string) (bool, error)
	Get(ctx context.Context, kind models.Kind, id string) (*models.Media, error)
	Set(ctx context.Context, kind models.Kind, id string, fields map[string]any) error
	Delete(ctx context.Context, kind models.Kind, id string) error
	FindByEvent(ctx context.Context, kind models.Kind, eventID string) ([]models.Media, error)
	ClearEventRefs(ctx context.Context, imageIDs, videoIDs []string) error
}

type EventStore interface {
	Add(ctx context.Context, ev *models.Event) (string, error)
	Get(ctx context.Context, id string) (*models.Event, error)
	Delete(ctx context.Context, id string) error
	AddImageID(ctx context.Context, eventID, mediaID string) error
	RemoveImageID(ctx context.Context, eventID, mediaID string) error
}

// Refresher is the read-model refresh contract. Both hooks are idempotent
// and safe to call redundantly; the pipelines never mutate the cache
// directly.
type Refresher interface {
	RefreshMedia(ctx context.Context) error
	RefreshEvents(ctx context.Context) error
}

type Thumbnailer interface {
	Generate(ctx context.Context, kind models.Kind, data []byte) ([]byte, error)
}

// DateInferrer extracts an embedded capture date from a media file, if any.
type DateInferrer func(data []byte) (date string, ok bool)

// MediaService orchestrates the upload and deletion pipelines over the two
// backing stores.
type MediaService struct {
	media    MediaStore
	events   EventStore
	objects  ObjectStore
	thumbs   Thumbnailer
	gallery  Refresher
	notifier notify.Notifier
	infer    DateInferrer
	gate     *ConfirmGate
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewMediaService(
	media MediaStore,
	events EventStore,
	objects ObjectStore,
	thumbs Thumbnailer,
	gallery Refresher,
	notifier notify.Notifier,
	infer DateInferrer,
	confirmTTL time.Duration,
	log *zap.SugaredLogger,
) *MediaService {
	return &MediaService{
		media:    media,
		events:   events,
		objects:  objects,
		thumbs:   thumbs,
		gallery:  gallery,
		notifier: notifier,
		infer:    infer,
		gate:     NewConfirmGate(confirmTTL),
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}
