package gallery

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/models"
)

type MediaLister interface {
	List(ctx context.Context, kind models.Kind) ([]models.Media, error)
}

type EventLister interface {
	List(ctx context.Context) ([]models.Event, error)
}

// URLResolver turns an object key into a retrieval URL (presigned, possibly
// cached upstream).
type URLResolver func(ctx context.Context, key string) (string, error)

// Gallery is the process-wide cached view of media and events. It is mutated
// only by its own refresh operations; the pipelines request refreshes and
// read through the accessors, which avoids torn reads during concurrent
// uploads and deletes from the same session.
type Gallery struct {
	media   MediaLister
	events  EventLister
	resolve URLResolver
	log     *zap.SugaredLogger

	mu          sync.RWMutex
	cachedMedia []models.Media
	cachedEv    []models.Event
}

func New(media MediaLister, events EventLister, resolve URLResolver, log *zap.SugaredLogger) *Gallery {
	return &Gallery{media: media, events: events, resolve: resolve, log: log}
}

// RefreshMedia re-reads both media collections and swaps the cached view.
// Idempotent and safe to call redundantly. URL resolution failures degrade to
// entries without URLs rather than failing the refresh.
func (g *Gallery) RefreshMedia(ctx context.Context) error {
	images, err := g.media.List(ctx, models.KindImage)
	if err != nil {
		return fmt.Errorf("refresh media: %w", err)
	}
	videos, err := g.media.List(ctx, models.KindVideo)
	if err != nil {
		return fmt.Errorf("refresh media: %w", err)
	}

	all := make([]models.Media, 0, len(images)+len(videos))
	all = append(all, images...)
	all = append(all, videos...)
	for i := range all {
		m := &all[i]
		if url, err := g.resolve(ctx, m.FullPath); err == nil {
			m.DownloadURL = url
		} else {
			g.log.Warnf("resolve url for %s: %v", m.FullPath, err)
		}
		if url, err := g.resolve(ctx, m.ThumbPath); err == nil {
			m.ThumbURL = url
		} else {
			g.log.Warnf("resolve url for %s: %v", m.ThumbPath, err)
		}
	}

	g.mu.Lock()
	g.cachedMedia = all
	g.mu.Unlock()
	return nil
}

// RefreshEvents re-reads the events collection and swaps the cached view.
func (g *Gallery) RefreshEvents(ctx context.Context) error {
	evs, err := g.events.List(ctx)
	if err != nil {
		return fmt.Errorf("refresh events: %w", err)
	}
	g.mu.Lock()
	g.cachedEv = evs
	g.mu.Unlock()
	return nil
}

func (g *Gallery) Media() []models.Media {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]models.Media, len(g.cachedMedia))
	copy(out, g.cachedMedia)
	return out
}

func (g *Gallery) Events() []models.Event {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]models.Event, len(g.cachedEv))
	copy(out, g.cachedEv)
	return out
}
