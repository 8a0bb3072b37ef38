package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/metrics"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/models"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/notify"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/utils"
)

// ArmDelete is the first activation of the two-step confirmation: it records
// the target and returns a token without touching either store.
func (s *MediaService) ArmDelete(target DeleteTarget) string {
	return s.gate.Arm(target)
}

// CancelDelete discards an armed confirmation with no side effects.
func (s *MediaService) CancelDelete(token string) {
	s.gate.Cancel(token)
}

// ConfirmDelete is the second activation: it consumes the token and executes
// the deletion. The token is consumed even when the cascade fails, so the
// gate is never left armed after an attempt, and every attempt ends in a
// notification.
func (s *MediaService) ConfirmDelete(ctx context.Context, token string) error {
	target, err := s.gate.Take(token)
	if err != nil {
		return err
	}
	switch target.Kind {
	case TargetEvent:
		err = s.DeleteEvent(ctx, target.ID)
	default:
		err = s.DeleteMedia(ctx, target.MediaKind, target.ID)
	}
	if err != nil {
		s.notifier.Notify(ctx, fmt.Sprintf("Delete of %s failed", target.ID), notify.SeverityError)
		return err
	}
	return nil
}

// DeleteMedia cascades a single item: both binaries, then metadata, then the
// reverse reference on its event. A missing binary is non-fatal (a prior
// partial run may have removed it); any other binary failure blocks the
// metadata delete so the store never references a binary in an unknown
// state.
func (s *MediaService) DeleteMedia(ctx context.Context, kind models.Kind, id string) error {
	item, err := s.media.Get(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("load %s/%s: %w", kind, id, err)
	}

	for _, key := range []string{item.FullPath, item.ThumbPath} {
		if key == "" {
			continue
		}
		if err := s.objects.Delete(ctx, key); err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				s.log.Infof("binary %s already removed", key)
				continue
			}
			return fmt.Errorf("%w: delete binary %s: %v", utils.ErrStoreFailure, key, err)
		}
	}

	if err := s.media.Delete(ctx, kind, id); err != nil && !errors.Is(err, utils.ErrNotFound) {
		return fmt.Errorf("%w: delete metadata %s: %v", utils.ErrStoreFailure, id, err)
	}

	if item.Event != nil && *item.Event != "" {
		if err := s.events.RemoveImageID(ctx, *item.Event, id); err != nil && !errors.Is(err, utils.ErrNotFound) {
			return fmt.Errorf("%w: unlink %s from event %s: %v", utils.ErrStoreFailure, id, *item.Event, err)
		}
	}

	if err := s.gallery.RefreshMedia(ctx); err != nil {
		return fmt.Errorf("refresh after delete: %w", err)
	}
	s.notifier.Notify(ctx, fmt.Sprintf("Deleted %s", id), notify.SeveritySuccess)
	metrics.MediaDeletesTotal.Inc()
	return nil
}

// DeleteEvent cascades an event deletion. Linked items are found by a
// reconciliation pass over both the query route (media whose event field
// matches) and the event's own denormalized id list, since the two can
// drift. All reference clears commit as one batch; items whose documents no
// longer exist are skipped silently.
func (s *MediaService) DeleteEvent(ctx context.Context, id string) error {
	ev, err := s.events.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load event %s: %w", id, err)
	}

	imageIDs, videoIDs, err := s.reconcileLinked(ctx, ev)
	if err != nil {
		return err
	}

	if err := s.events.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: delete event %s: %v", utils.ErrStoreFailure, id, err)
	}

	if err := s.media.ClearEventRefs(ctx, imageIDs, videoIDs); err != nil {
		return fmt.Errorf("%w: clear refs for event %s: %v", utils.ErrStoreFailure, id, err)
	}

	if err := s.gallery.RefreshMedia(ctx); err != nil {
		return fmt.Errorf("refresh after event delete: %w", err)
	}
	if err := s.gallery.RefreshEvents(ctx); err != nil {
		return fmt.Errorf("refresh after event delete: %w", err)
	}
	s.notifier.Notify(ctx, fmt.Sprintf("Deleted event %q", ev.Title), notify.SeveritySuccess)
	metrics.EventDeletesTotal.Inc()
	return nil
}

// reconcileLinked unions the media found by querying each collection on the
// event field with the ids in the event's own list, keeping only ids whose
// documents still exist.
func (s *MediaService) reconcileLinked(ctx context.Context, ev *models.Event) (imageIDs, videoIDs []string, err error) {
	seen := make(map[string]bool)

	for _, kind := range []models.Kind{models.KindImage, models.KindVideo} {
		linked, err := s.media.FindByEvent(ctx, kind, ev.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: query linked %s: %v", utils.ErrStoreFailure, kind, err)
		}
		for _, m := range linked {
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			if kind == models.KindVideo {
				videoIDs = append(videoIDs, m.ID)
			} else {
				imageIDs = append(imageIDs, m.ID)
			}
		}
	}

	for _, mid := range ev.ImageIDs {
		if seen[mid] {
			continue
		}
		kind := models.KindForFilename(mid)
		exists, err := s.media.Exists(ctx, kind, mid)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: check %s/%s: %v", utils.ErrStoreFailure, kind, mid, err)
		}
		if !exists {
			continue
		}
		seen[mid] = true
		if kind == models.KindVideo {
			videoIDs = append(videoIDs, mid)
		} else {
			imageIDs = append(imageIDs, mid)
		}
	}
	return imageIDs, videoIDs, nil
}
