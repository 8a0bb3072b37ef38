package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/metrics"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/models"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/naming"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/notify"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/utils"
)

type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type EventInput struct {
	Title string
	Emoji string
	Date  string
}

// UploadRequest carries one admin upload action: the selected files, a target
// date (possibly already inferred in the form), an existing event selection
// or a new event to create, and an optional caption for images.
type UploadRequest struct {
	Files    []UploadFile
	Date     string
	EventID  string
	NewEvent *EventInput
	Caption  string
}

type UploadResult struct {
	Uploaded int      `json:"uploaded"`
	Failed   int      `json:"failed"`
	IDs      []string `json:"ids"`
	EventID  string   `json:"event_id,omitempty"`
}

// CreateEvent validates and persists a new event, refreshes the event cache
// and reports success. The id is generated and CreatedAt is server-assigned
// by the store.
func (s *MediaService) CreateEvent(ctx context.Context, in EventInput) (*models.Event, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: event title is required", utils.ErrValidation)
	}
	if strings.TrimSpace(in.Date) == "" {
		return nil, fmt.Errorf("%w: event date is required", utils.ErrValidation)
	}
	ev := &models.Event{Title: in.Title, Emoji: in.Emoji, Date: in.Date, ImageIDs: []string{}}
	id, err := s.events.Add(ctx, ev)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	ev.ID = id
	if err := s.gallery.RefreshEvents(ctx); err != nil {
		s.log.Warnf("events refresh after create: %v", err)
	}
	s.notifier.Notify(ctx, fmt.Sprintf("Created event %q", ev.Title), notify.SeveritySuccess)
	return ev, nil
}

// Upload runs the upload pipeline: optional event creation, then per file an
// id probe, thumbnail, binary uploads and a merged metadata write. Files are
// independent; one failure never blocks the rest and completed uploads are
// not rolled back. A single aggregate notification is surfaced once all
// files settle.
func (s *MediaService) Upload(ctx context.Context, req UploadRequest) (UploadResult, error) {
	if len(req.Files) == 0 {
		return UploadResult{}, fmt.Errorf("%w: no files selected", utils.ErrValidation)
	}

	eventDate := ""
	if req.EventID == "" && req.NewEvent != nil {
		ev, err := s.CreateEvent(ctx, *req.NewEvent)
		if err != nil {
			return UploadResult{}, err
		}
		req.EventID = ev.ID
		eventDate = ev.Date
	} else if req.EventID != "" {
		ev, err := s.events.Get(ctx, req.EventID)
		if err != nil {
			return UploadResult{}, fmt.Errorf("%w: unknown event %s", utils.ErrValidation, req.EventID)
		}
		eventDate = ev.Date
	}

	// Ids are resolved sequentially before per-file work fans out: each
	// probe's result can depend on names claimed earlier in the same batch.
	type job struct {
		file UploadFile
		kind models.Kind
		id   string
	}
	var jobs []job
	failed := 0
	reserved := make(map[string]bool)
	for _, f := range req.Files {
		kind := models.KindForFilename(f.Name)
		id, err := naming.Resolve(ctx, s.media.Exists, kind, f.Name, reserved)
		if err != nil {
			s.log.Errorf("resolve id for %s: %v", f.Name, err)
			failed++
			continue
		}
		reserved[id] = true
		jobs = append(jobs, job{file: f, kind: kind, id: id})
	}

	results := make(chan error, len(jobs))
	var ids []string
	var idsMu sync.Mutex
	var wg sync.WaitGroup
	for _, j := range jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			if err := s.uploadOne(ctx, j.file, j.kind, j.id, req, eventDate); err != nil {
				s.log.Errorf("upload %s: %v", j.id, err)
				results <- err
				return
			}
			idsMu.Lock()
			ids = append(ids, j.id)
			idsMu.Unlock()
			results <- nil
		}(j)
	}
	wg.Wait()
	close(results)
	for err := range results {
		if err != nil {
			failed++
		}
	}
	if failed > 0 {
		metrics.UploadFailuresTotal.Add(float64(failed))
	}

	if err := s.gallery.RefreshMedia(ctx); err != nil {
		s.log.Warnf("media refresh after upload: %v", err)
	}

	if failed == 0 {
		s.notifier.Notify(ctx, fmt.Sprintf("Uploaded %d file(s)", len(ids)), notify.SeveritySuccess)
	} else {
		s.notifier.Notify(ctx, fmt.Sprintf("Uploaded %d file(s), %d failed", len(ids), failed), notify.SeverityError)
	}

	return UploadResult{Uploaded: len(ids), Failed: failed, IDs: ids, EventID: req.EventID}, nil
}

// uploadOne handles a single file: thumbnail, both binary uploads, then the
// merged metadata write. No metadata is written unless both binaries landed.
func (s *MediaService) uploadOne(ctx context.Context, f UploadFile, kind models.Kind, id string, req UploadRequest, eventDate string) error {
	thumb, err := s.thumbs.Generate(ctx, kind, f.Data)
	if err != nil {
		return err
	}

	fullKey := models.FullKey(kind, id)
	thumbKey := models.ThumbKey(kind, id)
	if err := s.objects.Upload(ctx, fullKey, f.ContentType, f.Data); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrStoreFailure, err)
	}
	if err := s.objects.Upload(ctx, thumbKey, "image/jpeg", thumb); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrStoreFailure, err)
	}

	fields := map[string]any{
		"kind":         kind,
		"full_path":    fullKey,
		"thumb_path":   thumbKey,
		"date":         s.dateFor(f, kind, req, eventDate),
		"size":         int64(len(f.Data)),
		"content_type": f.ContentType,
		"created_at":   s.now(),
	}
	if req.EventID != "" {
		fields["event"] = req.EventID
	} else {
		fields["event"] = nil
	}
	if kind == models.KindImage && req.Caption != "" {
		fields["caption"] = req.Caption
	}
	if err := s.media.Set(ctx, kind, id, fields); err != nil {
		return fmt.Errorf("%w: %v", utils.ErrStoreFailure, err)
	}

	if req.EventID != "" {
		// Forward reference is best effort; the deletion pipeline reconciles
		// by query as well as by this list.
		if err := s.events.AddImageID(ctx, req.EventID, id); err != nil {
			s.log.Warnf("link %s to event %s: %v", id, req.EventID, err)
		}
	}

	metrics.UploadsTotal.WithLabelValues(string(kind)).Inc()
	return nil
}

// dateFor picks the item date. A date already present in the request (typed
// or previously inferred) is never overwritten by a later event selection;
// otherwise a selected event's date wins, and inference only runs when no
// event is selected at all.
func (s *MediaService) dateFor(f UploadFile, kind models.Kind, req UploadRequest, eventDate string) string {
	if req.Date != "" {
		return req.Date
	}
	if req.EventID != "" {
		return eventDate
	}
	if kind == models.KindImage && s.infer != nil {
		if d, ok := s.infer(f.Data); ok {
			return d
		}
	}
	return s.now().Format("2006-01-02")
}
