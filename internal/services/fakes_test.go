package service

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/models"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/notify"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/utils"
)

type fakeMediaStore struct {
	mu         sync.Mutex
	docs       map[models.Kind]map[string]map[string]any
	existsErr  error
	setErr     error
	clearErr   error
	clearCalls [][2][]string
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{docs: map[models.Kind]map[string]map[string]any{
		models.KindImage: {},
		models.KindVideo: {},
	}}
}

func (f *fakeMediaStore) Exists(_ context.Context, kind models.Kind, id string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.docs[kind][id]
	return ok, nil
}

func (f *fakeMediaStore) Get(_ context.Context, kind models.Kind, id string) (*models.Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fields, ok := f.docs[kind][id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return mediaFromFields(kind, id, fields), nil
}

func (f *fakeMediaStore) Set(_ context.Context, kind models.Kind, id string, fields map[string]any) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[kind][id]
	if !ok {
		doc = map[string]any{}
		f.docs[kind][id] = doc
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (f *fakeMediaStore) Delete(_ context.Context, kind models.Kind, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[kind][id]; !ok {
		return utils.ErrNotFound
	}
	delete(f.docs[kind], id)
	return nil
}

func (f *fakeMediaStore) FindByEvent(_ context.Context, kind models.Kind, eventID string) ([]models.Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Media
	for id, fields := range f.docs[kind] {
		if ev, ok := fields["event"].(string); ok && ev == eventID {
			out = append(out, *mediaFromFields(kind, id, fields))
		}
	}
	return out, nil
}

func (f *fakeMediaStore) ClearEventRefs(_ context.Context, imageIDs, videoIDs []string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls = append(f.clearCalls, [2][]string{imageIDs, videoIDs})
	for _, id := range imageIDs {
		if doc, ok := f.docs[models.KindImage][id]; ok {
			doc["event"] = nil
		}
	}
	for _, id := range videoIDs {
		if doc, ok := f.docs[models.KindVideo][id]; ok {
			doc["event"] = nil
		}
	}
	return nil
}

func (f *fakeMediaStore) List(_ context.Context, kind models.Kind) ([]models.Media, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Media
	for id, fields := range f.docs[kind] {
		out = append(out, *mediaFromFields(kind, id, fields))
	}
	return out, nil
}

func mediaFromFields(kind models.Kind, id string, fields map[string]any) *models.Media {
	m := &models.Media{ID: id, Kind: kind}
	if v, ok := fields["full_path"].(string); ok {
		m.FullPath = v
	}
	if v, ok := fields["thumb_path"].(string); ok {
		m.ThumbPath = v
	}
	if v, ok := fields["date"].(string); ok {
		m.Date = v
	}
	if v, ok := fields["caption"].(string); ok {
		m.Caption = v
	}
	if v, ok := fields["event"].(string); ok {
		m.Event = &v
	}
	return m
}

type fakeEventStore struct {
	mu      sync.Mutex
	events  map[string]*models.Event
	nextID  int
	added   []string
	removed []string
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{events: map[string]*models.Event{}}
}

func (f *fakeEventStore) Add(_ context.Context, ev *models.Event) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	ev.ID = fmt.Sprintf("ev-%d", f.nextID)
	ev.CreatedAt = time.Now().UTC()
	f.events[ev.ID] = ev
	return ev.ID, nil
}

func (f *fakeEventStore) Get(_ context.Context, id string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev, ok := f.events[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *ev
	return &cp, nil
}

func (f *fakeEventStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return utils.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeEventStore) AddImageID(_ context.Context, eventID, mediaID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, mediaID)
	if ev, ok := f.events[eventID]; ok {
		for _, existing := range ev.ImageIDs {
			if existing == mediaID {
				return nil
			}
		}
		ev.ImageIDs = append(ev.ImageIDs, mediaID)
	}
	return nil
}

func (f *fakeEventStore) RemoveImageID(_ context.Context, eventID, mediaID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, mediaID)
	ev, ok := f.events[eventID]
	if !ok {
		return utils.ErrNotFound
	}
	kept := ev.ImageIDs[:0]
	for _, existing := range ev.ImageIDs {
		if existing != mediaID {
			kept = append(kept, existing)
		}
	}
	ev.ImageIDs = kept
	return nil
}

type fakeObjectStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	types     map[string]string
	deleted   []string
	uploadErr map[string]error
	deleteErr map[string]error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{
		objects:   map[string][]byte{},
		types:     map[string]string{},
		uploadErr: map[string]error{},
		deleteErr: map[string]error{},
	}
}

func (f *fakeObjectStore) Upload(_ context.Context, key, contentType string, data []byte) error {
	if err := f.uploadErr[key]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	f.types[key] = contentType
	return nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	if err := f.deleteErr[key]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[key]; !ok {
		return utils.ErrNotFound
	}
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjectStore) ResolveURL(_ context.Context, key string) (string, error) {
	return "https://store.test/" + key, nil
}

type fakeRefresher struct {
	mu            sync.Mutex
	mediaRefresh  int
	eventsRefresh int
}

func (f *fakeRefresher) RefreshMedia(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mediaRefresh++
	return nil
}

func (f *fakeRefresher) RefreshEvents(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.eventsRefresh++
	return nil
}

type notification struct {
	msg string
	sev notify.Severity
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (f *fakeNotifier) Notify(_ context.Context, msg string, sev notify.Severity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, notification{msg: msg, sev: sev})
}

func (f *fakeNotifier) last() (notification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return notification{}, false
	}
	return f.sent[len(f.sent)-1], true
}

type fakeThumbs struct {
	calls int
	mu    sync.Mutex
}

func (f *fakeThumbs) Generate(_ context.Context, _ models.Kind, data []byte) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if bytes.Equal(data, []byte("undecodable")) {
		return nil, utils.ErrDecodeFailure
	}
	return append([]byte("thumb:"), data...), nil
}

type fixture struct {
	svc      *MediaService
	media    *fakeMediaStore
	events   *fakeEventStore
	objects  *fakeObjectStore
	view     *fakeRefresher
	notified *fakeNotifier
	thumbs   *fakeThumbs
}

func newFixture(infer DateInferrer) *fixture {
	f := &fixture{
		media:    newFakeMediaStore(),
		events:   newFakeEventStore(),
		objects:  newFakeObjectStore(),
		view:     &fakeRefresher{},
		notified: &fakeNotifier{},
		thumbs:   &fakeThumbs{},
	}
	f.svc = NewMediaService(f.media, f.events, f.objects, f.thumbs, f.view, f.notified, infer, time.Minute, zap.NewNop().Sugar())
	return f
}

// seedMedia installs a media document plus its binaries as if a prior upload
// completed.
func (f *fixture) seedMedia(kind models.Kind, id, date, eventID string) {
	fields := map[string]any{
		"kind":       kind,
		"full_path":  models.FullKey(kind, id),
		"thumb_path": models.ThumbKey(kind, id),
		"date":       date,
	}
	if eventID != "" {
		fields["event"] = eventID
	}
	_ = f.media.Set(context.Background(), kind, id, fields)
	_ = f.objects.Upload(context.Background(), models.FullKey(kind, id), "application/octet-stream", []byte("full"))
	_ = f.objects.Upload(context.Background(), models.ThumbKey(kind, id), "image/jpeg", []byte("thumb"))
}
