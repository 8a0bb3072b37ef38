package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/models"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/utils"
)

type EventRepo struct {
	col *mongo.Collection
}

func NewEventRepo(col *mongo.Collection) *EventRepo {
	return &EventRepo{col: col}
}

// Add inserts a new event with a generated id and server-assigned timestamp
// and returns the id.
func (r *EventRepo) Add(ctx context.Context, ev *models.Event) (string, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	if ev.ImageIDs == nil {
		ev.ImageIDs = []string{}
	}
	if _, err := r.col.InsertOne(ctx, ev); err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	return ev.ID, nil
}

func (r *EventRepo) Get(ctx context.Context, id string) (*models.Event, error) {
	var ev models.Event
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&ev)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	return &ev, nil
}

func (r *EventRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

// AddImageID links a media id into the event's denormalized forward
// reference set.
func (r *EventRepo) AddImageID(ctx context.Context, eventID, mediaID string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{"$addToSet": bson.M{"image_ids": mediaID}},
	)
	if err != nil {
		return fmt.Errorf("add image id to event %s: %w", eventID, err)
	}
	return nil
}

// RemoveImageID is a set removal, not a document rewrite, so concurrent
// removals from other items do not race destructively.
func (r *EventRepo) RemoveImageID(ctx context.Context, eventID, mediaID string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{"$pull": bson.M{"image_ids": mediaID}},
	)
	if err != nil {
		return fmt.Errorf("remove image id from event %s: %w", eventID, err)
	}
	return nil
}

func (r *EventRepo) List(ctx context.Context) ([]models.Event, error) {
	cur, err := r.col.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer cur.Close(ctx)
	var out []models.Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return out, nil
}
