package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/models"
	"github.com/yassinbenelhajlahsen/gallery-sub001/internal/utils"
)

// MediaRepo stores media metadata in one collection per kind. Writes use
// merge ($set upsert) semantics so partial pipeline re-runs are idempotent.
type MediaRepo struct {
	client *mongo.Client
	images *mongo.Collection
	videos *mongo.Collection
}

func NewMediaRepo(client *mongo.Client, images, videos *mongo.Collection) *MediaRepo {
	return &MediaRepo{client: client, images: images, videos: videos}
}

func (r *MediaRepo) col(kind models.Kind) *mongo.Collection {
	if kind == models.KindVideo {
		return r.videos
	}
	return r.images
}

func (r *MediaRepo) Exists(ctx context.Context, kind models.Kind, id string) (bool, error) {
	n, err := r.col(kind).CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("exists %s/%s: %w", kind, id, err)
	}
	return n > 0, nil
}

func (r *MediaRepo) Get(ctx context.Context, kind models.Kind, id string) (*models.Media, error) {
	var m models.Media
	err := r.col(kind).FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", kind, id, err)
	}
	return &m, nil
}

// Set merges fields into the document keyed by id, creating it when absent.
// Fields not named in the map are left untouched.
func (r *MediaRepo) Set(ctx context.Context, kind models.Kind, id string, fields map[string]any) error {
	_, err := r.col(kind).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": fields},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", kind, id, err)
	}
	return nil
}

func (r *MediaRepo) Delete(ctx context.Context, kind models.Kind, id string) error {
	res, err := r.col(kind).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", kind, id, err)
	}
	if res.DeletedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *MediaRepo) FindByEvent(ctx context.Context, kind models.Kind, eventID string) ([]models.Media, error) {
	cur, err := r.col(kind).Find(ctx, bson.M{"event": eventID})
	if err != nil {
		return nil, fmt.Errorf("find by event %s: %w", eventID, err)
	}
	defer cur.Close(ctx)
	var out []models.Media
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode media for event %s: %w", eventID, err)
	}
	return out, nil
}

func (r *MediaRepo) List(ctx context.Context, kind models.Kind) ([]models.Media, error) {
	cur, err := r.col(kind).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	defer cur.Close(ctx)
	var out []models.Media
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", kind, err)
	}
	return out, nil
}

// ClearEventRefs nulls the event field on the given documents across both
// collections as a single transaction, so the event-deletion cascade commits
// its reference clears all-or-nothing. Missing ids simply match nothing.
func (r *MediaRepo) ClearEventRefs(ctx context.Context, imageIDs, videoIDs []string) error {
	if len(imageIDs) == 0 && len(videoIDs) == 0 {
		return nil
	}
	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		unset := bson.M{"$set": bson.M{"event": nil}}
		if len(imageIDs) > 0 {
			if _, err := r.images.UpdateMany(sc, bson.M{"_id": bson.M{"$in": imageIDs}}, unset); err != nil {
				return nil, err
			}
		}
		if len(videoIDs) > 0 {
			if _, err := r.videos.UpdateMany(sc, bson.M{"_id": bson.M{"$in": videoIDs}}, unset); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("clear event refs: %w", err)
	}
	return nil
}
