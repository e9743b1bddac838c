package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProgressRepository is the client-side surface of the remote store.
type ProgressRepository interface {
	Get(ctx context.Context, userID string) (*RemoteProgressRecord, error)
	Merge(ctx context.Context, userID string, delta ProgressDelta) error
	AppendActivity(ctx context.Context, rec *ActivityRecord) error
	RecentActivity(ctx context.Context, userID string, limit int) ([]*ActivityRecord, error)
}

type progressRepository struct {
	progress *mongo.Collection
	activity *mongo.Collection
}

func NewProgressRepository(client *Client) ProgressRepository {
	return &progressRepository{
		progress: client.Progress(),
		activity: client.ActivityLog(),
	}
}

func (r *progressRepository) Get(ctx context.Context, userID string) (*RemoteProgressRecord, error) {
	rec := new(RemoteProgressRecord)
	err := r.progress.FindOne(ctx, bson.M{"_id": userID}).Decode(rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read progress record: %w", err)
	}
	return rec, nil
}

// Merge applies the delta to the user's record at field level. Unset delta
// fields are left alone, slice fields union, and the whole update is a
// single upsert so a missing record is created on first push. Two clients
// writing different fields concurrently cannot clobber each other; the same
// field from two clients is last-write-wins by design of the data model.
func (r *progressRepository) Merge(ctx context.Context, userID string, delta ProgressDelta) error {
	if delta.IsEmpty() {
		return nil
	}

	start := time.Now()

	set := delta.SetFields()
	set["last_updated"] = time.Now().UTC()
	update := bson.M{"$set": set}
	if add := delta.AddToSetFields(); len(add) > 0 {
		update["$addToSet"] = add
	}

	_, err := r.progress.UpdateOne(ctx,
		bson.M{"_id": userID},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to merge progress record: %w", err)
	}

	slog.Debug("Merged progress record",
		slog.String("type", "sync"),
		slog.String("user_id", userID),
		slog.Int("fields", len(set)),
		slog.Duration("took", time.Since(start)))
	return nil
}

func (r *progressRepository) AppendActivity(ctx context.Context, rec *ActivityRecord) error {
	if _, err := r.activity.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to append activity record: %w", err)
	}
	return nil
}

// RecentActivity returns the user's newest completion records. Snowflake
// IDs are time-ordered, so sorting by _id descending is sorting by time.
func (r *progressRepository) RecentActivity(ctx context.Context, userID string, limit int) ([]*ActivityRecord, error) {
	cursor, err := r.activity.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.M{"_id": -1}).SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity log: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*ActivityRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode activity records: %w", err)
	}
	return records, nil
}
