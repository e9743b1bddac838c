package backend

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const watchRetryInterval = 5 * time.Second

// Watcher tails the progress collection's change stream and feeds every
// authoritative write through the projector. Running server-side keeps the
// projection decoupled from client lifecycles: a client can crash
// mid-session and its last accepted write still ranks.
type Watcher struct {
	progress  *mongo.Collection
	projector *Projector
}

func NewWatcher(progress *mongo.Collection, projector *Projector) *Watcher {
	return &Watcher{progress: progress, projector: projector}
}

// Run consumes the change stream until ctx is cancelled, re-opening the
// stream after transient errors. Validation failures are logged per
// document and never stop the stream.
func (w *Watcher) Run(ctx context.Context) {
	for {
		if err := w.consume(ctx); err != nil && ctx.Err() == nil {
			slog.Error("Change stream interrupted, reopening",
				slog.String("type", "sync"),
				slog.Any("error", err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(watchRetryInterval):
		}
	}
}

func (w *Watcher) consume(ctx context.Context) error {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "operationType", Value: bson.D{
				{Key: "$in", Value: bson.A{"insert", "update", "replace"}},
			}},
		}}},
	}

	stream, err := w.progress.Watch(ctx, pipeline,
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return err
	}
	defer stream.Close(ctx)

	slog.Info("Watching progress writes", slog.String("type", "sync"))

	for stream.Next(ctx) {
		var event struct {
			FullDocument bson.M `bson:"fullDocument"`
		}
		if err := stream.Decode(&event); err != nil {
			slog.Warn("Failed to decode change event",
				slog.String("type", "sync"),
				slog.Any("error", err))
			continue
		}
		if event.FullDocument == nil {
			continue
		}

		// A rejected document is already logged by the projector; the
		// stream moves on and the stale entry simply stays stale.
		_ = w.projector.Project(ctx, event.FullDocument)
	}

	return stream.Err()
}
