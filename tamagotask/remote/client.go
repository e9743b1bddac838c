package remote

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultConnTimeout   = 5 * time.Second
	defaultMaxRetries    = 3
	defaultRetryInterval = time.Second

	CollectionProgress    = "users_progress"
	CollectionActivityLog = "activity_log"
	CollectionLeaderboard = "leaderboard"
)

type Config struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// Client wraps the Mongo connection to the remote document store.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	var client *mongo.Client
	var err error

	for i := 0; i < defaultMaxRetries; i++ {
		connectCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
		client, err = mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
		if err == nil {
			err = client.Ping(connectCtx, readpref.Primary())
		}
		cancel()
		if err == nil {
			break
		}
		slog.Warn("Remote store unreachable, retrying",
			slog.String("type", "sync"),
			slog.Int("attempt", i+1),
			slog.Any("error", err))
		time.Sleep(defaultRetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("remote store unreachable after %d attempts: %w", defaultMaxRetries, err)
	}

	slog.Info("Connected to remote document store",
		slog.String("type", "sync"),
		slog.String("database", cfg.Database))

	return &Client{
		client: client,
		db:     client.Database(cfg.Database),
	}, nil
}

func (c *Client) Database() *mongo.Database {
	return c.db
}

func (c *Client) Progress() *mongo.Collection {
	return c.db.Collection(CollectionProgress)
}

func (c *Client) ActivityLog() *mongo.Collection {
	return c.db.Collection(CollectionActivityLog)
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
