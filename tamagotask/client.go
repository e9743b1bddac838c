package tamagotask

import (
	"context"
	"log/slog"
	"time"

	"github.com/tamagotask/tamagotask/tamagotask/progression"
	"github.com/tamagotask/tamagotask/tamagotask/remote"
	"github.com/tamagotask/tamagotask/tamagotask/storage"
	"github.com/tamagotask/tamagotask/tamagotask/syncer"
)

const (
	defaultCooldown = 5 * time.Minute
	defaultDailyCap = 10
)

// Client is the composition root the app embeds: the local store, the
// progression engine and the remote synchronizer, wired from one Config.
// The app talks to Engine only; Store and Syncer are exposed for views that
// need direct reads (settings, cross-device history).
type Client struct {
	Store  *storage.ProgressStore
	Engine *progression.Engine
	Syncer *syncer.Syncer

	remoteClient *remote.Client
}

// NewClient builds the local-first client stack. The remote store is
// optional at startup: when it cannot be reached the client runs local-only
// with a no-op pusher, which is the same behavior as a signed-out user.
func NewClient(ctx context.Context, cfg *Config, sessions syncer.SessionProvider) (*Client, error) {
	backend, err := storage.NewFileBackend(cfg.Game.DataDir)
	if err != nil {
		return nil, err
	}
	store := storage.NewProgressStore(backend)
	if err := store.Load(); err != nil {
		return nil, err
	}

	cooldown := time.Duration(cfg.Game.Sessions.CooldownSeconds) * time.Second
	if cooldown <= 0 {
		cooldown = defaultCooldown
	}
	dailyCap := cfg.Game.Sessions.DailyCap
	if dailyCap <= 0 {
		dailyCap = defaultDailyCap
	}
	gates := []progression.GateConfig{
		{Class: string(progression.ActivitySequenceRecall), Cooldown: cooldown, DailyCap: dailyCap},
		{Class: string(progression.ActivityReflexTiming), Cooldown: cooldown, DailyCap: dailyCap},
	}

	c := &Client{Store: store}

	var pusher progression.Pusher = noopPusher{}
	if remoteClient, err := remote.New(ctx, remote.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database}); err != nil {
		slog.Warn("Remote store unavailable, running local-only",
			slog.String("type", "sync"),
			slog.Any("error", err))
	} else {
		c.remoteClient = remoteClient
		c.Syncer = syncer.New(remote.NewProgressRepository(remoteClient), sessions)
		pusher = c.Syncer
	}

	c.Engine = progression.NewEngine(store, progression.NewCalculator(nil), pusher, gates)
	return c, nil
}

// Close drains pending sync work and disconnects from the remote store.
func (c *Client) Close(timeout time.Duration) {
	if c.Syncer != nil {
		c.Syncer.Close(timeout)
	}
	if c.remoteClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_ = c.remoteClient.Close(ctx)
	}
}

// noopPusher stands in for the syncer when no remote store is configured.
// Local progress still commits; there is simply nowhere to mirror it.
type noopPusher struct{}

func (noopPusher) Push(remote.ProgressDelta) {}

func (noopPusher) RecordActivity(string, int, int, int) {}
