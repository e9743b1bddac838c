package cache

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const leaderboardKeyPrefix = "leaderboard:"

// RankingCache mirrors the current leaderboard into a Redis sorted set so
// rank reads never hit Postgres. The projector writes through it; Postgres
// stays the source of truth and rebuilds the set on a miss.
type RankingCache struct {
	client *redis.Client
}

type RankedUser struct {
	UserID string
	XP     int64
}

func NewRankingCache(addr, password string, db int) *RankingCache {
	return &RankingCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func monthKey(month string) string {
	return leaderboardKeyPrefix + month
}

// UpdateScore writes a user's XP into the month's sorted set.
func (c *RankingCache) UpdateScore(ctx context.Context, month, userID string, xp int64) error {
	return c.client.ZAdd(ctx, monthKey(month), &redis.Z{
		Score:  float64(xp),
		Member: userID,
	}).Err()
}

// GetTop returns the month's highest-ranked users, best first.
func (c *RankingCache) GetTop(ctx context.Context, month string, limit int) ([]RankedUser, error) {
	zs, err := c.client.ZRevRangeWithScores(ctx, monthKey(month), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read ranking cache: %w", err)
	}

	users := make([]RankedUser, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		users = append(users, RankedUser{UserID: member, XP: int64(z.Score)})
	}
	return users, nil
}

// GetRank returns a user's zero-based rank for the month, or -1 when the
// user is not ranked.
func (c *RankingCache) GetRank(ctx context.Context, month, userID string) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, monthKey(month), userID).Result()
	if err != nil {
		if err == redis.Nil {
			return -1, nil
		}
		return -1, fmt.Errorf("failed to read rank: %w", err)
	}
	return rank, nil
}

// DropMonth deletes the month's sorted set, used by retention.
func (c *RankingCache) DropMonth(ctx context.Context, month string) error {
	return c.client.Del(ctx, monthKey(month)).Err()
}

func (c *RankingCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RankingCache) Close() error {
	return c.client.Close()
}
