package backend

import (
	"context"
	"log/slog"

	"github.com/tamagotask/tamagotask/tamagotask/cache"
	"github.com/tamagotask/tamagotask/tamagotask/database/models"
	"github.com/tamagotask/tamagotask/tamagotask/database/repositories"
)

// RankReader is the read side of the ranking cache.
type RankReader interface {
	GetTop(ctx context.Context, month string, limit int) ([]cache.RankedUser, error)
	GetRank(ctx context.Context, month, userID string) (int64, error)
	UpdateScore(ctx context.Context, month, userID string, xp int64) error
}

// LeaderboardService serves ranking reads: Redis first, Postgres as the
// source of truth on a miss (with a cache backfill).
type LeaderboardService struct {
	leaderboards repositories.LeaderboardRepository
	ranks        RankReader
}

func NewLeaderboardService(leaderboards repositories.LeaderboardRepository, ranks RankReader) *LeaderboardService {
	return &LeaderboardService{leaderboards: leaderboards, ranks: ranks}
}

// Top returns the month's best entries, best first.
func (s *LeaderboardService) Top(ctx context.Context, month string, limit int) ([]*models.LeaderboardEntry, error) {
	if s.ranks != nil {
		ranked, err := s.ranks.GetTop(ctx, month, limit)
		if err == nil && len(ranked) > 0 {
			return s.hydrate(ctx, month, ranked)
		}
		if err != nil {
			slog.Warn("Ranking cache read failed, falling back to database",
				slog.String("type", "db"),
				slog.Any("error", err))
		}
	}

	entries, err := s.leaderboards.GetTop(ctx, month, limit)
	if err != nil {
		return nil, err
	}

	if s.ranks != nil {
		for _, e := range entries {
			if err := s.ranks.UpdateScore(ctx, month, e.UserID, e.XP); err != nil {
				break
			}
		}
	}
	return entries, nil
}

// Rank returns a user's zero-based rank for the month, or -1 if unranked.
func (s *LeaderboardService) Rank(ctx context.Context, month, userID string) (int64, error) {
	if s.ranks != nil {
		if rank, err := s.ranks.GetRank(ctx, month, userID); err == nil {
			return rank, nil
		}
	}

	entry, err := s.leaderboards.GetUserEntry(ctx, userID, month)
	if err != nil {
		return -1, err
	}
	if entry == nil {
		return -1, nil
	}

	top, err := s.leaderboards.GetTop(ctx, month, 1000)
	if err != nil {
		return -1, err
	}
	for i, e := range top {
		if e.UserID == userID {
			return int64(i), nil
		}
	}
	return -1, nil
}

func (s *LeaderboardService) hydrate(ctx context.Context, month string, ranked []cache.RankedUser) ([]*models.LeaderboardEntry, error) {
	entries := make([]*models.LeaderboardEntry, 0, len(ranked))
	for _, r := range ranked {
		entry, err := s.leaderboards.GetUserEntry(ctx, r.UserID, month)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}
