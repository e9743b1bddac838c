package backend

import (
	"context"
	"sort"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/tamagotask/tamagotask/tamagotask/database/repositories/mock"
)

func TestRetentionJob_CutoffMonth(t *testing.T) {
	job := NewRetentionJob(nil, nil, 3)
	job.SetClock(func() time.Time { return time.Date(2026, 1, 15, 0, 0, 0, 0, time.Local) })

	if got := job.CutoffMonth(); got != "2025-10" {
		t.Errorf("CutoffMonth() = %q, want 2025-10", got)
	}
}

func TestRetentionJob_Run(t *testing.T) {
	repo := mock.NewMockLeaderboardRepository(gomock.NewController(t))
	ranks := newFakeRanker()

	repo.EXPECT().
		MonthsBefore(gomock.Any(), "2026-05").
		Return([]string{"2026-03", "2026-04"}, nil)

	// The first month needs two batches, the second is already short.
	gomock.InOrder(
		repo.EXPECT().DeleteMonthBatch(gomock.Any(), "2026-03", 500).Return(int64(500), nil),
		repo.EXPECT().DeleteMonthBatch(gomock.Any(), "2026-03", 500).Return(int64(42), nil),
	)
	repo.EXPECT().DeleteMonthBatch(gomock.Any(), "2026-04", 500).Return(int64(120), nil)

	job := NewRetentionJob(repo, ranks, 3)
	job.SetClock(func() time.Time { return time.Date(2026, 8, 15, 0, 0, 0, 0, time.Local) })

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	sort.Strings(ranks.dropped)
	if len(ranks.dropped) != 2 || ranks.dropped[0] != "2026-03" || ranks.dropped[1] != "2026-04" {
		t.Errorf("dropped cache months = %v, want [2026-03 2026-04]", ranks.dropped)
	}
}

func TestRetentionJob_RunNothingExpired(t *testing.T) {
	repo := mock.NewMockLeaderboardRepository(gomock.NewController(t))
	repo.EXPECT().
		MonthsBefore(gomock.Any(), gomock.Any()).
		Return(nil, nil)

	job := NewRetentionJob(repo, newFakeRanker(), 3)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestRetentionJob_DefaultWindow(t *testing.T) {
	job := NewRetentionJob(nil, nil, 0)
	job.SetClock(func() time.Time { return time.Date(2026, 8, 15, 0, 0, 0, 0, time.Local) })

	if got := job.CutoffMonth(); got != "2026-05" {
		t.Errorf("CutoffMonth() = %q with default window, want 2026-05", got)
	}
}
