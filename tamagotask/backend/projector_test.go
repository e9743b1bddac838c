package backend

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/mock/gomock"

	"github.com/tamagotask/tamagotask/tamagotask/cache"
	"github.com/tamagotask/tamagotask/tamagotask/database/models"
	"github.com/tamagotask/tamagotask/tamagotask/database/repositories/mock"
)

type fakeRanker struct {
	mu      sync.Mutex
	scores  map[string]int64
	dropped []string
	fail    bool
}

func newFakeRanker() *fakeRanker {
	return &fakeRanker{scores: make(map[string]int64)}
}

func (r *fakeRanker) UpdateScore(ctx context.Context, month, userID string, xp int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return context.DeadlineExceeded
	}
	r.scores[month+"/"+userID] = xp
	return nil
}

func (r *fakeRanker) DropMonth(ctx context.Context, month string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped = append(r.dropped, month)
	return nil
}

func (r *fakeRanker) GetTop(ctx context.Context, month string, limit int) ([]cache.RankedUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, context.DeadlineExceeded
	}

	var users []cache.RankedUser
	prefix := month + "/"
	for key, xp := range r.scores {
		if strings.HasPrefix(key, prefix) {
			users = append(users, cache.RankedUser{UserID: strings.TrimPrefix(key, prefix), XP: xp})
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].XP > users[j].XP })
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *fakeRanker) GetRank(ctx context.Context, month, userID string) (int64, error) {
	if r.fail {
		return -1, context.DeadlineExceeded
	}
	top, _ := r.GetTop(ctx, month, 1<<30)
	for i, u := range top {
		if u.UserID == userID {
			return int64(i), nil
		}
	}
	return -1, nil
}

func TestProjector_Project_ValidDocument(t *testing.T) {
	repo := mock.NewMockLeaderboardRepository(gomock.NewController(t))
	ranks := newFakeRanker()

	var upserted *models.LeaderboardEntry
	repo.EXPECT().
		Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, entry *models.LeaderboardEntry) error {
			upserted = entry
			return nil
		})

	p := NewProjector(repo, ranks)
	p.SetClock(func() time.Time { return time.Date(2026, 8, 15, 10, 0, 0, 0, time.Local) })

	doc := bson.M{
		"_id":   "user-1",
		"xp":    int32(420),
		"gems":  int64(15),
		"tasks": 9,
		"streak": bson.M{
			"current": int32(4),
			"longest": int32(9),
		},
	}
	if err := p.Project(context.Background(), doc); err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	if upserted == nil {
		t.Fatal("Upsert never called")
	}
	if upserted.UserID != "user-1" || upserted.Month != "2026-08" {
		t.Errorf("entry = %+v, want user-1 in 2026-08", upserted)
	}
	if upserted.XP != 420 || upserted.Level != 5 {
		t.Errorf("entry xp/level = %d/%d, want 420/5", upserted.XP, upserted.Level)
	}
	if upserted.TasksCompleted != 9 || upserted.CurrentStreak != 4 || upserted.LongestStreak != 9 {
		t.Errorf("entry = %+v, want tasks 9 streak 4/9", upserted)
	}

	if got := ranks.scores["2026-08/user-1"]; got != 420 {
		t.Errorf("ranking cache score = %d, want 420", got)
	}
}

func TestProjector_Project_Rejections(t *testing.T) {
	tests := []struct {
		name string
		doc  bson.M
	}{
		{
			name: "missing user id",
			doc:  bson.M{"xp": int32(10)},
		},
		{
			name: "non-numeric xp",
			doc:  bson.M{"_id": "u1", "xp": "9000"},
		},
		{
			name: "xp above bound",
			doc:  bson.M{"_id": "u1", "xp": int64(1_000_001)},
		},
		{
			name: "negative gems",
			doc:  bson.M{"_id": "u1", "xp": int32(10), "gems": int32(-5)},
		},
		{
			name: "tasks above bound",
			doc:  bson.M{"_id": "u1", "tasks": int64(2_000_000)},
		},
		{
			name: "streak above bound",
			doc:  bson.M{"_id": "u1", "streak": bson.M{"current": int32(2000), "longest": int32(2000)}},
		},
		{
			name: "non-numeric nested streak",
			doc:  bson.M{"_id": "u1", "streak": bson.M{"current": "many", "longest": int32(1)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No Upsert expectation: a rejected document reaching the
			// repository fails the test.
			repo := mock.NewMockLeaderboardRepository(gomock.NewController(t))
			p := NewProjector(repo, newFakeRanker())

			if err := p.Project(context.Background(), tt.doc); err == nil {
				t.Error("Project() error = nil, want validation error")
			}
		})
	}
}

func TestProjector_Project_MissingFieldsDefaultToZero(t *testing.T) {
	repo := mock.NewMockLeaderboardRepository(gomock.NewController(t))

	var upserted *models.LeaderboardEntry
	repo.EXPECT().
		Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, entry *models.LeaderboardEntry) error {
			upserted = entry
			return nil
		})

	p := NewProjector(repo, newFakeRanker())
	if err := p.Project(context.Background(), bson.M{"_id": "u1", "xp": float64(950)}); err != nil {
		t.Fatalf("Project() error = %v", err)
	}

	if upserted.XP != 950 || upserted.Level != 10 {
		t.Errorf("entry xp/level = %d/%d, want 950/10", upserted.XP, upserted.Level)
	}
	if upserted.TasksCompleted != 0 || upserted.CurrentStreak != 0 {
		t.Errorf("entry = %+v, want zero tasks and streak", upserted)
	}
}

func TestProjector_Project_CacheFailureIsNotFatal(t *testing.T) {
	repo := mock.NewMockLeaderboardRepository(gomock.NewController(t))
	repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)

	ranks := newFakeRanker()
	ranks.fail = true

	p := NewProjector(repo, ranks)
	if err := p.Project(context.Background(), bson.M{"_id": "u1", "xp": int32(10)}); err != nil {
		t.Errorf("Project() error = %v, want nil despite cache failure", err)
	}
}
