package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"

	"github.com/tamagotask/tamagotask/tamagotask/logger"
	"github.com/tamagotask/tamagotask/tamagotask/remote"
)

const (
	defaultQueueSize   = 64
	defaultPushTimeout = 5 * time.Second
	recordCacheSize    = 16
	recordCacheTTL     = 30 * time.Second
)

// SessionProvider reports the authenticated user, if any. Without a session
// every push is a logged no-op: the app keeps working local-only.
type SessionProvider interface {
	UserID() (string, bool)
}

type job struct {
	delta    *remote.ProgressDelta
	activity *remote.ActivityRecord
}

// Syncer pushes local progress to the remote store without ever blocking
// the caller. The contract is at-most-once with no retry: a full queue or a
// failed write is logged and dropped, and the local state (already
// committed by the caller) remains the source of truth.
//
// TODO: evaluate a bounded retry with backoff for transient network errors;
// today a flaky connection silently loses pushes until the next delta.
type Syncer struct {
	repo     remote.ProgressRepository
	sessions SessionProvider
	queue    chan job
	group    errgroup.Group
	cache    *lru.Cache

	// closeMu serializes enqueues against Close so a late push can never
	// send on the closed queue.
	closeMu sync.RWMutex
	closed  bool
}

type cachedRecord struct {
	record    *remote.RemoteProgressRecord
	fetchedAt time.Time
}

func New(repo remote.ProgressRepository, sessions SessionProvider) *Syncer {
	cache, _ := lru.New(recordCacheSize)
	s := &Syncer{
		repo:     repo,
		sessions: sessions,
		queue:    make(chan job, defaultQueueSize),
		cache:    cache,
	}
	s.group.Go(s.worker)
	return s
}

// Push enqueues a partial progress update. It never blocks: when the queue
// is full the delta is dropped with a warning, when no session exists it is
// a debug-logged no-op.
func (s *Syncer) Push(delta remote.ProgressDelta) {
	if delta.IsEmpty() {
		return
	}
	if _, ok := s.sessions.UserID(); !ok {
		slog.Debug("Skipping push, no authenticated session",
			slog.String("type", "sync"))
		return
	}

	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed {
		slog.Warn("Syncer closed, dropping progress delta",
			slog.String("type", "sync"))
		return
	}

	select {
	case s.queue <- job{delta: &delta}:
	default:
		slog.Warn("Sync queue full, dropping progress delta",
			slog.String("type", "sync"))
	}
}

// RecordActivity appends a completion record to the remote activity log,
// under the same fire-and-forget contract as Push.
func (s *Syncer) RecordActivity(kind string, difficulty, xp, petXP int) {
	if _, ok := s.sessions.UserID(); !ok {
		slog.Debug("Skipping activity record, no authenticated session",
			slog.String("type", "sync"))
		return
	}

	rec := &remote.ActivityRecord{
		ID:          snowflake.New(time.Now()),
		Kind:        kind,
		Difficulty:  difficulty,
		XP:          xp,
		PetXP:       petXP,
		CompletedAt: time.Now().UTC(),
	}

	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed {
		slog.Warn("Syncer closed, dropping activity record",
			slog.String("type", "sync"))
		return
	}

	select {
	case s.queue <- job{activity: rec}:
	default:
		slog.Warn("Sync queue full, dropping activity record",
			slog.String("type", "sync"))
	}
}

// Remote reads the user's remote record through a short-lived cache. Used
// for cross-device views; never consulted for local gameplay decisions.
func (s *Syncer) Remote(ctx context.Context) (*remote.RemoteProgressRecord, error) {
	userID, ok := s.sessions.UserID()
	if !ok {
		return nil, fmt.Errorf("no authenticated session")
	}

	if v, ok := s.cache.Get(userID); ok {
		cached := v.(cachedRecord)
		if time.Since(cached.fetchedAt) < recordCacheTTL {
			return cached.record, nil
		}
	}

	rec, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.Add(userID, cachedRecord{record: rec, fetchedAt: time.Now()})
	return rec, nil
}

// RecentHistory returns the newest completion records, truncated to limit.
func (s *Syncer) RecentHistory(ctx context.Context, limit int) ([]*remote.ActivityRecord, error) {
	userID, ok := s.sessions.UserID()
	if !ok {
		return nil, fmt.Errorf("no authenticated session")
	}
	return s.repo.RecentActivity(ctx, userID, limit)
}

// Close stops accepting work and drains what is already queued. Anything
// still pending after the timeout is abandoned, consistent with the
// at-most-once contract. Pushes arriving after Close are dropped with a
// warning, never an error.
func (s *Syncer) Close(timeout time.Duration) {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return
	}
	s.closed = true
	close(s.queue)
	s.closeMu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = s.group.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		slog.Warn("Timed out draining sync queue", slog.String("type", "sync"))
	}
}

func (s *Syncer) worker() error {
	for j := range s.queue {
		userID, ok := s.sessions.UserID()
		if !ok {
			// Session went away after enqueue. Drop, same as at push time.
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), defaultPushTimeout)
		start := time.Now()

		var err error
		switch {
		case j.delta != nil:
			err = s.repo.Merge(ctx, userID, *j.delta)
			logger.LogSync("merge", time.Since(start), err)
			if err == nil {
				s.cache.Remove(userID)
			}
		case j.activity != nil:
			j.activity.UserID = userID
			err = s.repo.AppendActivity(ctx, j.activity)
			logger.LogSync("activity", time.Since(start), err)
		}
		cancel()
		// Errors are logged and swallowed. The local write already
		// happened; the user sees "sync pending", never a failure.
	}
	return nil
}
