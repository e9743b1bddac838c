package storage

import (
	"encoding/json"
	"fmt"
	"sync"
)

// ProgressStore owns the locally persisted progression state. It is an
// explicit dependency with a load/save lifecycle rather than ambient
// key-value access, so tests can run against MemoryBackend.
//
// The store is single-writer: one process owns the data directory. The
// mutex only guards in-process readers against the writer.
type ProgressStore struct {
	backend Backend

	mu       sync.RWMutex
	progress ProgressState
	streak   StreakState
	sessions map[string]SessionState
}

func NewProgressStore(backend Backend) *ProgressStore {
	return &ProgressStore{
		backend:  backend,
		sessions: make(map[string]SessionState),
	}
}

// Load reads all known keys from the backend. Missing keys leave zero
// values in place, which is how first-run and schema evolution both work.
func (s *ProgressStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadKey(KeyProgress, &s.progress); err != nil {
		return err
	}
	if err := s.loadKey(KeyStreak, &s.streak); err != nil {
		return err
	}
	return nil
}

func (s *ProgressStore) loadKey(key string, dst any) error {
	data, ok, err := s.backend.Load(key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (s *ProgressStore) saveKey(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.backend.Save(key, data)
}

// Progress returns a copy of the current progress state.
func (s *ProgressStore) Progress() ProgressState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.progress
	p.Purchases = append([]string(nil), p.Purchases...)
	return p
}

// SetProgress replaces and persists the progress state.
func (s *ProgressStore) SetProgress(p ProgressState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveKey(KeyProgress, p); err != nil {
		return err
	}
	s.progress = p
	return nil
}

// Streak returns the current streak state.
func (s *ProgressStore) Streak() StreakState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.streak
}

// SetStreak replaces and persists the streak state.
func (s *ProgressStore) SetStreak(st StreakState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveKey(KeyStreak, st); err != nil {
		return err
	}
	s.streak = st
	return nil
}

// Session returns the stored session state for an activity class. Classes
// are lazily loaded on first access.
func (s *ProgressStore) Session(class string) (SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.sessions[class]; ok {
		return st, nil
	}
	var st SessionState
	if err := s.loadKey(sessionKey(class), &st); err != nil {
		return SessionState{}, err
	}
	s.sessions[class] = st
	return st, nil
}

// SetSession replaces and persists the session state for an activity class.
func (s *ProgressStore) SetSession(class string, st SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveKey(sessionKey(class), st); err != nil {
		return err
	}
	s.sessions[class] = st
	return nil
}
