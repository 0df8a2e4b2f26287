package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryStore struct {
	mu       sync.RWMutex
	now      func() time.Time
	sessions []TherapySession
	messages map[string][]Message // session id -> messages
	games    []GameSession
	moods    []MoodEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:      time.Now,
		messages: make(map[string][]Message),
	}
}

// SetClock replaces the timestamp source.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) Close() {}

func (s *MemoryStore) CreateTherapySession(_ context.Context, userID string) (TherapySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := TherapySession{ID: uuid.NewString(), UserID: userID, CreatedAt: s.now()}
	s.sessions = append(s.sessions, ts)
	return ts, nil
}

func (s *MemoryStore) ActiveTherapySession(_ context.Context, userID string) (TherapySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *TherapySession
	for i := range s.sessions {
		ts := &s.sessions[i]
		if ts.UserID != userID || !ts.Active() {
			continue
		}
		if found == nil || !ts.CreatedAt.Before(found.CreatedAt) {
			found = ts
		}
	}
	if found == nil {
		return TherapySession{}, ErrNotFound
	}
	return *found, nil
}

func (s *MemoryStore) TherapySession(_ context.Context, id string) (TherapySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ts := range s.sessions {
		if ts.ID == id {
			return ts, nil
		}
	}
	return TherapySession{}, ErrNotFound
}

func (s *MemoryStore) EndTherapySession(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			at := at
			s.sessions[i].EndedAt = &at
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) InsertMessage(_ context.Context, m Message) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = s.now()
	s.messages[m.SessionID] = append(s.messages[m.SessionID], m)
	return m, nil
}

func (s *MemoryStore) Messages(_ context.Context, sessionID string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]Message(nil), s.messages[sessionID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) InsertGameSession(_ context.Context, g GameSession) (GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	g.CreatedAt = s.now()
	s.games = append(s.games, g)
	return g, nil
}

func (s *MemoryStore) GameSessions(_ context.Context, userID string) ([]GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []GameSession
	for i := len(s.games) - 1; i >= 0; i-- {
		if s.games[i].UserID == userID {
			out = append(out, s.games[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) InsertMoodEntry(_ context.Context, e MoodEntry) (MoodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = s.now()
	s.moods = append(s.moods, e)
	return e, nil
}

func (s *MemoryStore) MoodEntries(_ context.Context, userID string, limit int) ([]MoodEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []MoodEntry
	for i := len(s.moods) - 1; i >= 0; i-- {
		if s.moods[i].UserID == userID {
			out = append(out, s.moods[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
