// Package games records game sessions and mood entries.
package games

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/san-kum/mindwave/internal/storage"
)

type GameType string

const (
	Pendulum  GameType = "pendulum"
	Particles GameType = "particles"
	Waves     GameType = "waves"
)

var Types = []GameType{Pendulum, Particles, Waves}

const (
	MinMood          = 1
	MaxMood          = 10
	DefaultMoodLimit = 7
)

var (
	ErrInvalidMood     = errors.New("mood score must be between 1 and 10")
	ErrInvalidGame     = errors.New("unknown game type")
	ErrInvalidDuration = errors.New("duration must not be negative")
)

func ParseGameType(s string) (GameType, error) {
	g := GameType(strings.ToLower(strings.TrimSpace(s)))
	for _, t := range Types {
		if g == t {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidGame, s)
}

func ValidMood(score int) bool {
	return score >= MinMood && score <= MaxMood
}

func checkMood(score *int) error {
	if score != nil && !ValidMood(*score) {
		return fmt.Errorf("%w: %d", ErrInvalidMood, *score)
	}
	return nil
}

type Service struct {
	store     storage.Store
	logger    *log.Logger
	moodLimit int
}

func NewService(store storage.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{store: store, logger: logger, moodLimit: DefaultMoodLimit}
}

// SetMoodLimit changes the default number of mood entries returned.
func (s *Service) SetMoodLimit(n int) {
	if n > 0 {
		s.moodLimit = n
	}
}

func (s *Service) SaveGameSession(ctx context.Context, userID string, game GameType, durationSeconds int, pre, post *int) (storage.GameSession, error) {
	if _, err := ParseGameType(string(game)); err != nil {
		return storage.GameSession{}, err
	}
	if durationSeconds < 0 {
		return storage.GameSession{}, ErrInvalidDuration
	}
	if err := checkMood(pre); err != nil {
		return storage.GameSession{}, err
	}
	if err := checkMood(post); err != nil {
		return storage.GameSession{}, err
	}

	g, err := s.store.InsertGameSession(ctx, storage.GameSession{
		UserID:          userID,
		GameType:        string(game),
		DurationSeconds: durationSeconds,
		PreGameMood:     pre,
		PostGameMood:    post,
	})
	if err != nil {
		return storage.GameSession{}, fmt.Errorf("saving game session: %w", err)
	}
	s.logger.Info("game session saved", "user", userID, "game", game, "seconds", durationSeconds)
	return g, nil
}

// UserGameSessions lists the user's game sessions, newest first.
func (s *Service) UserGameSessions(ctx context.Context, userID string) ([]storage.GameSession, error) {
	out, err := s.store.GameSessions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching game sessions: %w", err)
	}
	return out, nil
}

func (s *Service) SaveMoodEntry(ctx context.Context, userID string, score int, notes string) (storage.MoodEntry, error) {
	if !ValidMood(score) {
		return storage.MoodEntry{}, fmt.Errorf("%w: %d", ErrInvalidMood, score)
	}
	e := storage.MoodEntry{UserID: userID, MoodScore: score}
	if notes = strings.TrimSpace(notes); notes != "" {
		e.Notes = &notes
	}
	e, err := s.store.InsertMoodEntry(ctx, e)
	if err != nil {
		return storage.MoodEntry{}, fmt.Errorf("saving mood entry: %w", err)
	}
	return e, nil
}

// UserMoodEntries lists the newest mood entries. limit <= 0 uses the
// service default.
func (s *Service) UserMoodEntries(ctx context.Context, userID string, limit int) ([]storage.MoodEntry, error) {
	if limit <= 0 {
		limit = s.moodLimit
	}
	out, err := s.store.MoodEntries(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching mood entries: %w", err)
	}
	return out, nil
}
