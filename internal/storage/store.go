// Package storage persists therapy sessions, chat messages, game sessions
// and mood entries.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/mindwave/internal/config"
)

var ErrNotFound = errors.New("not found")

// Store is the record backend. Inserts fill in ID and CreatedAt when they
// are empty and return the stored record.
type Store interface {
	CreateTherapySession(ctx context.Context, userID string) (TherapySession, error)
	// ActiveTherapySession returns the newest session of the user that has
	// not ended, or ErrNotFound.
	ActiveTherapySession(ctx context.Context, userID string) (TherapySession, error)
	TherapySession(ctx context.Context, id string) (TherapySession, error)
	EndTherapySession(ctx context.Context, id string, at time.Time) error

	InsertMessage(ctx context.Context, m Message) (Message, error)
	// Messages are ordered oldest first.
	Messages(ctx context.Context, sessionID string) ([]Message, error)

	InsertGameSession(ctx context.Context, g GameSession) (GameSession, error)
	// GameSessions are ordered newest first.
	GameSessions(ctx context.Context, userID string) ([]GameSession, error)

	InsertMoodEntry(ctx context.Context, e MoodEntry) (MoodEntry, error)
	// MoodEntries are ordered newest first. limit <= 0 means no limit.
	MoodEntries(ctx context.Context, userID string, limit int) ([]MoodEntry, error)

	Close()
}

// Open builds the store selected by cfg.Driver, wrapped in the Redis
// session cache when an address is configured.
func Open(ctx context.Context, cfg config.StoreConfig, logger *log.Logger) (Store, error) {
	var base Store
	switch cfg.Driver {
	case "", "memory":
		base = NewMemoryStore()
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, errors.New("postgres store needs a database url")
		}
		pool, err := ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		base = NewPostgresStore(pool, pool.Close)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}

	if rdb := ConnectRedis(cfg.RedisAddr, cfg.RedisPassword); rdb != nil {
		return NewCachedStore(base, rdb, cfg.SessionTTL, logger), nil
	}
	return base, nil
}
