package storage

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	newPoolFn  = pgxpool.New
	pingPoolFn = func(ctx context.Context, pool *pgxpool.Pool) error { return pool.Ping(ctx) }
)

func ConnectPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := newPoolFn(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pingPoolFn(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

type PostgresStore struct {
	db    Querier
	close func()
}

// NewPostgresStore wraps a pool. closeFn may be nil.
func NewPostgresStore(db Querier, closeFn func()) *PostgresStore {
	return &PostgresStore{db: db, close: closeFn}
}

func (s *PostgresStore) Close() {
	if s.close != nil {
		s.close()
	}
}

func (s *PostgresStore) CreateTherapySession(ctx context.Context, userID string) (TherapySession, error) {
	ts := TherapySession{ID: uuid.NewString(), UserID: userID}
	row := s.db.QueryRow(ctx, `
		INSERT INTO therapy_sessions (id, user_id)
		VALUES ($1,$2)
		RETURNING created_at
	`, ts.ID, ts.UserID)
	if err := row.Scan(&ts.CreatedAt); err != nil {
		return TherapySession{}, err
	}
	return ts, nil
}

func (s *PostgresStore) ActiveTherapySession(ctx context.Context, userID string) (TherapySession, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, created_at, ended_at
		FROM therapy_sessions
		WHERE user_id=$1 AND ended_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`, userID)
	return scanSession(row)
}

func (s *PostgresStore) TherapySession(ctx context.Context, id string) (TherapySession, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, created_at, ended_at
		FROM therapy_sessions WHERE id=$1
	`, id)
	return scanSession(row)
}

func scanSession(row pgx.Row) (TherapySession, error) {
	var ts TherapySession
	if err := row.Scan(&ts.ID, &ts.UserID, &ts.CreatedAt, &ts.EndedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TherapySession{}, ErrNotFound
		}
		return TherapySession{}, err
	}
	return ts, nil
}

func (s *PostgresStore) EndTherapySession(ctx context.Context, id string, at time.Time) error {
	tag, err := s.db.Exec(ctx, `UPDATE therapy_sessions SET ended_at=$2 WHERE id=$1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) InsertMessage(ctx context.Context, m Message) (Message, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO messages (id, session_id, role, content)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, m.ID, m.SessionID, string(m.Role), m.Content)
	if err := row.Scan(&m.CreatedAt); err != nil {
		return Message{}, err
	}
	return m, nil
}

func (s *PostgresStore) Messages(ctx context.Context, sessionID string) ([]Message, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, session_id, role, content, created_at
		FROM messages
		WHERE session_id=$1
		ORDER BY created_at ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var role string
		if err := rows.Scan(&m.ID, &m.SessionID, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Role = Role(role)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *PostgresStore) InsertGameSession(ctx context.Context, g GameSession) (GameSession, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO game_sessions (id, user_id, game_type, duration_seconds, pre_game_mood, post_game_mood)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, g.ID, g.UserID, g.GameType, g.DurationSeconds, g.PreGameMood, g.PostGameMood)
	if err := row.Scan(&g.CreatedAt); err != nil {
		return GameSession{}, err
	}
	return g, nil
}

func (s *PostgresStore) GameSessions(ctx context.Context, userID string) ([]GameSession, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, game_type, duration_seconds, pre_game_mood, post_game_mood, created_at
		FROM game_sessions
		WHERE user_id=$1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GameSession
	for rows.Next() {
		var g GameSession
		if err := rows.Scan(&g.ID, &g.UserID, &g.GameType, &g.DurationSeconds, &g.PreGameMood, &g.PostGameMood, &g.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *PostgresStore) InsertMoodEntry(ctx context.Context, e MoodEntry) (MoodEntry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO mood_entries (id, user_id, mood_score, notes)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, e.ID, e.UserID, e.MoodScore, e.Notes)
	if err := row.Scan(&e.CreatedAt); err != nil {
		return MoodEntry{}, err
	}
	return e, nil
}

func (s *PostgresStore) MoodEntries(ctx context.Context, userID string, limit int) ([]MoodEntry, error) {
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, mood_score, notes, created_at
		FROM mood_entries
		WHERE user_id=$1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, lim)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MoodEntry
	for rows.Next() {
		var e MoodEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.MoodScore, &e.Notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

//go:embed schema.sql
var Schema string

// Migrate applies the reference schema. Every statement is idempotent.
func Migrate(ctx context.Context, db Querier) error {
	_, err := db.Exec(ctx, Schema)
	return err
}
