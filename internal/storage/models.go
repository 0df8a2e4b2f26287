package storage

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type TherapySession struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// Active reports whether the session has not been ended.
func (s TherapySession) Active() bool {
	return s.EndedAt == nil
}

type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type GameSession struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	GameType        string    `json:"game_type"`
	DurationSeconds int       `json:"duration_seconds"`
	PreGameMood     *int      `json:"pre_game_mood,omitempty"`
	PostGameMood    *int      `json:"post_game_mood,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type MoodEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	MoodScore int       `json:"mood_score"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
