// Package chat runs therapy sessions: opening or resuming a session,
// exchanging messages with a Responder and ending the session.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/san-kum/mindwave/internal/storage"
)

var (
	ErrSessionEnded = errors.New("session ended")
	ErrEmptyMessage = errors.New("empty message")
)

type Options struct {
	ReplyDelay time.Duration
	Logger     *log.Logger
	Now        func() time.Time
}

type Service struct {
	store     storage.Store
	responder Responder
	delay     time.Duration
	logger    *log.Logger
	now       func() time.Time
}

func NewService(store storage.Store, responder Responder, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:     store,
		responder: responder,
		delay:     opts.ReplyDelay,
		logger:    opts.Logger,
		now:       opts.Now,
	}
}

type Transcript struct {
	Session  storage.TherapySession `json:"session"`
	Messages []storage.Message      `json:"messages"`
	Resumed  bool                   `json:"resumed"`
}

// Open resumes the user's newest unended session with its messages, or
// creates a session seeded with the welcome message.
func (s *Service) Open(ctx context.Context, userID string) (Transcript, error) {
	ts, err := s.store.ActiveTherapySession(ctx, userID)
	switch {
	case err == nil:
		msgs, err := s.store.Messages(ctx, ts.ID)
		if err != nil {
			return Transcript{}, fmt.Errorf("load messages: %w", err)
		}
		s.logger.Debug("session resumed", "session", ts.ID, "messages", len(msgs))
		return Transcript{Session: ts, Messages: msgs, Resumed: true}, nil
	case !errors.Is(err, storage.ErrNotFound):
		return Transcript{}, fmt.Errorf("find active session: %w", err)
	}

	ts, err = s.store.CreateTherapySession(ctx, userID)
	if err != nil {
		return Transcript{}, fmt.Errorf("create session: %w", err)
	}
	welcome := storage.Message{
		ID:        uuid.NewString(),
		SessionID: ts.ID,
		Role:      storage.RoleAssistant,
		Content:   Welcome,
	}
	// the welcome is shown even if it could not be stored
	if saved, err := s.store.InsertMessage(ctx, welcome); err != nil {
		s.logger.Error("save welcome message", "session", ts.ID, "err", err)
	} else {
		welcome = saved
	}
	s.logger.Info("session created", "session", ts.ID, "user", userID)
	return Transcript{Session: ts, Messages: []storage.Message{welcome}}, nil
}

// Record persists m.
func (s *Service) Record(ctx context.Context, m storage.Message) (storage.Message, error) {
	saved, err := s.store.InsertMessage(ctx, m)
	if err != nil {
		return m, fmt.Errorf("save message: %w", err)
	}
	return saved, nil
}

// Compose waits the reply delay and asks the responder. The returned
// message is not yet stored.
func (s *Service) Compose(ctx context.Context, sessionID string, history []storage.Message, input string) (storage.Message, error) {
	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return storage.Message{}, ctx.Err()
		case <-t.C:
		}
	}
	content, err := s.responder.Respond(ctx, history, input)
	if err != nil {
		return storage.Message{}, fmt.Errorf("respond: %w", err)
	}
	return storage.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      storage.RoleAssistant,
		Content:   content,
	}, nil
}

// Session returns userID's session. Sessions of other users are reported
// as storage.ErrNotFound.
func (s *Service) Session(ctx context.Context, userID, sessionID string) (storage.TherapySession, error) {
	ts, err := s.store.TherapySession(ctx, sessionID)
	if err != nil {
		return storage.TherapySession{}, err
	}
	if ts.UserID != userID {
		return storage.TherapySession{}, storage.ErrNotFound
	}
	return ts, nil
}

// Post stores a user message on an open session and then the reply.
func (s *Service) Post(ctx context.Context, userID, sessionID, content string) (storage.Message, storage.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return storage.Message{}, storage.Message{}, ErrEmptyMessage
	}
	ts, err := s.Session(ctx, userID, sessionID)
	if err != nil {
		return storage.Message{}, storage.Message{}, err
	}
	if !ts.Active() {
		return storage.Message{}, storage.Message{}, ErrSessionEnded
	}

	history, err := s.store.Messages(ctx, sessionID)
	if err != nil {
		return storage.Message{}, storage.Message{}, fmt.Errorf("load messages: %w", err)
	}
	user, err := s.Record(ctx, storage.Message{SessionID: sessionID, Role: storage.RoleUser, Content: content})
	if err != nil {
		return storage.Message{}, storage.Message{}, err
	}
	reply, err := s.Compose(ctx, sessionID, history, content)
	if err != nil {
		return user, storage.Message{}, err
	}
	reply, err = s.Record(ctx, reply)
	if err != nil {
		return user, storage.Message{}, err
	}
	return user, reply, nil
}

func (s *Service) Messages(ctx context.Context, userID, sessionID string) ([]storage.Message, error) {
	if _, err := s.Session(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.store.Messages(ctx, sessionID)
}

// End stamps the session's end time.
func (s *Service) End(ctx context.Context, userID, sessionID string) error {
	if _, err := s.Session(ctx, userID, sessionID); err != nil {
		return err
	}
	if err := s.store.EndTherapySession(ctx, sessionID, s.now()); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	s.logger.Info("session ended", "session", sessionID)
	return nil
}
