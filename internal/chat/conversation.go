package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/san-kum/mindwave/internal/notify"
	"github.com/san-kum/mindwave/internal/storage"
)

// Conversation is the client side of one user's chat. It shows messages
// as soon as they are typed and stores them afterwards; a failed store
// leaves the shown message in place.
type Conversation struct {
	svc      *Service
	userID   string
	notifier notify.Notifier
	logger   *log.Logger

	mu       sync.Mutex
	session  *storage.TherapySession
	messages []storage.Message
}

func NewConversation(svc *Service, userID string, notifier notify.Notifier) *Conversation {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Conversation{svc: svc, userID: userID, notifier: notifier, logger: svc.logger}
}

func (c *Conversation) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.ID
}

func (c *Conversation) Messages() []storage.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]storage.Message(nil), c.messages...)
}

// Open loads or creates the session. It does nothing without a user or
// when a session is already open.
func (c *Conversation) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.openLocked(ctx)
}

func (c *Conversation) openLocked(ctx context.Context) error {
	if c.userID == "" || c.session != nil {
		return nil
	}
	tr, err := c.svc.Open(ctx, c.userID)
	if err != nil {
		c.logger.Error("setting up chat session", "user", c.userID, "err", err)
		c.notifier.Notify(notify.Error("Failed to set up chat session"))
		return err
	}
	c.session = &tr.Session
	c.messages = tr.Messages
	return nil
}

// Send posts input and waits for the reply. Blank input is ignored. A
// conversation whose session was ended opens a fresh one first.
func (c *Conversation) Send(ctx context.Context, input string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.TrimSpace(input) == "" || c.userID == "" {
		return nil
	}
	if c.session == nil {
		if err := c.openLocked(ctx); err != nil {
			return err
		}
	}
	sessionID := c.session.ID

	user := storage.Message{ID: uuid.NewString(), SessionID: sessionID, Role: storage.RoleUser, Content: input}
	history := append([]storage.Message(nil), c.messages...)
	c.messages = append(c.messages, user)

	if _, err := c.svc.Record(ctx, user); err != nil {
		c.logger.Error("sending message", "session", sessionID, "err", err)
		c.notifier.Notify(notify.Error("Failed to send message"))
		return err
	}

	reply, err := c.svc.Compose(ctx, sessionID, history, input)
	if err != nil {
		c.logger.Error("composing reply", "session", sessionID, "err", err)
		c.notifier.Notify(notify.Error("Failed to send message"))
		return err
	}
	c.messages = append(c.messages, reply)
	if _, err := c.svc.Record(ctx, reply); err != nil {
		c.logger.Error("saving reply", "session", sessionID, "err", err)
		c.notifier.Notify(notify.Error("Failed to send message"))
		return err
	}
	return nil
}

// End closes the session and clears the transcript. Without a session it
// does nothing.
func (c *Conversation) End(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil || c.userID == "" {
		return nil
	}
	if err := c.svc.End(ctx, c.userID, c.session.ID); err != nil {
		c.logger.Error("ending session", "session", c.session.ID, "err", err)
		c.notifier.Notify(notify.Error("Failed to end session"))
		return err
	}
	c.notifier.Notify(notify.Notice{Title: "Session Ended", Description: "Your therapy session has been saved"})
	c.session = nil
	c.messages = nil
	return nil
}
