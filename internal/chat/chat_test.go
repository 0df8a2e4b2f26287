package chat

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/san-kum/mindwave/internal/logging"
	"github.com/san-kum/mindwave/internal/notify"
	"github.com/san-kum/mindwave/internal/storage"
)

type failingInserts struct {
	storage.Store
}

func (failingInserts) InsertMessage(context.Context, storage.Message) (storage.Message, error) {
	return storage.Message{}, errors.New("insert failed")
}

func newService(store storage.Store) *Service {
	return NewService(store, NewStaticResponder(rand.New(rand.NewSource(1))), Options{Logger: logging.Discard()})
}

func isReply(s string) bool {
	for _, r := range Replies {
		if r == s {
			return true
		}
	}
	return false
}

func TestOpenCreatesWithWelcome(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := newService(store)
	ctx := context.Background()

	tr, err := svc.Open(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if tr.Resumed {
		t.Error("first open should create a session")
	}
	if len(tr.Messages) != 1 || tr.Messages[0].Content != Welcome || tr.Messages[0].Role != storage.RoleAssistant {
		t.Fatalf("expected welcome message, got %+v", tr.Messages)
	}

	again, err := svc.Open(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !again.Resumed || again.Session.ID != tr.Session.ID {
		t.Errorf("expected resume of %s, got %+v", tr.Session.ID, again.Session)
	}
	if len(again.Messages) != 1 {
		t.Errorf("expected stored welcome, got %d messages", len(again.Messages))
	}
}

func TestPost(t *testing.T) {
	svc := newService(storage.NewMemoryStore())
	ctx := context.Background()
	tr, _ := svc.Open(ctx, "u1")

	user, reply, err := svc.Post(ctx, "u1", tr.Session.ID, "  I feel restless  ")
	if err != nil {
		t.Fatal(err)
	}
	if user.Content != "I feel restless" || user.Role != storage.RoleUser {
		t.Errorf("unexpected user message %+v", user)
	}
	if !isReply(reply.Content) {
		t.Errorf("reply not from the fixed list: %q", reply.Content)
	}

	msgs, _ := svc.Messages(ctx, "u1", tr.Session.ID)
	if len(msgs) != 3 {
		t.Errorf("expected welcome, user, reply; got %d", len(msgs))
	}

	if _, _, err := svc.Post(ctx, "u1", tr.Session.ID, "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}
	if _, _, err := svc.Post(ctx, "u1", "missing", "hi"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := svc.End(ctx, "u1", tr.Session.ID); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Post(ctx, "u1", tr.Session.ID, "hi"); !errors.Is(err, ErrSessionEnded) {
		t.Errorf("expected ErrSessionEnded, got %v", err)
	}
}

func TestSessionsBelongToTheirUser(t *testing.T) {
	svc := newService(storage.NewMemoryStore())
	ctx := context.Background()
	tr, _ := svc.Open(ctx, "u1")

	if _, err := svc.Messages(ctx, "u2", tr.Session.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound reading another user's session, got %v", err)
	}
	if _, _, err := svc.Post(ctx, "u2", tr.Session.ID, "hi"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound posting to another user's session, got %v", err)
	}
	if err := svc.End(ctx, "u2", tr.Session.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound ending another user's session, got %v", err)
	}

	msgs, _ := svc.Messages(ctx, "u1", tr.Session.ID)
	if len(msgs) != 1 {
		t.Errorf("expected only the welcome, got %d messages", len(msgs))
	}
	if ts, err := svc.Session(ctx, "u1", tr.Session.ID); err != nil || !ts.Active() {
		t.Errorf("session should still be open: %+v %v", ts, err)
	}
}

func TestComposeHonorsDelayAndContext(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(), NewStaticResponder(rand.New(rand.NewSource(1))), Options{
		ReplyDelay: time.Hour,
		Logger:     logging.Discard(),
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := svc.Compose(ctx, "s", nil, "hi"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestResponderSeesHistory(t *testing.T) {
	var seen int
	echo := ResponderFunc(func(_ context.Context, history []storage.Message, input string) (string, error) {
		seen = len(history)
		return "echo: " + input, nil
	})
	svc := NewService(storage.NewMemoryStore(), echo, Options{Logger: logging.Discard()})
	ctx := context.Background()
	tr, _ := svc.Open(ctx, "u1")

	_, reply, err := svc.Post(ctx, "u1", tr.Session.ID, "hello")
	if err != nil {
		t.Fatal(err)
	}
	if reply.Content != "echo: hello" || seen != 1 {
		t.Errorf("unexpected reply %q with history %d", reply.Content, seen)
	}
}

func TestConversationFlow(t *testing.T) {
	store := storage.NewMemoryStore()
	rec := &notify.Recorder{}
	conv := NewConversation(newService(store), "u1", rec)
	ctx := context.Background()

	if err := conv.Open(ctx); err != nil {
		t.Fatal(err)
	}
	first := conv.SessionID()

	if err := conv.Send(ctx, "hello"); err != nil {
		t.Fatal(err)
	}
	msgs := conv.Messages()
	if len(msgs) != 3 || msgs[1].Content != "hello" {
		t.Fatalf("unexpected transcript %+v", msgs)
	}

	if err := conv.Send(ctx, "   "); err != nil || len(conv.Messages()) != 3 {
		t.Error("blank input should be ignored")
	}

	if err := conv.End(ctx); err != nil {
		t.Fatal(err)
	}
	if conv.SessionID() != "" || len(conv.Messages()) != 0 {
		t.Error("end should clear the session")
	}
	if last, _ := rec.Last(); last.Title != "Session Ended" {
		t.Errorf("expected Session Ended notice, got %+v", last)
	}

	if err := conv.End(ctx); err != nil {
		t.Error("end without a session should be a no-op")
	}

	if err := conv.Send(ctx, "back again"); err != nil {
		t.Fatal(err)
	}
	if conv.SessionID() == "" || conv.SessionID() == first {
		t.Errorf("expected a fresh session after end, got %q", conv.SessionID())
	}
}

func TestConversationWithoutUser(t *testing.T) {
	conv := NewConversation(newService(storage.NewMemoryStore()), "", nil)
	ctx := context.Background()
	if err := conv.Open(ctx); err != nil {
		t.Fatal(err)
	}
	if err := conv.Send(ctx, "hello"); err != nil {
		t.Fatal(err)
	}
	if conv.SessionID() != "" || len(conv.Messages()) != 0 {
		t.Error("no user should be a no-op")
	}
}

func TestConversationKeepsOptimisticMessage(t *testing.T) {
	base := storage.NewMemoryStore()
	rec := &notify.Recorder{}
	svc := newService(base)
	conv := NewConversation(svc, "u1", rec)
	ctx := context.Background()
	if err := conv.Open(ctx); err != nil {
		t.Fatal(err)
	}

	svc.store = failingInserts{Store: base}
	if err := conv.Send(ctx, "hello"); err == nil {
		t.Fatal("expected send error")
	}
	msgs := conv.Messages()
	if len(msgs) != 2 || msgs[1].Content != "hello" {
		t.Errorf("optimistic message should stay, got %+v", msgs)
	}
	last, _ := rec.Last()
	if last.Variant != notify.Destructive || last.Description != "Failed to send message" {
		t.Errorf("unexpected notice %+v", last)
	}
}
