package main

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/san-kum/mindwave/internal/chat"
	"github.com/san-kum/mindwave/internal/logging"
	"github.com/san-kum/mindwave/internal/notify"
	"github.com/san-kum/mindwave/internal/storage"
)

func TestParseSweep(t *testing.T) {
	name, values, err := parseSweep("amplitude=10:50:5")
	if err != nil {
		t.Fatal(err)
	}
	if name != "amplitude" || len(values) != 5 || values[0] != 10 || values[4] != 50 {
		t.Errorf("unexpected %s %v", name, values)
	}

	name, values, err = parseSweep("frequency=0.01, 0.02,0.03")
	if err != nil {
		t.Fatal(err)
	}
	if name != "frequency" || len(values) != 3 || values[1] != 0.02 {
		t.Errorf("unexpected %s %v", name, values)
	}

	for _, bad := range []string{"amplitude", "=1", "amplitude=", "amplitude=1:2:x", "amplitude=a,b"} {
		if _, _, err := parseSweep(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestFormatParams(t *testing.T) {
	got := formatParams(map[string]float64{"frequency": 0.04, "amplitude": 20})
	if got != "amplitude=20 frequency=0.04" {
		t.Errorf("unexpected %q", got)
	}
	if formatParams(nil) != "" {
		t.Error("expected empty string")
	}
}

func TestDownsample(t *testing.T) {
	data := make([]float64, 1000)
	for i := range data {
		data[i] = float64(i)
	}
	out := downsample(data, 100)
	if len(out) != 100 || out[0] != 0 || out[99] != 990 {
		t.Errorf("unexpected downsample %d %v", len(out), out[99])
	}
	if len(downsample(data[:10], 100)) != 10 {
		t.Error("short series should pass through")
	}
}

func newConversation(t *testing.T, store storage.Store) *chat.Conversation {
	t.Helper()
	svc := chat.NewService(store, chat.NewStaticResponder(rand.New(rand.NewSource(1))), chat.Options{Logger: logging.Discard()})
	conv := chat.NewConversation(svc, "u1", notify.Discard)
	if err := conv.Open(context.Background()); err != nil {
		t.Fatal(err)
	}
	return conv
}

func TestConverseLeavesSessionOpenAtEOF(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	conv := newConversation(t, store)

	shown := 0
	if err := converse(ctx, conv, strings.NewReader("hello\n"), func() { shown++ }); err != nil {
		t.Fatal(err)
	}
	if shown != 1 {
		t.Errorf("expected one redraw, got %d", shown)
	}
	ts, err := store.ActiveTherapySession(ctx, "u1")
	if err != nil {
		t.Fatalf("session should stay open after EOF: %v", err)
	}
	msgs, _ := store.Messages(ctx, ts.ID)
	if len(msgs) != 3 {
		t.Errorf("expected welcome, message and reply, got %d", len(msgs))
	}

	resumed := newConversation(t, store)
	if got := len(resumed.Messages()); got != 3 {
		t.Errorf("expected the session resumed with 3 messages, got %d", got)
	}
}

func TestConverseEndCommand(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()
	conv := newConversation(t, store)

	if err := converse(ctx, conv, strings.NewReader("  /end  \nignored\n"), func() {}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.ActiveTherapySession(ctx, "u1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected the session ended, got %v", err)
	}
}
