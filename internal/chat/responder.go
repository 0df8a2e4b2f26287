package chat

import (
	"context"
	"math/rand"
	"sync"

	"github.com/san-kum/mindwave/internal/storage"
)

const Welcome = "Welcome to your therapy session. I'm your AI therapist with a background in physics and psychology. How are you feeling today?"

var Replies = []string{
	"I notice you're feeling that way. From a physics perspective, emotions are like energy - they can't be destroyed, only transformed. Let's work on transforming this energy into something positive.",
	"That's interesting. In physics, we talk about equilibrium. Your mind seeks emotional equilibrium too. What activities help you restore balance?",
	"I understand. Think of your thoughts like particles in motion - they have momentum. Let's work on redirecting that momentum in a healthier direction.",
	"From both physics and psychology perspectives, resistance often leads to persistence. What if we practice acceptance of these feelings while creating space for change?",
	"Your emotions, like energy in physics, follow certain patterns. Have you noticed any patterns in when these feelings arise?",
}

// Responder produces the assistant reply to input given the prior
// messages of the session.
type Responder interface {
	Respond(ctx context.Context, history []storage.Message, input string) (string, error)
}

// StaticResponder picks uniformly from a fixed list of replies.
type StaticResponder struct {
	mu      sync.Mutex
	rng     *rand.Rand
	replies []string
}

func NewStaticResponder(rng *rand.Rand) *StaticResponder {
	return &StaticResponder{rng: rng, replies: Replies}
}

func (r *StaticResponder) Respond(ctx context.Context, _ []storage.Message, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replies[r.rng.Intn(len(r.replies))], nil
}

type ResponderFunc func(ctx context.Context, history []storage.Message, input string) (string, error)

func (f ResponderFunc) Respond(ctx context.Context, history []storage.Message, input string) (string, error) {
	return f(ctx, history, input)
}
