package games

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/mindwave/internal/notify"
	"github.com/san-kum/mindwave/internal/storage"
)

type pending struct {
	game     GameType
	duration int
}

// Tracker times one user's play and turns it into game sessions. The
// timer starts once a pre-game mood is known; each saved session carries
// its post-game mood forward as the next pre-game mood.
type Tracker struct {
	svc      *Service
	userID   string
	notifier notify.Notifier
	now      func() time.Time

	game    GameType
	started time.Time
	pre     *int
	ended   *pending
}

func NewTracker(svc *Service, userID string, notifier notify.Notifier) *Tracker {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Tracker{svc: svc, userID: userID, notifier: notifier, now: time.Now, game: Pendulum}
}

// SetClock replaces the time source.
func (t *Tracker) SetClock(now func() time.Time) { t.now = now }

func (t *Tracker) Game() GameType { return t.game }

func (t *Tracker) Running() bool { return !t.started.IsZero() }

// PreMood returns the current pre-game mood, if any.
func (t *Tracker) PreMood() (int, bool) {
	if t.pre == nil {
		return 0, false
	}
	return *t.pre, true
}

// AwaitingPostMood reports whether End was called and Save is pending.
func (t *Tracker) AwaitingPostMood() bool { return t.ended != nil }

func (t *Tracker) SetPreMood(score int) error {
	if !ValidMood(score) {
		return fmt.Errorf("%w: %d", ErrInvalidMood, score)
	}
	t.pre = &score
	t.started = t.now()
	return nil
}

// Switch ends the running game, if any, and restarts the timer on game.
// It reports whether a post-game mood is now wanted.
func (t *Tracker) Switch(game GameType) bool {
	ended := false
	if t.Running() {
		ended = t.End()
	}
	t.game = game
	t.started = t.now()
	return ended
}

// Select starts tracking game, or moves to it from the one being played.
// The first call takes preMood as the pre-game mood and starts the clock.
// Later calls close the previous game and save it with the mood unchanged.
func (t *Tracker) Select(ctx context.Context, game GameType, preMood int) error {
	if t.pre == nil {
		t.game = game
		return t.SetPreMood(preMood)
	}
	if !t.Switch(game) {
		return nil
	}
	_, _, err := t.Save(ctx, *t.pre)
	return err
}

// End stops the clock on the current game and asks for a post-game mood.
// Without a start time, user or pre-game mood it does nothing.
func (t *Tracker) End() bool {
	if !t.Running() || t.userID == "" || t.pre == nil {
		return false
	}
	t.ended = &pending{game: t.game, duration: t.elapsed()}
	return true
}

func (t *Tracker) elapsed() int {
	return int(math.Round(t.now().Sub(t.started).Seconds()))
}

// Save stores the session that End closed, or the running one when End
// was not called. The returned bool is false when prerequisites were
// missing and nothing was stored.
func (t *Tracker) Save(ctx context.Context, postMood int) (storage.GameSession, bool, error) {
	if !t.Running() || t.userID == "" || t.pre == nil {
		return storage.GameSession{}, false, nil
	}
	if !ValidMood(postMood) {
		return storage.GameSession{}, false, fmt.Errorf("%w: %d", ErrInvalidMood, postMood)
	}

	p := pending{game: t.game, duration: t.elapsed()}
	if t.ended != nil {
		p = *t.ended
	}
	pre := *t.pre
	post := postMood

	g, err := t.svc.SaveGameSession(ctx, t.userID, p.game, p.duration, &pre, &post)
	if err != nil {
		t.svc.logger.Error("saving game session", "user", t.userID, "err", err)
		t.notifier.Notify(notify.Error("Failed to save game session"))
		return storage.GameSession{}, false, err
	}

	t.notifier.Notify(notify.Notice{Title: "Session Saved", Description: "Your game session has been recorded"})
	t.started = t.now()
	t.pre = &post
	t.ended = nil
	return g, true, nil
}
