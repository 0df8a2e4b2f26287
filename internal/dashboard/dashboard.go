// Package dashboard summarizes mood entries and game sessions.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/mindwave/internal/games"
	"github.com/san-kum/mindwave/internal/storage"
)

type MoodPoint struct {
	Day   string `json:"day"`
	Date  string `json:"date"`
	Value int    `json:"value"`
}

// MoodSeries turns newest-first entries into chart points, oldest first.
func MoodSeries(entries []storage.MoodEntry) []MoodPoint {
	out := make([]MoodPoint, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		out = append(out, MoodPoint{
			Day:   e.CreatedAt.Format("Mon"),
			Date:  e.CreatedAt.Format("Jan 2"),
			Value: e.MoodScore,
		})
	}
	return out
}

type Activity struct {
	Name    string  `json:"name"`
	Seconds int     `json:"value"`
	Percent float64 `json:"percent"`
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ActivityBreakdown sums play time per game type in order of first
// appearance.
func ActivityBreakdown(sessions []storage.GameSession) []Activity {
	var out []Activity
	index := make(map[string]int)
	total := 0
	for _, s := range sessions {
		i, ok := index[s.GameType]
		if !ok {
			i = len(out)
			index[s.GameType] = i
			out = append(out, Activity{Name: capitalize(s.GameType)})
		}
		out[i].Seconds += s.DurationSeconds
		total += s.DurationSeconds
	}
	if total > 0 {
		for i := range out {
			out[i].Percent = float64(out[i].Seconds) / float64(total)
		}
	}
	return out
}

type Delta struct {
	Value int
	// Known is false when either mood is missing.
	Known bool
}

func MoodDelta(g storage.GameSession) Delta {
	if g.PreGameMood == nil || g.PostGameMood == nil {
		return Delta{}
	}
	return Delta{Value: *g.PostGameMood - *g.PreGameMood, Known: true}
}

// Positive selects the improvement style. Zero counts as not improved.
func (d Delta) Positive() bool { return d.Known && d.Value > 0 }

func (d Delta) String() string {
	if !d.Known {
		return "-"
	}
	if d.Value > 0 {
		return fmt.Sprintf("+%d", d.Value)
	}
	return fmt.Sprintf("%d", d.Value)
}

type Insight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func Insights(moods []MoodPoint, sessions []storage.GameSession) []Insight {
	if len(sessions) == 0 {
		return []Insight{{
			Title:       "No Data Yet",
			Description: "Start using the therapy chat and relaxation games to see personalized insights here.",
		}}
	}

	var out []Insight

	if len(moods) > 0 {
		sum := 0
		for _, m := range moods {
			sum += m.Value
		}
		avg := float64(sum) / float64(len(moods))
		advice := "Consider scheduling more relaxation sessions to improve your mood."
		if avg > 6 {
			advice = "You've been maintaining a positive mood overall."
		}
		out = append(out, Insight{
			Title:       "Mood Patterns",
			Description: fmt.Sprintf("Your average mood score is %.1f. %s", avg, advice),
		})
	}

	if game, avg, ok := mostEffective(sessions); ok {
		out = append(out, Insight{
			Title:       "Game Benefits",
			Description: fmt.Sprintf("The %s game appears to have the most calming effect on you with an average mood improvement of %.1f points.", game, avg),
		})
	}

	perWeek := float64(len(sessions))
	if len(sessions) > 7 {
		perWeek /= 2
	}
	advice := "Great job maintaining a consistent practice!"
	if perWeek < 3 {
		advice = "Consider increasing to 3-4 sessions per week for optimal benefits."
	}
	out = append(out, Insight{
		Title:       "Session Frequency",
		Description: fmt.Sprintf("You've completed approximately %.1f relaxation sessions per week. %s", perWeek, advice),
	})

	return out
}

type effect struct {
	game        string
	count       int
	improvement int
}

func mostEffective(sessions []storage.GameSession) (string, float64, bool) {
	var effects []*effect
	byGame := make(map[string]*effect)
	for _, s := range sessions {
		d := MoodDelta(s)
		if !d.Known {
			continue
		}
		e, ok := byGame[s.GameType]
		if !ok {
			e = &effect{game: s.GameType}
			byGame[s.GameType] = e
			effects = append(effects, e)
		}
		e.count++
		e.improvement += d.Value
	}
	if len(effects) == 0 {
		return "", 0, false
	}
	sort.SliceStable(effects, func(i, j int) bool {
		return effects[i].avg() > effects[j].avg()
	})
	return effects[0].game, effects[0].avg(), true
}

func (e *effect) avg() float64 {
	return float64(e.improvement) / float64(e.count)
}

// FormatDuration renders seconds as "Xm Ys".
func FormatDuration(seconds int) string {
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

type Dashboard struct {
	Moods    []MoodPoint           `json:"mood"`
	Activity []Activity            `json:"activity"`
	Sessions []storage.GameSession `json:"sessions"`
	Insights []Insight             `json:"insights"`
}

func Build(moods []storage.MoodEntry, sessions []storage.GameSession) Dashboard {
	points := MoodSeries(moods)
	return Dashboard{
		Moods:    points,
		Activity: ActivityBreakdown(sessions),
		Sessions: sessions,
		Insights: Insights(points, sessions),
	}
}

// Load fetches the user's records and builds the dashboard.
func Load(ctx context.Context, svc *games.Service, userID string) (Dashboard, error) {
	moods, err := svc.UserMoodEntries(ctx, userID, 0)
	if err != nil {
		return Dashboard{}, err
	}
	sessions, err := svc.UserGameSessions(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	return Build(moods, sessions), nil
}
