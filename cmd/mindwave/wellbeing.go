package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/mindwave/internal/chat"
	"github.com/san-kum/mindwave/internal/dashboard"
	"github.com/san-kum/mindwave/internal/games"
	"github.com/san-kum/mindwave/internal/notify"
	"github.com/san-kum/mindwave/internal/storage"
	"github.com/san-kum/mindwave/internal/training"
	"github.com/san-kum/mindwave/internal/viz"
)

var (
	notes     string
	limit     int
	duration  int
	preScore  int
	postScore int
	dashWidth int

	baseModel    string
	epochs       int
	learningRate float64
	batchSize    int
)

func wellbeingCommands() []*cobra.Command {
	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "talk with the assistant; /end closes the session",
		RunE:  chatLoop,
	}

	moodCmd := &cobra.Command{
		Use:   "mood",
		Short: "record and review moods",
	}
	moodAddCmd := &cobra.Command{
		Use:   "add [score]",
		Short: "record a mood from 1 to 10",
		Args:  cobra.ExactArgs(1),
		RunE:  addMood,
	}
	moodAddCmd.Flags().StringVar(&notes, "notes", "", "optional notes")
	moodListCmd := &cobra.Command{
		Use:   "list",
		Short: "list recent moods, newest first",
		RunE:  listMoods,
	}
	moodListCmd.Flags().IntVar(&limit, "limit", 0, "number of entries (default from config)")
	moodCmd.AddCommand(moodAddCmd, moodListCmd)

	gamesCmd := &cobra.Command{
		Use:   "games",
		Short: "record and review game sessions",
	}
	gamesSaveCmd := &cobra.Command{
		Use:   "save [game]",
		Short: "record a finished game session",
		Args:  cobra.ExactArgs(1),
		RunE:  saveGame,
	}
	gamesSaveCmd.Flags().IntVar(&duration, "duration", 0, "seconds played")
	gamesSaveCmd.Flags().IntVar(&preScore, "pre", 0, "mood before playing (1-10)")
	gamesSaveCmd.Flags().IntVar(&postScore, "post", 0, "mood after playing (1-10)")
	gamesListCmd := &cobra.Command{
		Use:   "list",
		Short: "list game sessions, newest first",
		RunE:  listGames,
	}
	gamesCmd.AddCommand(gamesSaveCmd, gamesListCmd)

	dashboardCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "mood trends, activity and insights",
		RunE:  showDashboard,
	}
	dashboardCmd.Flags().IntVar(&dashWidth, "width", 80, "panel width")

	trainCmd := &cobra.Command{
		Use:   "train",
		Short: "simulate fine-tuning a therapy model",
		RunE:  train,
	}
	trainCmd.Flags().StringVar(&baseModel, "model", "", fmt.Sprintf("base model (%s)", strings.Join(training.BaseModels, ", ")))
	trainCmd.Flags().IntVar(&epochs, "epochs", 0, "epochs (1-10)")
	trainCmd.Flags().Float64Var(&learningRate, "lr", 0, "learning rate (0.0001-0.01)")
	trainCmd.Flags().IntVar(&batchSize, "batch", 0, "batch size (1-64)")

	return []*cobra.Command{chatCmd, moodCmd, gamesCmd, dashboardCmd, trainCmd}
}

func gameService(ctx context.Context) (*games.Service, storage.Store, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	return newGameService(st), st, nil
}

func newGameService(st storage.Store) *games.Service {
	svc := games.NewService(st, logger)
	svc.SetMoodLimit(cfg.Store.MoodLimit)
	return svc
}

func chatLoop(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	userID, err := requireUser()
	if err != nil {
		return err
	}
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := chat.NewService(st, chat.NewStaticResponder(rand.New(rand.NewSource(time.Now().UnixNano()))), chat.Options{
		ReplyDelay: cfg.Chat.ReplyDelay,
		Logger:     logger,
	})
	conv := chat.NewConversation(svc, userID, notify.NewConsole(os.Stdout))
	if err := conv.Open(ctx); err != nil {
		return err
	}

	shown := 0
	show := func() {
		msgs := conv.Messages()
		for _, m := range msgs[min(shown, len(msgs)):] {
			who := viz.Label().Render("you")
			if m.Role == storage.RoleAssistant {
				who = viz.Title().Render("mindwave")
			}
			fmt.Printf("%s  %s\n", who, m.Content)
		}
		shown = len(msgs)
	}
	show()

	return converse(ctx, conv, os.Stdin, show)
}

// converse feeds lines from in to conv. Only /end closes the session; at
// EOF it stays open and is resumed next time.
func converse(ctx context.Context, conv *chat.Conversation, in io.Reader, show func()) error {
	sc := bufio.NewScanner(in)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			fmt.Println()
			return sc.Err()
		}
		text := sc.Text()
		if strings.TrimSpace(text) == "/end" {
			return conv.End(ctx)
		}
		if err := conv.Send(ctx, text); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		show()
	}
}

func addMood(cmd *cobra.Command, args []string) error {
	userID, err := requireUser()
	if err != nil {
		return err
	}
	score, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: %s", games.ErrInvalidMood, args[0])
	}
	svc, st, err := gameService(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	e, err := svc.SaveMoodEntry(cmd.Context(), userID, score, notes)
	if err != nil {
		return err
	}
	fmt.Printf("recorded mood %d at %s\n", e.MoodScore, e.CreatedAt.Format("Jan 2 15:04"))
	return nil
}

func listMoods(cmd *cobra.Command, args []string) error {
	userID, err := requireUser()
	if err != nil {
		return err
	}
	svc, st, err := gameService(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := svc.UserMoodEntries(cmd.Context(), userID, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println(dashboard.EmptyMood)
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tMOOD\tNOTES")
	for _, e := range entries {
		n := ""
		if e.Notes != nil {
			n = *e.Notes
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", e.CreatedAt.Format("Jan 2 15:04"), e.MoodScore, n)
	}
	return w.Flush()
}

func saveGame(cmd *cobra.Command, args []string) error {
	userID, err := requireUser()
	if err != nil {
		return err
	}
	game, err := games.ParseGameType(args[0])
	if err != nil {
		return err
	}
	optional := func(name string, v int) *int {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		return &v
	}
	svc, st, err := gameService(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	g, err := svc.SaveGameSession(cmd.Context(), userID, game, duration, optional("pre", preScore), optional("post", postScore))
	if err != nil {
		return err
	}
	fmt.Printf("recorded %s for %s (%s)\n", g.GameType, dashboard.FormatDuration(g.DurationSeconds), dashboard.MoodDelta(g))
	return nil
}

func listGames(cmd *cobra.Command, args []string) error {
	userID, err := requireUser()
	if err != nil {
		return err
	}
	svc, st, err := gameService(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	sessions, err := svc.UserGameSessions(cmd.Context(), userID)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println(dashboard.EmptySessions)
		return nil
	}
	fmt.Println(dashboard.SessionsTable(dashboard.Dashboard{Sessions: sessions}))
	return nil
}

func showDashboard(cmd *cobra.Command, args []string) error {
	userID, err := requireUser()
	if err != nil {
		return err
	}
	svc, st, err := gameService(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()

	d, err := dashboard.Load(cmd.Context(), svc, userID)
	if err != nil {
		return err
	}
	fmt.Println(dashboard.Render(d, dashWidth))
	return nil
}

func train(cmd *cobra.Command, args []string) error {
	tc := cfg.Training
	if cmd.Flags().Changed("model") {
		tc.BaseModel = baseModel
	}
	if cmd.Flags().Changed("epochs") {
		tc.Epochs = epochs
	}
	if cmd.Flags().Changed("lr") {
		tc.LearningRate = learningRate
	}
	if cmd.Flags().Changed("batch") {
		tc.BatchSize = batchSize
	}
	plan := training.PlanFromConfig(tc)
	if err := plan.Validate(); err != nil {
		return err
	}

	var trainer training.Trainer = training.NewSimulatedTrainer(tc)
	bar := func(title string) func(int) {
		return func(pct int) {
			fmt.Printf("\r%-10s %s %3d%%", title, viz.ProgressBar(float64(pct)/100, 40), pct)
		}
	}

	logger.Info("training started", "model", plan.BaseModel, "epochs", plan.Epochs, "lr", plan.LearningRate, "batch", plan.BatchSize)
	if err := trainer.Upload(cmd.Context(), bar("uploading")); err != nil {
		fmt.Println()
		return err
	}
	fmt.Println()
	if err := trainer.Train(cmd.Context(), bar("training")); err != nil {
		fmt.Println()
		return err
	}
	fmt.Println()

	d := training.NewDeployment(plan, time.Now())
	fmt.Println(viz.Title().Render("Model deployed"))
	fmt.Printf("  name:        %s\n", d.ModelName)
	fmt.Printf("  base model:  %s\n", d.BaseModel)
	fmt.Printf("  completed:   %s\n", d.CompletedAt.Format(time.DateTime))
	fmt.Printf("  performance: %.1f%%\n", d.Performance)
	return nil
}
