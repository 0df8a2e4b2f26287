package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/san-kum/mindwave/internal/config"
	"github.com/san-kum/mindwave/internal/experiment"
	"github.com/san-kum/mindwave/internal/runs"
)

const scenarioYAML = `
name: evening
description: calm down before bed
steps:
  - game: waves
    frames: 120
    preset: swell
  - game: pendulum
    frames: 300
    params:
      length: 120
    save_as: long-swing
`

func newRunner(t *testing.T) *Runner {
	t.Helper()
	store := runs.New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	return &Runner{
		Registry: experiment.NewRegistry(),
		Config:   config.DefaultConfig(),
		Store:    store,
		Logger:   log.New(os.Stderr),
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evening.yaml")
	if err := os.WriteFile(path, []byte(scenarioYAML), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "evening" || len(s.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", s)
	}
	if s.Steps[1].Params["length"] != 120 || s.Steps[1].SaveAs != "long-swing" {
		t.Errorf("unexpected step %+v", s.Steps[1])
	}

	if _, err := ParseScenario([]byte("name: empty\n")); err == nil {
		t.Error("expected error for scenario without steps")
	}
}

func TestRunScenario(t *testing.T) {
	r := newRunner(t)
	s, err := ParseScenario([]byte(scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}

	results, err := r.RunScenario(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if len(results[0].Trace.Samples) != 120 {
		t.Errorf("expected 120 frames, got %d", len(results[0].Trace.Samples))
	}
	if results[0].RunID != "" {
		t.Error("unsaved step should have no run id")
	}
	if results[1].RunID == "" {
		t.Fatal("expected saved step to have a run id")
	}

	meta, err := r.Store.Load(results[1].RunID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Game != "pendulum" || meta.Params["length"] != 120 {
		t.Errorf("unexpected metadata %+v", meta)
	}
}

func TestRunScenarioStopsOnFailure(t *testing.T) {
	r := newRunner(t)
	s := &Scenario{Steps: []ScenarioStep{
		{Game: "waves", Frames: 10},
		{Game: "tetris", Frames: 10},
		{Game: "waves", Frames: 10},
	}}
	results, err := r.RunScenario(context.Background(), s)
	if err == nil {
		t.Fatal("expected error for unknown game")
	}
	if len(results) != 1 {
		t.Errorf("expected the first result kept, got %d", len(results))
	}
}

func TestRunScenarioUnknownPreset(t *testing.T) {
	r := newRunner(t)
	s := &Scenario{Steps: []ScenarioStep{{Game: "waves", Preset: "storm"}}}
	if _, err := r.RunScenario(context.Background(), s); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestEnsemble(t *testing.T) {
	r := newRunner(t)
	stats, err := r.Ensemble(context.Background(), ScenarioStep{Game: "particles", Frames: 60}, 4, 1)
	if err != nil {
		t.Fatal(err)
	}
	links, ok := stats["peak_links"]
	if !ok {
		t.Fatalf("expected peak_links in %v", stats)
	}
	if links.Runs != 4 {
		t.Errorf("expected 4 runs, got %d", links.Runs)
	}
	if links.Min > links.Mean || links.Mean > links.Max {
		t.Errorf("mean should sit between min and max: %+v", links)
	}

	if _, err := r.Ensemble(context.Background(), ScenarioStep{Game: "particles"}, 0, 1); err == nil {
		t.Error("expected error for empty ensemble")
	}
}

func TestSummarize(t *testing.T) {
	s := summarize("x", []float64{2, 4, 4, 4, 5, 5, 7, 9})
	if s.Mean != 5 || s.StdDev != 2 || s.Min != 2 || s.Max != 9 {
		t.Errorf("unexpected stats %+v", s)
	}
}
