package training

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/san-kum/mindwave/internal/config"
)

func TestPlanValidate(t *testing.T) {
	ok := PlanFromConfig(config.DefaultConfig().Training)
	if err := ok.Validate(); err != nil {
		t.Fatalf("default plan should be valid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Plan)
	}{
		{"model", func(p *Plan) { p.BaseModel = "llama" }},
		{"epochs", func(p *Plan) { p.Epochs = 11 }},
		{"learning rate", func(p *Plan) { p.LearningRate = 0.5 }},
		{"batch", func(p *Plan) { p.BatchSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ok
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidPlan) {
				t.Errorf("expected ErrInvalidPlan, got %v", err)
			}
		})
	}
}

func TestUploadProgress(t *testing.T) {
	tr := &SimulatedTrainer{UploadInterval: time.Millisecond, TrainInterval: time.Millisecond}
	var seen []int
	if err := tr.Upload(context.Background(), func(p int) { seen = append(seen, p) }); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 21 || seen[0] != 0 || seen[1] != 5 || seen[20] != 100 {
		t.Errorf("unexpected upload progress %v", seen)
	}
}

func TestTrainProgress(t *testing.T) {
	tr := &SimulatedTrainer{UploadInterval: time.Millisecond, TrainInterval: time.Millisecond}
	last, calls := -1, 0
	err := tr.Train(context.Background(), func(p int) {
		if p < last {
			t.Errorf("progress went backwards: %d after %d", p, last)
		}
		last = p
		calls++
	})
	if err != nil {
		t.Fatal(err)
	}
	if last != 100 || calls != 101 {
		t.Errorf("expected 101 reports ending at 100, got %d ending at %d", calls, last)
	}
}

func TestTrainCancelled(t *testing.T) {
	tr := &SimulatedTrainer{TrainInterval: time.Hour}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	if err := tr.Train(ctx, nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestDeployment(t *testing.T) {
	at := time.Date(2025, 4, 26, 0, 0, 0, 0, time.UTC)
	d := NewDeployment(Plan{BaseModel: "GPT-4o"}, at)
	if d.ModelName != "Physics-Therapy-Model-v1" || d.Performance != 92.7 || !d.CompletedAt.Equal(at) {
		t.Errorf("unexpected deployment %+v", d)
	}
}
