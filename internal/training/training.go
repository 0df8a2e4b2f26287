// Package training simulates uploading a dataset and fine-tuning a model.
// No computation happens: progress advances on a timer behind the Trainer
// interface so a real backend can replace it.
package training

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/mindwave/internal/config"
)

var BaseModels = []string{"GPT-4o", "GPT-3.5 Turbo", "Claude 3"}

var ErrInvalidPlan = errors.New("invalid training plan")

type Plan struct {
	BaseModel    string
	Epochs       int
	LearningRate float64
	BatchSize    int
}

func PlanFromConfig(cfg config.TrainingConfig) Plan {
	return Plan{
		BaseModel:    cfg.BaseModel,
		Epochs:       cfg.Epochs,
		LearningRate: cfg.LearningRate,
		BatchSize:    cfg.BatchSize,
	}
}

func (p Plan) Validate() error {
	known := false
	for _, m := range BaseModels {
		if m == p.BaseModel {
			known = true
		}
	}
	switch {
	case !known:
		return fmt.Errorf("%w: unknown base model %q", ErrInvalidPlan, p.BaseModel)
	case p.Epochs < 1 || p.Epochs > 10:
		return fmt.Errorf("%w: epochs %d not in [1,10]", ErrInvalidPlan, p.Epochs)
	case p.LearningRate < 0.0001 || p.LearningRate > 0.01:
		return fmt.Errorf("%w: learning rate %g not in [0.0001,0.01]", ErrInvalidPlan, p.LearningRate)
	case p.BatchSize < 1 || p.BatchSize > 64:
		return fmt.Errorf("%w: batch size %d not in [1,64]", ErrInvalidPlan, p.BatchSize)
	}
	return nil
}

type Deployment struct {
	ModelName   string
	BaseModel   string
	CompletedAt time.Time
	Performance float64
}

func NewDeployment(p Plan, at time.Time) Deployment {
	return Deployment{
		ModelName:   "Physics-Therapy-Model-v1",
		BaseModel:   p.BaseModel,
		CompletedAt: at,
		Performance: 92.7,
	}
}

// Trainer reports progress as a percentage in [0,100]. Both calls return
// once progress reaches 100 or ctx is done.
type Trainer interface {
	Upload(ctx context.Context, progress func(int)) error
	Train(ctx context.Context, progress func(int)) error
}

type SimulatedTrainer struct {
	UploadInterval time.Duration
	TrainInterval  time.Duration
}

const (
	uploadStep = 5
	trainStep  = 1
)

func NewSimulatedTrainer(cfg config.TrainingConfig) *SimulatedTrainer {
	return &SimulatedTrainer{UploadInterval: cfg.UploadInterval, TrainInterval: cfg.TrainInterval}
}

func (t *SimulatedTrainer) Upload(ctx context.Context, progress func(int)) error {
	return advance(ctx, t.UploadInterval, uploadStep, progress)
}

func (t *SimulatedTrainer) Train(ctx context.Context, progress func(int)) error {
	return advance(ctx, t.TrainInterval, trainStep, progress)
}

func advance(ctx context.Context, interval time.Duration, step int, progress func(int)) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", interval)
	}
	if progress == nil {
		progress = func(int) {}
	}

	pct := 0
	progress(pct)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for pct < 100 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			pct = min(pct+step, 100)
			progress(pct)
		}
	}
	return nil
}
