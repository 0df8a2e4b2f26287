// Package optim sweeps game parameters over headless runs.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/san-kum/mindwave/internal/experiment"
)

var ErrNoResults = errors.New("optim: no run produced the metric")

type Result struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	maximize   bool
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, workers: 1}
}

// Maximize flips the objective; the default keeps the smallest value.
func (g *GridSearch) Maximize(v bool) *GridSearch {
	g.maximize = v
	return g
}

func (g *GridSearch) Workers(n int) *GridSearch {
	if n < 1 {
		n = 1
	}
	g.workers = n
	return g
}

// Points enumerates the grid in declaration order, last parameter fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.enumerate(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		p := make(map[string]float64, len(current))
		for k, v := range current {
			p[k] = v
		}
		*out = append(*out, p)
		return
	}
	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		g.enumerate(depth+1, current, out)
	}
	delete(current, name)
}

// Search runs every grid point and returns the best parameters, the best
// value and all results in grid order. Failed points are kept in the
// results with Err set and never win.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) (map[string]float64, float64, []Result, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, nil, fmt.Errorf("optim: %d params but %d ranges", len(g.paramNames), len(g.ranges))
	}

	points := g.Points()
	results := make([]Result, len(points))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < g.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = g.evaluate(ctx, points[idx], buildExperiment, metricName)
			}
		}()
	}

feed:
	for i := range points {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, 0, results, err
	}

	best := math.Inf(1)
	if g.maximize {
		best = math.Inf(-1)
	}
	var bestParams map[string]float64
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if (g.maximize && r.Value > best) || (!g.maximize && r.Value < best) {
			best = r.Value
			bestParams = r.Params
		}
	}
	if bestParams == nil {
		return nil, 0, results, ErrNoResults
	}
	return bestParams, best, results, nil
}

func (g *GridSearch) evaluate(
	ctx context.Context,
	params map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
) Result {
	r := Result{Params: params}
	exp, err := buildExperiment(params)
	if err != nil {
		r.Err = err
		return r
	}
	trace, err := exp.Run(ctx)
	if err != nil {
		r.Err = err
		return r
	}
	v, ok := trace.Metrics[metricName]
	if !ok {
		r.Err = fmt.Errorf("optim: metric %q not recorded", metricName)
		return r
	}
	r.Value = v
	return r
}

// Ranked returns successful results ordered best first.
func Ranked(results []Result, maximize bool) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if maximize {
			return out[i].Value > out[j].Value
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}
