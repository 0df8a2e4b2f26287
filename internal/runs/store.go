// Package runs stores headless simulation traces on disk.
package runs

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var ErrNoTrace = errors.New("runs: trace has no frames")

// Trace is the sampled output of one headless run.
type Trace struct {
	Labels  []string
	Times   []float64
	Samples [][]float64
	Metrics map[string]float64
}

// Series returns the column for label, or nil.
func (t *Trace) Series(label string) []float64 {
	idx := -1
	for i, l := range t.Labels {
		if l == label {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]float64, 0, len(t.Samples))
	for _, s := range t.Samples {
		if idx < len(s) {
			out = append(out, s[idx])
		}
	}
	return out
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Game      string             `json:"game"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Frames    int                `json:"frames"`
	Params    map[string]float64 `json:"params,omitempty"`
	Labels    []string           `json:"labels"`
	Metrics   map[string]float64 `json:"metrics"`
}

func (s *Store) Save(meta RunMetadata, trace *Trace) (string, error) {
	if trace == nil || len(trace.Samples) == 0 {
		return "", ErrNoTrace
	}
	now := time.Now()
	runID := fmt.Sprintf("%s_%d_%s", meta.Game, now.Unix(), uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Labels = trace.Labels
	meta.Metrics = trace.Metrics
	meta.Frames = len(trace.Samples)

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "frames.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(append([]string{"time"}, trace.Labels...)); err != nil {
		return "", err
	}
	for i, sample := range trace.Samples {
		row := []string{strconv.FormatFloat(trace.Times[i], 'f', 6, 64)}
		for _, val := range sample {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns stored runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTrace reads a run back. Metrics come from the metadata.
func (s *Store) LoadTrace(runID string) (*Trace, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filepath.Join(s.baseDir, runID, "frames.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	trace := &Trace{Labels: meta.Labels, Metrics: meta.Metrics}
	if len(records) < 2 {
		return trace, nil
	}
	if len(trace.Labels) == 0 {
		trace.Labels = records[0][1:]
	}

	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		sample := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				continue
			}
			sample = append(sample, val)
		}
		trace.Times = append(trace.Times, t)
		trace.Samples = append(trace.Samples, sample)
	}

	return trace, nil
}
