package runs

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Game    string             `json:"game"`
	Dt      float64            `json:"dt"`
	Seed    int64              `json:"seed"`
	Frames  int                `json:"frames"`
	Labels  []string           `json:"labels"`
	Times   []float64          `json:"times"`
	Samples [][]float64        `json:"samples"`
	Metrics map[string]float64 `json:"metrics"`
}

func exportData(meta RunMetadata, trace *Trace) ExportData {
	return ExportData{
		Game:    meta.Game,
		Dt:      meta.Dt,
		Seed:    meta.Seed,
		Frames:  len(trace.Samples),
		Labels:  trace.Labels,
		Times:   trace.Times,
		Samples: trace.Samples,
		Metrics: trace.Metrics,
	}
}

func ExportJSON(path string, meta RunMetadata, trace *Trace) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, meta, trace)
}

func WriteJSON(w io.Writer, meta RunMetadata, trace *Trace) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData(meta, trace))
}
