package analysis

import (
	"math"
	"strings"
	"testing"
)

func TestDominantFrequency(t *testing.T) {
	dt := 0.01
	data := make([]float64, 1024)
	for i := range data {
		data[i] = 3 + math.Sin(2*math.Pi*5*float64(i)*dt)
	}
	f := DominantFrequency(data, dt)
	// bin width is 1/(1024*0.01) ≈ 0.098
	if math.Abs(f-5) > 0.1 {
		t.Errorf("expected ~5 Hz, got %f", f)
	}
}

func TestDominantFrequencyDegenerate(t *testing.T) {
	if DominantFrequency([]float64{1, 2}, 0.1) != 0 {
		t.Error("short series should give 0")
	}
	if DominantFrequency(make([]float64, 64), 0.1) != 0 {
		t.Error("flat series should give 0")
	}
}

func TestPad(t *testing.T) {
	out := Pad([]float64{1, 2, 3})
	if len(out) != 4 {
		t.Fatalf("expected length 4, got %d", len(out))
	}
	if out[0] != -1 || out[2] != 1 || out[3] != 0 {
		t.Errorf("unexpected padded series %v", out)
	}
}

func TestPhasePortrait(t *testing.T) {
	pts := PhasePortrait([]float64{-1, 0, 1}, []float64{0, 1})
	if len(pts) != 2 {
		t.Fatalf("expected 2 points, got %d", len(pts))
	}
	ascii := PhasePortraitToASCII(pts, 20, 10)
	if strings.Count(ascii, "\n") != 10 || !strings.Contains(ascii, "•") {
		t.Errorf("unexpected plot:\n%s", ascii)
	}
	if PhasePortraitToASCII(nil, 20, 10) != "" {
		t.Error("empty portrait should render nothing")
	}
}
