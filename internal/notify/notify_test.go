package notify

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.Notify(Notice{Title: "Session Saved", Description: "Your game session has been recorded"})
	c.Notify(Error("Failed to send message"))

	out := buf.String()
	if !strings.Contains(out, "Session Saved") || !strings.Contains(out, "Failed to send message") {
		t.Errorf("unexpected output %q", out)
	}
	if strings.Count(out, "\n") != 2 {
		t.Errorf("expected one line per notice, got %q", out)
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	if _, ok := r.Last(); ok {
		t.Fatal("expected no notice")
	}
	r.Notify(Notice{Title: "a"})
	r.Notify(Error("b"))

	last, ok := r.Last()
	if !ok || last.Variant != Destructive || last.Title != "Error" {
		t.Errorf("unexpected last notice %+v", last)
	}
	if len(r.Notices()) != 2 {
		t.Errorf("expected 2 notices, got %d", len(r.Notices()))
	}
}
