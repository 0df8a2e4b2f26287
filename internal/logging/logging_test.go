package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/mindwave/internal/config"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, config.LogConfig{Level: "debug", Format: "json"})
	if err != nil {
		t.Fatal(err)
	}
	l.Debug("frame", "seq", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "frame" || !strings.Contains(fmt.Sprint(entry["prefix"]), "mindwave") {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNewLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, config.LogConfig{Level: "warn"})
	if err != nil {
		t.Fatal(err)
	}
	l.Info("hidden")
	l.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, config.LogConfig{Level: "loud"}); err == nil {
		t.Error("expected level error")
	}
	if _, err := New(&bytes.Buffer{}, config.LogConfig{Format: "xml"}); err == nil {
		t.Error("expected format error")
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mindwave.log")
	l, closeFn, err := Open(config.LogConfig{File: path})
	if err != nil {
		t.Fatal(err)
	}
	l.Info("hello")
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "hello") {
		t.Errorf("expected log line in file, got %q", data)
	}
}
