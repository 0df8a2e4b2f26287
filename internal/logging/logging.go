// Package logging builds the process logger from config.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/mindwave/internal/config"
)

// New returns a logger writing to w. An empty level means info.
func New(w io.Writer, cfg config.LogConfig) (*log.Logger, error) {
	level := log.InfoLevel
	if cfg.Level != "" {
		l, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		level = l
	}

	opts := log.Options{
		Level:           level,
		Prefix:          "mindwave",
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	}
	switch cfg.Format {
	case "", "text":
		opts.Formatter = log.TextFormatter
	case "json":
		opts.Formatter = log.JSONFormatter
		opts.TimeFormat = time.RFC3339
	case "logfmt":
		opts.Formatter = log.LogfmtFormatter
	default:
		return nil, fmt.Errorf("unknown log format: %s", cfg.Format)
	}
	return log.NewWithOptions(w, opts), nil
}

// Open is New over stderr, or over cfg.File when set. The returned close
// function is never nil.
func Open(cfg config.LogConfig) (*log.Logger, func() error, error) {
	if cfg.File == "" {
		l, err := New(os.Stderr, cfg)
		return l, func() error { return nil }, err
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	l, err := New(f, cfg)
	if err != nil {
		f.Close()
		return nil, func() error { return nil }, err
	}
	return l, f.Close, nil
}

// Discard is a logger that writes nothing.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
