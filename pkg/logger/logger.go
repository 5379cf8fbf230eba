// Package logger holds the process-wide structured logger. Library packages
// take a *slog.Logger through their options; only the command wiring reads
// L().
package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Config selects the destination and verbosity.
type Config struct {
	Debug  bool
	Writer io.Writer // defaults to stderr
	JSON   bool
}

var (
	mu     sync.RWMutex
	global = slog.New(slog.DiscardHandler)
)

// Setup installs the global logger and returns a cleanup func that restores
// the discarding default.
func Setup(cfg Config) func() {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelInfo
	addSource := false
	if cfg.Debug {
		level = slog.LevelDebug
		addSource = true
	}
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339))
			}
			return a
		},
	}

	var h slog.Handler
	if cfg.JSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	l := slog.New(h)
	mu.Lock()
	global = l
	mu.Unlock()

	l.Debug("logger.initialized", "debug", cfg.Debug)

	return func() {
		mu.Lock()
		defer mu.Unlock()
		global = slog.New(slog.DiscardHandler)
	}
}

// L returns the current global logger.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}
