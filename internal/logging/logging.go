// Package logging provides zerolog-based logging for chama-web. The TUI
// owns stdout and stderr, so logs go to a file under the config directory.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = zerolog.Nop()
)

// DefaultLogPath returns ~/.config/chamaweb/chama-web.log.
func DefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "chama-web.log")
	}
	return filepath.Join(home, ".config", "chamaweb", "chama-web.log")
}

// Init opens the log file at path and installs a JSON logger writing to it.
// The level is read from CHAMA_LOG_LEVEL (default info). Passing an empty
// path leaves the no-op logger in place.
func Init(path string) error {
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", path, err)
	}

	level := zerolog.InfoLevel
	if env := strings.ToLower(os.Getenv("CHAMA_LOG_LEVEL")); env != "" {
		if parsed, perr := zerolog.ParseLevel(env); perr == nil {
			level = parsed
		}
	}

	setOutput(f, level)
	return nil
}

// setOutput replaces the package logger. Used by Init and by tests.
func setOutput(w io.Writer, level zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()
	logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Debug starts a debug-level log event.
func Debug() *zerolog.Event {
	mu.RLock()
	defer mu.RUnlock()
	return logger.Debug()
}

// Info starts an info-level log event.
func Info() *zerolog.Event {
	mu.RLock()
	defer mu.RUnlock()
	return logger.Info()
}

// Warn starts a warn-level log event.
func Warn() *zerolog.Event {
	mu.RLock()
	defer mu.RUnlock()
	return logger.Warn()
}

// Error starts an error-level log event.
func Error() *zerolog.Event {
	mu.RLock()
	defer mu.RUnlock()
	return logger.Error()
}
