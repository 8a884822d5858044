package helper

import (
	"context"
	"sync"

	"github.com/shelfwise/circulation-go/circulation"
)

// ContextualLogEntry is one captured context-aware logging call.
type ContextualLogEntry struct {
	Level   string
	Message string
	Args    []any
}

// ContextualLoggerSpy captures context-aware logging calls for assertions.
// Safe for concurrent use, since store queries may log from goroutines.
type ContextualLoggerSpy struct {
	mu      sync.Mutex
	entries []ContextualLogEntry
}

func NewContextualLoggerSpy() *ContextualLoggerSpy {
	return &ContextualLoggerSpy{}
}

func (s *ContextualLoggerSpy) DebugContext(_ context.Context, msg string, args ...any) {
	s.record("DEBUG", msg, args)
}

func (s *ContextualLoggerSpy) InfoContext(_ context.Context, msg string, args ...any) {
	s.record("INFO", msg, args)
}

func (s *ContextualLoggerSpy) WarnContext(_ context.Context, msg string, args ...any) {
	s.record("WARN", msg, args)
}

func (s *ContextualLoggerSpy) ErrorContext(_ context.Context, msg string, args ...any) {
	s.record("ERROR", msg, args)
}

func (s *ContextualLoggerSpy) record(level string, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, ContextualLogEntry{Level: level, Message: msg, Args: args})
}

// Entries returns a copy of all captured calls in order.
func (s *ContextualLoggerSpy) Entries() []ContextualLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]ContextualLogEntry(nil), s.entries...)
}

// HasMessageAtLevel reports whether a call with the given level and message
// was captured.
func (s *ContextualLoggerSpy) HasMessageAtLevel(level string, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.entries {
		if entry.Level == level && entry.Message == message {
			return true
		}
	}

	return false
}

// Reset clears all captured calls.
func (s *ContextualLoggerSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = s.entries[:0]
}

var _ circulation.ContextualLogger = (*ContextualLoggerSpy)(nil)
