package helper

import (
	"sync"
)

// LogEntry is one captured log call.
type LogEntry struct {
	Level   string
	Message string
	Args    []any
}

// LogSpy is a circulation.Logger implementation that captures log calls for
// assertions in tests.
type LogSpy struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewLogSpy creates a new LogSpy.
func NewLogSpy() *LogSpy {
	return &LogSpy{}
}

func (s *LogSpy) Debug(msg string, args ...any) { s.record("DEBUG", msg, args) }
func (s *LogSpy) Info(msg string, args ...any)  { s.record("INFO", msg, args) }
func (s *LogSpy) Warn(msg string, args ...any)  { s.record("WARN", msg, args) }
func (s *LogSpy) Error(msg string, args ...any) { s.record("ERROR", msg, args) }

func (s *LogSpy) record(level string, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, LogEntry{Level: level, Message: msg, Args: args})
}

// Entries returns a copy of all captured log entries.
func (s *LogSpy) Entries() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]LogEntry, len(s.entries))
	copy(entries, s.entries)

	return entries
}

// MessagesAtLevel returns the messages captured at the given level.
func (s *LogSpy) MessagesAtLevel(level string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]string, 0)
	for _, entry := range s.entries {
		if entry.Level == level {
			messages = append(messages, entry.Message)
		}
	}

	return messages
}

// Reset clears all captured entries.
func (s *LogSpy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = s.entries[:0]
}
