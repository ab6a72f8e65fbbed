// Package audit keeps an append-only trail of authentication decisions and
// error conditions.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event is one audit trail entry. Passwords never appear in events.
type Event struct {
	Time     time.Time `json:"time"`
	Kind     string    `json:"kind"`
	Username string    `json:"username,omitempty"`
	Allowed  *bool     `json:"allowed,omitempty"`
	Cause    string    `json:"cause,omitempty"`
}

// Trail is an append-only, line-per-event JSON audit log.
type Trail interface {
	Record(ev Event) error
}

// FileTrail writes audit events to a local file, one JSON object per line.
type FileTrail struct {
	mu   sync.Mutex
	path string
}

// NewFileTrail creates a new file backed audit trail.
func NewFileTrail(path string) (*FileTrail, error) {
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("could not create audit directory: %w", err)
	}
	return &FileTrail{path: path}, nil
}

// Record appends an event to the trail.
func (t *FileTrail) Record(ev Event) error {
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("could not marshal event: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("could not open audit file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("could not append event: %w", err)
	}

	return nil
}

// Noop is a trail that discards all events.
const Noop = noop(0)

type noop int

func (noop) Record(Event) error { return nil }
