// Package audit provides structured event logging for provisioning runs.
// Events are stored as JSON Lines (JSONL) in a single file under the state
// directory, tagged with the ULID of the run that produced them.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType classifies a run event.
type EventType string

const (
	EventRunStart    EventType = "run-start"
	EventEnvironment EventType = "environment"
	EventLaunch      EventType = "launch"
	EventFailure     EventType = "failure"
	EventRunFinish   EventType = "run-finish"
)

// Event represents a single audit log entry.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
	Container string    `json:"container,omitempty"`
	Details   string    `json:"details,omitempty"`
}

// Logger writes and reads run events.
// Events are stored in {stateDir}/runs.events.jsonl.
type Logger struct {
	stateDir string
}

// NewLogger creates a new audit logger rooted at stateDir.
func NewLogger(stateDir string) *Logger {
	return &Logger{stateDir: stateDir}
}

// NewRunID returns a fresh, time-ordered run identifier.
func NewRunID() string {
	return ulid.Make().String()
}

// Path returns the path to the JSONL event log.
func (l *Logger) Path() string {
	return filepath.Join(l.stateDir, "runs.events.jsonl")
}

// Log appends an event to the audit log.
func (l *Logger) Log(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	path := l.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create audit log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// Events reads all events in the order they were written.
func (l *Logger) Events() ([]Event, error) {
	f, err := os.Open(l.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue // Skip malformed lines
		}
		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("error reading audit log: %w", err)
	}

	return events, nil
}

// Recent returns the events of the last n runs, oldest run first. A
// non-positive n returns every run.
func (l *Logger) Recent(n int) ([]Event, error) {
	events, err := l.Events()
	if err != nil {
		return events, err
	}

	seen := make(map[string]bool)
	var runs []string
	for _, e := range events {
		if !seen[e.RunID] {
			seen[e.RunID] = true
			runs = append(runs, e.RunID)
		}
	}
	// ULIDs sort by creation time.
	sort.Strings(runs)
	if n > 0 && len(runs) > n {
		runs = runs[len(runs)-n:]
	}

	keep := make(map[string]bool, len(runs))
	for _, id := range runs {
		keep[id] = true
	}
	var out []Event
	for _, e := range events {
		if keep[e.RunID] {
			out = append(out, e)
		}
	}
	return out, nil
}
