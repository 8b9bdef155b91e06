package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/core"
)

// Event represents a single observable event in the system.
type Event struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"` // INFO, WARN, ERROR
	Type    string         `json:"type"`  // e.g. "run.started", "pair.computed"
	Message string         `json:"msg"`
	Data    map[string]any `json:"data,omitempty"`
}

// EventFilter specifies criteria for reading events. RunID matches the
// run_id field the pipeline attaches to every run-scoped event.
type EventFilter struct {
	Since *time.Time
	Until *time.Time
	Type  string
	Level string
	RunID string
}

// EventLog defines the interface for writing and reading events.
type EventLog interface {
	LogEvent(eventType string, data map[string]any) error
	Write(event Event) error
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

// jsonlEventLog implements EventLog using append-only JSONL files.
type jsonlEventLog struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// NewJSONLEventLog creates a new EventLog backed by a JSONL file at the
// given path, creating the parent directory when missing.
func NewJSONLEventLog(path string) (EventLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating event log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &jsonlEventLog{
		path: path,
		file: f,
	}, nil
}

// eventMessages maps the pipeline's event types to their log line.
var eventMessages = map[string]string{
	"run.started":         "prediction run started",
	"pairs.determined":    "virus-host pairs determined",
	"pair.computed":       "pair features computed",
	"features.written":    "feature table written",
	"predictions.written": "prediction table written",
	"qc.warning":          "quality-control finding",
	"run.completed":       "prediction run completed",
	"run.failed":          "prediction run failed",
}

// LogEvent records a typed event at the current time, deriving the level
// and message from the event type.
func (l *jsonlEventLog) LogEvent(eventType string, data map[string]any) error {
	level := "INFO"
	switch eventType {
	case "run.failed":
		level = "ERROR"
	case "qc.warning":
		level = "WARN"
	}
	message, ok := eventMessages[eventType]
	if !ok {
		message = eventType
	}
	return l.Write(Event{
		Time:    time.Now().UTC(),
		Level:   level,
		Type:    eventType,
		Message: message,
		Data:    data,
	})
}

// Write appends a JSON-encoded event followed by a newline to the log file.
func (l *jsonlEventLog) Write(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}
	data = append(data, '\n')

	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}

// Read opens the log file for reading, scans line by line, decodes each event,
// and returns those matching the given filter.
func (l *jsonlEventLog) Read(filter EventFilter) ([]Event, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening event log for reading: %w", err)
	}
	defer func() { _ = f.Close() }()

	var events []Event
	scanner := bufio.NewScanner(f)
	// pair.computed events carry per-pair feature data and can exceed the
	// default 64K line limit on large runs.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue // skip malformed lines
		}

		if matchesEventFilter(event, filter) {
			events = append(events, event)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning event log: %w", err)
	}

	return events, nil
}

// Close closes the underlying log file.
func (l *jsonlEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}

// matchesEventFilter checks whether an event satisfies all filter criteria.
func matchesEventFilter(event Event, filter EventFilter) bool {
	if filter.Since != nil && event.Time.Before(*filter.Since) {
		return false
	}
	if filter.Until != nil && event.Time.After(*filter.Until) {
		return false
	}
	if filter.Type != "" && event.Type != filter.Type {
		return false
	}
	if filter.Level != "" && event.Level != filter.Level {
		return false
	}
	if filter.RunID != "" {
		id, _ := event.Data["run_id"].(string)
		if id != filter.RunID {
			return false
		}
	}
	return true
}

var _ core.EventLogger = (EventLog)(nil)
