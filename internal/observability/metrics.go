package observability

import (
	"fmt"
	"time"
)

// Metrics holds calculated metrics derived from the event log.
type Metrics struct {
	RunsStarted    int            `json:"runs_started"`
	RunsCompleted  int            `json:"runs_completed"`
	RunsFailed     int            `json:"runs_failed"`
	PairsScored    int            `json:"pairs_scored"`
	PositivePairs  int            `json:"positive_pairs"`
	QCWarnings     int            `json:"qc_warnings"`
	WarningsByCode map[string]int `json:"warnings_by_code"`
	AvgRunMillis   int64          `json:"avg_run_millis"`
	EventCount     int            `json:"event_count"`
	OldestEvent    *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent    *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		WarningsByCode: make(map[string]int),
	}

	m.EventCount = len(events)

	var totalMillis int64
	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case "run.started":
			m.RunsStarted++
		case "run.completed":
			m.RunsCompleted++
			m.PairsScored += dataInt(event.Data, "pairs")
			m.PositivePairs += dataInt(event.Data, "positive")
			totalMillis += int64(dataInt(event.Data, "duration_ms"))
		case "run.failed":
			m.RunsFailed++
		case "qc.warning":
			m.QCWarnings++
			if code, ok := event.Data["code"].(string); ok {
				m.WarningsByCode[code]++
			}
		}
	}

	if m.RunsCompleted > 0 {
		m.AvgRunMillis = totalMillis / int64(m.RunsCompleted)
	}

	return m, nil
}

// dataInt reads a numeric event field. JSON decoding turns numbers into
// float64, so events read back from disk never carry int directly.
func dataInt(data map[string]any, key string) int {
	switch v := data[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}
