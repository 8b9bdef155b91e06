package observability

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// genRunID generates a random run ID in RUN-XXXXX format.
func genRunID(t *rapid.T, label string) string {
	num := rapid.IntRange(1, 99999).Draw(t, label)
	return fmt.Sprintf("RUN-%05d", num)
}

// genStalledRunEvents generates run.started events at various times in the
// past with no terminal event.
func genStalledRunEvents(t *rapid.T) []Event {
	numRuns := rapid.IntRange(1, 10).Draw(t, "numRuns")
	now := time.Now().UTC()

	var events []Event
	for i := 0; i < numRuns; i++ {
		runID := genRunID(t, fmt.Sprintf("runID_%d", i))
		hoursAgo := rapid.IntRange(1, 168).Draw(t, fmt.Sprintf("hoursAgo_%d", i))

		events = append(events, Event{
			Time:    now.Add(-time.Duration(hoursAgo) * time.Hour),
			Level:   "INFO",
			Type:    "run.started",
			Message: "prediction run started",
			Data:    map[string]any{"run_id": runID},
		})
	}
	return events
}

// Feature: vhip, Property: Stalled Alert Threshold Monotonicity
// For any set of started runs without a terminal event, increasing the
// StalledHours threshold must produce fewer or equal stalled alerts.
func TestProperty_StalledAlertThresholdMonotonicity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		logPath := filepath.Join(t.TempDir(), "events.jsonl")
		el, err := NewJSONLEventLog(logPath)
		if err != nil {
			t.Fatalf("creating event log: %v", err)
		}
		defer el.Close()

		events := genStalledRunEvents(rt)
		for _, e := range events {
			if err := el.Write(e); err != nil {
				t.Fatalf("writing event: %v", err)
			}
		}

		// Generate two thresholds where low < high.
		lowThreshold := rapid.IntRange(1, 50).Draw(rt, "lowThreshold")
		highThreshold := rapid.IntRange(lowThreshold+1, 200).Draw(rt, "highThreshold")

		engineLow := NewAlertEngine(el, AlertThresholds{
			StalledHours:  lowThreshold,
			MaxFailedRuns: 99999, // effectively disable other alerts
			MaxQCWarnings: 99999,
		})

		engineHigh := NewAlertEngine(el, AlertThresholds{
			StalledHours:  highThreshold,
			MaxFailedRuns: 99999,
			MaxQCWarnings: 99999,
		})

		alertsLow, err := engineLow.Evaluate()
		if err != nil {
			t.Fatalf("evaluating low threshold alerts: %v", err)
		}

		alertsHigh, err := engineHigh.Evaluate()
		if err != nil {
			t.Fatalf("evaluating high threshold alerts: %v", err)
		}

		stalledLow := countAlertsByCondition(alertsLow, "run_stalled")
		stalledHigh := countAlertsByCondition(alertsHigh, "run_stalled")

		if stalledHigh > stalledLow {
			rt.Errorf("higher threshold (%dh) produced more stalled alerts (%d) than lower threshold (%dh, %d)",
				highThreshold, stalledHigh, lowThreshold, stalledLow)
		}
	})
}

// Feature: vhip, Property: Finished Runs Never Stall
// For any mix of finished and unfinished runs older than the threshold,
// stalled alerts must name exactly the unfinished runs.
func TestProperty_FinishedRunsNeverStall(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		logPath := filepath.Join(t.TempDir(), "events.jsonl")
		el, err := NewJSONLEventLog(logPath)
		if err != nil {
			t.Fatalf("creating event log: %v", err)
		}
		defer el.Close()

		numRuns := rapid.IntRange(1, 12).Draw(rt, "numRuns")
		now := time.Now().UTC()

		finished := make(map[string]bool)
		for i := 0; i < numRuns; i++ {
			runID := fmt.Sprintf("RUN-%05d", i+1)
			hoursAgo := rapid.IntRange(2, 168).Draw(rt, fmt.Sprintf("hoursAgo_%d", i))
			startedAt := now.Add(-time.Duration(hoursAgo) * time.Hour)

			if err := el.Write(Event{
				Time:    startedAt,
				Level:   "INFO",
				Type:    "run.started",
				Message: "prediction run started",
				Data:    map[string]any{"run_id": runID},
			}); err != nil {
				t.Fatalf("writing event: %v", err)
			}

			if rapid.Bool().Draw(rt, fmt.Sprintf("finished_%d", i)) {
				finished[runID] = true
				terminal := "run.completed"
				if rapid.Bool().Draw(rt, fmt.Sprintf("failed_%d", i)) {
					terminal = "run.failed"
				}
				if err := el.Write(Event{
					Time:    startedAt.Add(time.Minute),
					Level:   "INFO",
					Type:    terminal,
					Message: "prediction run finished",
					Data:    map[string]any{"run_id": runID},
				}); err != nil {
					t.Fatalf("writing event: %v", err)
				}
			}
		}

		engine := NewAlertEngine(el, AlertThresholds{
			StalledHours:  1,
			MaxFailedRuns: 99999,
			MaxQCWarnings: 99999,
		})
		alerts, err := engine.Evaluate()
		if err != nil {
			t.Fatalf("evaluating alerts: %v", err)
		}

		stalled := make(map[string]bool)
		for _, a := range alerts {
			if a.Condition == "run_stalled" {
				stalled[a.ID] = true
			}
		}

		for i := 0; i < numRuns; i++ {
			runID := fmt.Sprintf("RUN-%05d", i+1)
			alertID := "stalled-" + runID
			if finished[runID] && stalled[alertID] {
				rt.Errorf("finished run %s triggered a stalled alert", runID)
			}
			if !finished[runID] && !stalled[alertID] {
				rt.Errorf("unfinished run %s older than the threshold did not trigger a stalled alert", runID)
			}
		}
	})
}

// Feature: vhip, Property: QC Alert Threshold Monotonicity
// For any distribution of quality-control findings over runs, increasing
// the MaxQCWarnings threshold must produce fewer or equal alerts.
func TestProperty_QCAlertThresholdMonotonicity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		logPath := filepath.Join(t.TempDir(), "events.jsonl")
		el, err := NewJSONLEventLog(logPath)
		if err != nil {
			t.Fatalf("creating event log: %v", err)
		}
		defer el.Close()

		numRuns := rapid.IntRange(1, 8).Draw(rt, "numRuns")
		now := time.Now().UTC()
		for i := 0; i < numRuns; i++ {
			runID := fmt.Sprintf("RUN-%05d", i+1)
			warnings := rapid.IntRange(0, 40).Draw(rt, fmt.Sprintf("warnings_%d", i))
			for j := 0; j < warnings; j++ {
				if err := el.Write(Event{
					Time:    now.Add(time.Duration(i*100+j) * time.Second),
					Level:   "WARN",
					Type:    "qc.warning",
					Message: "quality-control finding",
					Data:    map[string]any{"run_id": runID, "code": "metric_failed"},
				}); err != nil {
					t.Fatalf("writing event: %v", err)
				}
			}
		}

		lowThreshold := rapid.IntRange(1, 10).Draw(rt, "lowThreshold")
		highThreshold := rapid.IntRange(lowThreshold+1, 50).Draw(rt, "highThreshold")

		engineLow := NewAlertEngine(el, AlertThresholds{
			StalledHours:  99999,
			MaxFailedRuns: 99999,
			MaxQCWarnings: lowThreshold,
		})

		engineHigh := NewAlertEngine(el, AlertThresholds{
			StalledHours:  99999,
			MaxFailedRuns: 99999,
			MaxQCWarnings: highThreshold,
		})

		alertsLow, err := engineLow.Evaluate()
		if err != nil {
			t.Fatalf("evaluating low threshold alerts: %v", err)
		}

		alertsHigh, err := engineHigh.Evaluate()
		if err != nil {
			t.Fatalf("evaluating high threshold alerts: %v", err)
		}

		qcLow := countAlertsByCondition(alertsLow, "qc_warnings_high")
		qcHigh := countAlertsByCondition(alertsHigh, "qc_warnings_high")

		if qcHigh > qcLow {
			rt.Errorf("higher threshold (%d) produced more alerts (%d) than lower threshold (%d, %d)",
				highThreshold, qcHigh, lowThreshold, qcLow)
		}
	})
}

// Feature: vhip, Property: Event Filter Time Range
// For any set of events with random timestamps, an EventFilter with Since
// and Until must return only events with timestamps within that range.
func TestProperty_EventFilterTimeRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		logPath := filepath.Join(t.TempDir(), "events.jsonl")
		el, err := NewJSONLEventLog(logPath)
		if err != nil {
			t.Fatalf("creating event log: %v", err)
		}
		defer el.Close()

		baseTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		numEvents := rapid.IntRange(1, 20).Draw(rt, "numEvents")

		for i := 0; i < numEvents; i++ {
			hoursOffset := rapid.IntRange(0, 168).Draw(rt, fmt.Sprintf("hoursOffset_%d", i))
			eventTime := baseTime.Add(time.Duration(hoursOffset) * time.Hour)

			event := Event{
				Time:    eventTime,
				Level:   "INFO",
				Type:    "run.started",
				Message: fmt.Sprintf("event %d", i),
				Data:    map[string]any{"run_id": genRunID(rt, fmt.Sprintf("filterRunID_%d", i))},
			}
			if err := el.Write(event); err != nil {
				t.Fatalf("writing event: %v", err)
			}
		}

		// Generate Since and Until where since <= until.
		sinceOffset := rapid.IntRange(0, 100).Draw(rt, "sinceOffset")
		untilOffset := rapid.IntRange(sinceOffset, 168).Draw(rt, "untilOffset")

		since := baseTime.Add(time.Duration(sinceOffset) * time.Hour)
		until := baseTime.Add(time.Duration(untilOffset) * time.Hour)

		filtered, err := el.Read(EventFilter{Since: &since, Until: &until})
		if err != nil {
			t.Fatalf("reading filtered events: %v", err)
		}

		for _, event := range filtered {
			if event.Time.Before(since) {
				rt.Errorf("event at %v is before Since %v", event.Time, since)
			}
			if event.Time.After(until) {
				rt.Errorf("event at %v is after Until %v", event.Time, until)
			}
		}
	})
}

// countAlertsByCondition counts alerts matching a specific condition string.
func countAlertsByCondition(alerts []Alert, condition string) int {
	count := 0
	for _, a := range alerts {
		if a.Condition == condition {
			count++
		}
	}
	return count
}
