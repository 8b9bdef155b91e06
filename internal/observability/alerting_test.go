package observability

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func TestAlertEngine_StalledRunAlert(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	// A run started 12 hours ago with no terminal event should trigger
	// an alert with the 6h threshold.
	startedTime := time.Now().UTC().Add(-12 * time.Hour)
	event := Event{
		Time:    startedTime,
		Level:   "INFO",
		Type:    "run.started",
		Message: "prediction run started",
		Data:    map[string]any{"run_id": "RUN-00001"},
	}
	if err := log.Write(event); err != nil {
		t.Fatalf("writing event: %v", err)
	}

	engine := NewAlertEngine(log, DefaultAlertThresholds())
	alerts, err := engine.Evaluate()
	if err != nil {
		t.Fatalf("evaluating alerts: %v", err)
	}

	found := false
	for _, a := range alerts {
		if a.Condition == "run_stalled" && a.ID == "stalled-RUN-00001" {
			found = true
			if a.Severity != SeverityHigh {
				t.Errorf("expected high severity, got %s", a.Severity)
			}
		}
	}

	if !found {
		t.Error("expected stalled run alert but none found")
	}
}

func TestAlertEngine_NoStalledAlertWithinThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	// A run started 1 hour ago should not trigger with the 6h threshold.
	startedTime := time.Now().UTC().Add(-time.Hour)
	event := Event{
		Time:    startedTime,
		Level:   "INFO",
		Type:    "run.started",
		Message: "prediction run started",
		Data:    map[string]any{"run_id": "RUN-00001"},
	}
	if err := log.Write(event); err != nil {
		t.Fatalf("writing event: %v", err)
	}

	engine := NewAlertEngine(log, DefaultAlertThresholds())
	alerts, err := engine.Evaluate()
	if err != nil {
		t.Fatalf("evaluating alerts: %v", err)
	}

	for _, a := range alerts {
		if a.Condition == "run_stalled" {
			t.Error("did not expect stalled alert within threshold")
		}
	}
}

func TestAlertEngine_FinishedRunDoesNotStall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	// A run started 12 hours ago completed an hour later.
	startedTime := time.Now().UTC().Add(-12 * time.Hour)
	events := []Event{
		{
			Time:    startedTime,
			Level:   "INFO",
			Type:    "run.started",
			Message: "prediction run started",
			Data:    map[string]any{"run_id": "RUN-00001"},
		},
		{
			Time:    startedTime.Add(time.Hour),
			Level:   "INFO",
			Type:    "run.completed",
			Message: "prediction run completed",
			Data:    map[string]any{"run_id": "RUN-00001", "pairs": 12, "positive": 3},
		},
	}

	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	engine := NewAlertEngine(log, DefaultAlertThresholds())
	alerts, err := engine.Evaluate()
	if err != nil {
		t.Fatalf("evaluating alerts: %v", err)
	}

	for _, a := range alerts {
		if a.Condition == "run_stalled" && a.ID == "stalled-RUN-00001" {
			t.Error("run completed, should not trigger stalled alert")
		}
	}
}

func TestAlertEngine_FailedRunsAlert(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	now := time.Now().UTC()
	// Four failed runs exceed the MaxFailedRuns threshold of 3.
	for i := 0; i < 4; i++ {
		event := Event{
			Time:    now.Add(time.Duration(i) * time.Minute),
			Level:   "ERROR",
			Type:    "run.failed",
			Message: "prediction run failed",
			Data:    map[string]any{"run_id": fmt.Sprintf("RUN-%05d", i+1), "error": "listing virus genomes: no such directory"},
		}
		if err := log.Write(event); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	engine := NewAlertEngine(log, DefaultAlertThresholds())
	alerts, err := engine.Evaluate()
	if err != nil {
		t.Fatalf("evaluating alerts: %v", err)
	}

	found := false
	for _, a := range alerts {
		if a.Condition == "run_failures" {
			found = true
			if a.Severity != SeverityMedium {
				t.Errorf("expected medium severity, got %s", a.Severity)
			}
		}
	}

	if !found {
		t.Error("expected failed runs alert but none found")
	}
}

func TestAlertEngine_NoFailedRunsAlertAtThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	now := time.Now().UTC()
	// Exactly MaxFailedRuns failures should not fire.
	for i := 0; i < 3; i++ {
		event := Event{
			Time:    now.Add(time.Duration(i) * time.Minute),
			Level:   "ERROR",
			Type:    "run.failed",
			Message: "prediction run failed",
			Data:    map[string]any{"run_id": fmt.Sprintf("RUN-%05d", i+1)},
		}
		if err := log.Write(event); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	engine := NewAlertEngine(log, DefaultAlertThresholds())
	alerts, err := engine.Evaluate()
	if err != nil {
		t.Fatalf("evaluating alerts: %v", err)
	}

	for _, a := range alerts {
		if a.Condition == "run_failures" {
			t.Error("did not expect failed runs alert at the threshold")
		}
	}
}

func TestAlertEngine_QCWarningsAlert(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	now := time.Now().UTC()
	// 26 findings for one run exceed the MaxQCWarnings threshold of 25.
	for i := 0; i < 26; i++ {
		event := Event{
			Time:    now.Add(time.Duration(i) * time.Second),
			Level:   "WARN",
			Type:    "qc.warning",
			Message: "quality-control finding",
			Data:    map[string]any{"run_id": "RUN-00005", "code": "metric_failed"},
		}
		if err := log.Write(event); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}
	// A second run under the threshold must not fire.
	for i := 0; i < 2; i++ {
		event := Event{
			Time:    now.Add(time.Duration(30+i) * time.Second),
			Level:   "WARN",
			Type:    "qc.warning",
			Message: "quality-control finding",
			Data:    map[string]any{"run_id": "RUN-00006", "code": "no_trna"},
		}
		if err := log.Write(event); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	engine := NewAlertEngine(log, DefaultAlertThresholds())
	alerts, err := engine.Evaluate()
	if err != nil {
		t.Fatalf("evaluating alerts: %v", err)
	}

	found := false
	for _, a := range alerts {
		if a.Condition == "qc_warnings_high" {
			if a.ID != "qc-RUN-00005" {
				t.Errorf("expected alert for RUN-00005, got %s", a.ID)
			}
			found = true
			if a.Severity != SeverityLow {
				t.Errorf("expected low severity, got %s", a.Severity)
			}
		}
	}

	if !found {
		t.Error("expected quality-control warnings alert but none found")
	}
}

func TestAlertEngine_NoAlertsOnCleanState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	engine := NewAlertEngine(log, DefaultAlertThresholds())
	alerts, err := engine.Evaluate()
	if err != nil {
		t.Fatalf("evaluating alerts: %v", err)
	}

	if len(alerts) != 0 {
		t.Errorf("expected 0 alerts on clean state, got %d", len(alerts))
	}
}
