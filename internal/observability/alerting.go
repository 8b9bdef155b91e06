package observability

import (
	"fmt"
	"time"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts should fire.
type AlertThresholds struct {
	StalledHours  int `yaml:"stalled_threshold_hours" json:"stalled_threshold_hours"`
	MaxFailedRuns int `yaml:"max_failed_runs" json:"max_failed_runs"`
	MaxQCWarnings int `yaml:"max_qc_warnings" json:"max_qc_warnings"`
}

// DefaultAlertThresholds returns sensible defaults for alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		StalledHours:  6,
		MaxFailedRuns: 3,
		MaxQCWarnings: 25,
	}
}

// AlertEngine evaluates alert conditions against the event log.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

// alertEngine implements AlertEngine by reading events and checking thresholds.
type alertEngine struct {
	eventLog   EventLog
	thresholds AlertThresholds
}

// NewAlertEngine creates a new AlertEngine with the given EventLog and thresholds.
func NewAlertEngine(eventLog EventLog, thresholds AlertThresholds) AlertEngine {
	return &alertEngine{
		eventLog:   eventLog,
		thresholds: thresholds,
	}
}

// Evaluate reads events and checks all alert conditions, returning any triggered alerts.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	now := time.Now().UTC()
	var alerts []Alert

	stalledAlerts, err := ae.checkStalledRuns(now)
	if err != nil {
		return nil, fmt.Errorf("checking stalled runs: %w", err)
	}
	alerts = append(alerts, stalledAlerts...)

	failureAlerts, err := ae.checkFailedRuns(now)
	if err != nil {
		return nil, fmt.Errorf("checking failed runs: %w", err)
	}
	alerts = append(alerts, failureAlerts...)

	qcAlerts, err := ae.checkQCWarnings(now)
	if err != nil {
		return nil, fmt.Errorf("checking quality-control findings: %w", err)
	}
	alerts = append(alerts, qcAlerts...)

	return alerts, nil
}

// checkStalledRuns looks for runs that started but never reached a terminal event.
func (ae *alertEngine) checkStalledRuns(now time.Time) ([]Alert, error) {
	events, err := ae.eventLog.Read(EventFilter{})
	if err != nil {
		return nil, err
	}

	started := make(map[string]time.Time)
	finished := make(map[string]bool)

	for _, event := range events {
		runID, _ := event.Data["run_id"].(string)
		if runID == "" {
			continue
		}
		switch event.Type {
		case "run.started":
			started[runID] = event.Time
		case "run.completed", "run.failed":
			finished[runID] = true
		}
	}

	threshold := time.Duration(ae.thresholds.StalledHours) * time.Hour
	var alerts []Alert
	for runID, startedAt := range started {
		if !finished[runID] && now.Sub(startedAt) > threshold {
			alerts = append(alerts, Alert{
				ID:          fmt.Sprintf("stalled-%s", runID),
				Condition:   "run_stalled",
				Severity:    SeverityHigh,
				Message:     fmt.Sprintf("run %s started more than %d hours ago and never finished", runID, ae.thresholds.StalledHours),
				TriggeredAt: now,
			})
		}
	}

	return alerts, nil
}

// checkFailedRuns counts failed runs and alerts when the count exceeds the threshold.
func (ae *alertEngine) checkFailedRuns(now time.Time) ([]Alert, error) {
	events, err := ae.eventLog.Read(EventFilter{Type: "run.failed"})
	if err != nil {
		return nil, err
	}

	var alerts []Alert
	if len(events) > ae.thresholds.MaxFailedRuns {
		alerts = append(alerts, Alert{
			ID:          "failed-runs",
			Condition:   "run_failures",
			Severity:    SeverityMedium,
			Message:     fmt.Sprintf("%d runs have failed, exceeding the maximum of %d", len(events), ae.thresholds.MaxFailedRuns),
			TriggeredAt: now,
		})
	}

	return alerts, nil
}

// checkQCWarnings looks for runs whose quality-control findings exceed the threshold.
func (ae *alertEngine) checkQCWarnings(now time.Time) ([]Alert, error) {
	events, err := ae.eventLog.Read(EventFilter{Type: "qc.warning"})
	if err != nil {
		return nil, err
	}

	// Tally findings per run.
	findings := make(map[string]int)
	for _, event := range events {
		runID, _ := event.Data["run_id"].(string)
		if runID == "" {
			continue
		}
		findings[runID]++
	}

	var alerts []Alert
	for runID, count := range findings {
		if count > ae.thresholds.MaxQCWarnings {
			alerts = append(alerts, Alert{
				ID:          fmt.Sprintf("qc-%s", runID),
				Condition:   "qc_warnings_high",
				Severity:    SeverityLow,
				Message:     fmt.Sprintf("run %s produced %d quality-control findings, exceeding the maximum of %d", runID, count, ae.thresholds.MaxQCWarnings),
				TriggeredAt: now,
			})
		}
	}

	return alerts, nil
}
