package models

import "time"

// RunStatus represents the current lifecycle state of a prediction run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run records one prediction run identified by a unique RUN-XXXXX ID,
// from input directories through to the written prediction table.
type Run struct {
	ID           string    `json:"id"`
	Status       RunStatus `json:"status"`
	ModelName    string    `json:"model_name"`
	ModelVersion string    `json:"model_version"`
	VirusDir     string    `json:"virus_dir"`
	HostDir      string    `json:"host_dir"`
	Pairs        int       `json:"pairs"`
	Positive     int       `json:"positive"`
	OutputPath   string    `json:"output_path,omitempty"`
	Error        string    `json:"error,omitempty"`
	Started      time.Time `json:"started"`
	Finished     time.Time `json:"finished,omitempty"`
}

// Duration reports how long the run took, or how long it has been
// running when it has not finished yet.
func (r Run) Duration() time.Duration {
	if r.Finished.IsZero() {
		return time.Since(r.Started)
	}
	return r.Finished.Sub(r.Started)
}

// Prediction is one scored virus-host pair from a run.
type Prediction struct {
	RunID        string  `json:"run_id"`
	Virus        string  `json:"virus"`
	Host         string  `json:"host"`
	GCDifference float64 `json:"gc_difference"`
	K3Dist       float64 `json:"k3dist"`
	K6Dist       float64 `json:"k6dist"`
	HomologyHit  bool    `json:"homology_hit"`
	Class        int     `json:"class"`
	Score        float64 `json:"score"`
}
