package core

import (
	"context"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/pkg/models"
)

// RunStore provides access to recorded prediction runs.
// This interface is defined locally in core to avoid importing storage.
type RunStore interface {
	SaveRun(ctx context.Context, run models.Run, predictions []models.Prediction) error
	GetRun(ctx context.Context, id string) (*models.Run, error)
	ListRuns(ctx context.Context, limit int) ([]models.Run, error)
	Predictions(ctx context.Context, runID string) ([]models.Prediction, error)
}

// ReportWriter persists the feature, prediction and QC report files of a
// run. This interface is defined locally in core to avoid importing storage.
type ReportWriter interface {
	WriteFeatureTable(path string, pairs []models.PairFeatures, extended bool) error
	WritePredictionTable(path string, predictions []models.Prediction) error
	WriteQCReport(path string, report models.QCReport) error
}

// RunNotifier posts run summaries to an external receiver.
// This interface is defined locally in core to avoid importing observability.
type RunNotifier interface {
	NotifyRunCompleted(ctx context.Context, run models.Run, report models.QCReport) error
}
