package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/log"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/mlmodel"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/pkg/models"
)

// PredictOptions describe one prediction run.
type PredictOptions struct {
	Pipeline  PipelineOptions
	ModelPath string

	// OutputDir receives the feature table, prediction table and QC
	// report, named after the run ID.
	OutputDir string
}

// PredictionResult is the outcome of one prediction run.
type PredictionResult struct {
	Run         models.Run
	Predictions []models.Prediction
	Features    *FeatureSet
	Report      models.QCReport

	FeaturesPath    string
	PredictionsPath string
	ReportPath      string
}

// Predictor runs the feature pipeline, scores every pair with the
// classifier, writes the output tables and records the run.
type Predictor interface {
	PredictInteractions(ctx context.Context, opts PredictOptions) (*PredictionResult, error)
}

// predictor implements Predictor. The store, event log and notifier are
// optional; a nil value disables that concern.
type predictor struct {
	computer FeatureComputer
	reports  ReportWriter
	runIDs   RunIDGenerator
	store    RunStore
	events   EventLogger
	notifier RunNotifier
	logger   zerolog.Logger
}

// NewPredictor wires a Predictor from its collaborators.
func NewPredictor(
	computer FeatureComputer,
	reports ReportWriter,
	runIDs RunIDGenerator,
	store RunStore,
	events EventLogger,
	notifier RunNotifier,
) Predictor {
	return &predictor{
		computer: computer,
		reports:  reports,
		runIDs:   runIDs,
		store:    store,
		events:   events,
		notifier: notifier,
		logger:   log.WithComponent("predictor"),
	}
}

// PredictInteractions scores every virus-host pair of the run and returns
// the recorded outcome. The run is persisted even when the computation
// fails, so failed runs stay visible in the run history.
func (p *predictor) PredictInteractions(ctx context.Context, opts PredictOptions) (*PredictionResult, error) {
	runID, err := p.runIDs.GenerateRunID()
	if err != nil {
		return nil, fmt.Errorf("allocating run ID: %w", err)
	}

	run := models.Run{
		ID:       runID,
		Status:   models.RunStatusRunning,
		VirusDir: opts.Pipeline.VirusGenomeDir,
		HostDir:  opts.Pipeline.HostGenomeDir,
		Started:  time.Now().UTC(),
	}
	p.emit("run.started", map[string]any{
		"run_id":  runID,
		"viruses": opts.Pipeline.VirusGenomeDir,
		"hosts":   opts.Pipeline.HostGenomeDir,
	})
	p.logger.Info().Str("run_id", runID).Msg("prediction run started")

	model, err := mlmodel.LoadModel(opts.ModelPath)
	if err != nil {
		return nil, p.failRun(ctx, &run, fmt.Errorf("loading model: %w", err))
	}
	run.ModelName = model.Name
	run.ModelVersion = model.Version

	set, err := p.computer.ComputeFeatures(ctx, opts.Pipeline)
	if err != nil {
		return nil, p.failRun(ctx, &run, err)
	}

	predictions, err := ScorePairs(model, runID, set.Pairs)
	if err != nil {
		return nil, p.failRun(ctx, &run, err)
	}

	if err := os.MkdirAll(opts.OutputDir, 0o750); err != nil {
		return nil, p.failRun(ctx, &run, fmt.Errorf("creating output directory: %w", err))
	}

	result := &PredictionResult{
		Predictions:     predictions,
		Features:        set,
		Report:          NewQCReport(runID, set.Findings),
		FeaturesPath:    filepath.Join(opts.OutputDir, runID+"_features.tsv"),
		PredictionsPath: filepath.Join(opts.OutputDir, runID+"_predictions.tsv"),
		ReportPath:      filepath.Join(opts.OutputDir, runID+"_qc.yaml"),
	}

	if err := p.reports.WriteFeatureTable(result.FeaturesPath, set.Pairs, true); err != nil {
		return nil, p.failRun(ctx, &run, err)
	}
	p.emit("features.written", map[string]any{
		"run_id": runID,
		"path":   result.FeaturesPath,
		"rows":   len(set.Pairs),
	})

	if err := p.reports.WritePredictionTable(result.PredictionsPath, predictions); err != nil {
		return nil, p.failRun(ctx, &run, err)
	}
	p.emit("predictions.written", map[string]any{
		"run_id": runID,
		"path":   result.PredictionsPath,
		"rows":   len(predictions),
	})

	if err := p.reports.WriteQCReport(result.ReportPath, result.Report); err != nil {
		return nil, p.failRun(ctx, &run, err)
	}
	for _, f := range result.Report.Findings {
		p.emit("qc.warning", map[string]any{
			"run_id":   runID,
			"severity": string(f.Severity),
			"code":     f.Code,
			"subject":  f.Subject,
		})
	}

	run.Status = models.RunStatusCompleted
	run.Pairs = len(predictions)
	run.Positive = countPositive(predictions)
	run.OutputPath = result.PredictionsPath
	run.Finished = time.Now().UTC()
	result.Run = run

	if p.store != nil {
		if err := p.store.SaveRun(ctx, run, predictions); err != nil {
			return nil, fmt.Errorf("recording run %s: %w", runID, err)
		}
	}
	p.emit("run.completed", map[string]any{
		"run_id":      runID,
		"pairs":       run.Pairs,
		"positive":    run.Positive,
		"duration_ms": run.Duration().Milliseconds(),
	})
	p.logger.Info().
		Str("run_id", runID).
		Int("pairs", run.Pairs).
		Int("positive", run.Positive).
		Msg("prediction run completed")

	if p.notifier != nil {
		if err := p.notifier.NotifyRunCompleted(ctx, run, result.Report); err != nil {
			p.logger.Warn().Err(err).Str("run_id", runID).Msg("run notification failed")
		}
	}
	return result, nil
}

// ScorePairs builds the feature matrix in the model's declared feature
// order and classifies every pair.
func ScorePairs(model *mlmodel.Model, runID string, pairs []models.PairFeatures) ([]models.Prediction, error) {
	predictions := make([]models.Prediction, 0, len(pairs))
	for _, pf := range pairs {
		vec := make([]float64, len(model.Features))
		for i, name := range model.Features {
			v, err := featureValue(pf, name)
			if err != nil {
				return nil, fmt.Errorf("pair %s vs %s: %w", pf.Virus, pf.Host, err)
			}
			vec[i] = v
		}
		score, err := model.PredictProba(vec)
		if err != nil {
			return nil, fmt.Errorf("pair %s vs %s: %w", pf.Virus, pf.Host, err)
		}
		class, err := model.Predict(vec)
		if err != nil {
			return nil, fmt.Errorf("pair %s vs %s: %w", pf.Virus, pf.Host, err)
		}
		predictions = append(predictions, models.Prediction{
			RunID:        runID,
			Virus:        pf.Virus,
			Host:         pf.Host,
			GCDifference: pf.GCDifference,
			K3Dist:       pf.K3Dist,
			K6Dist:       pf.K6Dist,
			HomologyHit:  pf.HomologyHit,
			Class:        class,
			Score:        score,
		})
	}
	return predictions, nil
}

// featureValue resolves a declared model feature against the computed
// features of a pair. Gene-level metrics resolve by their metric name.
func featureValue(pf models.PairFeatures, name string) (float64, error) {
	switch name {
	case "GCdifference":
		return pf.GCDifference, nil
	case "k3dist":
		return pf.K3Dist, nil
	case "k6dist":
		return pf.K6Dist, nil
	case "Homology_hit":
		if pf.HomologyHit {
			return 1, nil
		}
		return 0, nil
	}
	if v, ok := pf.GeneLevel[name]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("model feature %q is not available", name)
}

func countPositive(predictions []models.Prediction) int {
	n := 0
	for _, pred := range predictions {
		if pred.Class == 1 {
			n++
		}
	}
	return n
}

// failRun marks the run failed, records it when a store is present, and
// returns the original error.
func (p *predictor) failRun(ctx context.Context, run *models.Run, cause error) error {
	run.Status = models.RunStatusFailed
	run.Error = cause.Error()
	run.Finished = time.Now().UTC()

	if p.store != nil {
		if err := p.store.SaveRun(ctx, *run, nil); err != nil {
			p.logger.Warn().Err(err).Str("run_id", run.ID).Msg("failed to record failed run")
		}
	}
	p.emit("run.failed", map[string]any{
		"run_id": run.ID,
		"error":  cause.Error(),
	})
	p.logger.Error().Err(cause).Str("run_id", run.ID).Msg("prediction run failed")
	return cause
}

func (p *predictor) emit(eventType string, data map[string]any) {
	if p.events == nil {
		return
	}
	if err := p.events.LogEvent(eventType, data); err != nil {
		p.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to record event")
	}
}
