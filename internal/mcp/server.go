// Package mcp provides an MCP (Model Context Protocol) server that exposes
// vhip functionality as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/core"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/mlmodel"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/observability"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/pkg/models"
)

// Server wraps vhip services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	computer    core.FeatureComputer
	store       core.RunStore
	metricsCalc observability.MetricsCalculator
	alertEngine observability.AlertEngine
	modelPath   string
}

// NewServer creates a new MCP server with the given vhip service
// dependencies. store, metricsCalc and alertEngine may be nil when the
// backing stores are disabled.
func NewServer(
	computer core.FeatureComputer,
	store core.RunStore,
	metricsCalc observability.MetricsCalculator,
	alertEngine observability.AlertEngine,
	modelPath string,
	version string,
) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		computer:    computer,
		store:       store,
		metricsCalc: metricsCalc,
		alertEngine: alertEngine,
		modelPath:   modelPath,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "vhip", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type predictPairInput struct {
	VirusFasta string `json:"virus_fasta" jsonschema:"required,path to the virus genome FASTA file"`
	HostFasta  string `json:"host_fasta" jsonschema:"required,path to the candidate host genome FASTA file"`
	BlastnFile string `json:"blastn_file,omitempty" jsonschema:"optional BLAST tabular output feeding the homology signal"`
	SpacerFile string `json:"spacer_file,omitempty" jsonschema:"optional CRISPR spacer BLAST tabular output"`
}

type findingOutput struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
}

type predictPairOutput struct {
	Virus        string             `json:"virus"`
	Host         string             `json:"host"`
	GCDifference float64            `json:"gc_difference"`
	K3Dist       float64            `json:"k3dist"`
	K6Dist       float64            `json:"k6dist"`
	HomologyHit  bool               `json:"homology_hit"`
	GeneLevel    map[string]float64 `json:"gene_level,omitempty"`
	Class        int                `json:"class"`
	Score        float64            `json:"score"`
	Verdict      string             `json:"verdict"`
	ModelName    string             `json:"model_name"`
	ModelVersion string             `json:"model_version"`
	Findings     []findingOutput    `json:"findings,omitempty"`
}

type listRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs to return, newest first. Defaults to 20."`
}

type runOutput struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	ModelName    string `json:"model_name,omitempty"`
	ModelVersion string `json:"model_version,omitempty"`
	VirusDir     string `json:"virus_dir,omitempty"`
	HostDir      string `json:"host_dir,omitempty"`
	Pairs        int    `json:"pairs"`
	Positive     int    `json:"positive"`
	OutputPath   string `json:"output_path,omitempty"`
	Error        string `json:"error,omitempty"`
	Started      string `json:"started"`
	Finished     string `json:"finished,omitempty"`
	DurationMS   int64  `json:"duration_ms,omitempty"`
}

type listRunsOutput struct {
	Runs  []runOutput `json:"runs"`
	Count int         `json:"count"`
}

type getRunInput struct {
	RunID string `json:"run_id" jsonschema:"required,the run identifier (e.g. RUN-00042)"`
}

type predictionOutput struct {
	Virus string  `json:"virus"`
	Host  string  `json:"host"`
	Class int     `json:"class"`
	Score float64 `json:"score"`
}

type getRunOutput struct {
	Run         runOutput          `json:"run"`
	Predictions []predictionOutput `json:"predictions"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	RunsStarted    int            `json:"runs_started"`
	RunsCompleted  int            `json:"runs_completed"`
	RunsFailed     int            `json:"runs_failed"`
	PairsScored    int            `json:"pairs_scored"`
	PositivePairs  int            `json:"positive_pairs"`
	QCWarnings     int            `json:"qc_warnings"`
	WarningsByCode map[string]int `json:"warnings_by_code"`
	AvgRunMillis   int64          `json:"avg_run_millis"`
	EventCount     int            `json:"event_count"`
	OldestEvent    string         `json:"oldest_event,omitempty"`
	NewestEvent    string         `json:"newest_event,omitempty"`
}

type getAlertsInput struct{}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "predict_pair",
		Description: "Predict whether a phage infects a candidate host. Computes genome features for the single pair and scores them with the trained classifier. Both genome files must share a filename extension.",
	}, s.handlePredictPair)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_runs",
		Description: "List recorded prediction runs, newest first, with an optional limit.",
	}, s.handleListRuns)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_run",
		Description: "Get one prediction run by ID, including its per-pair predictions.",
	}, s.handleGetRun)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated metrics from the event log, including run counts, scored pairs, and quality-control warnings.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate and return active alerts (stalled runs, repeated failures, noisy quality control).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handlePredictPair(ctx context.Context, _ *gomcp.CallToolRequest, input predictPairInput) (*gomcp.CallToolResult, predictPairOutput, error) {
	if input.VirusFasta == "" {
		return errorResult("virus_fasta is required"), predictPairOutput{}, nil
	}
	if input.HostFasta == "" {
		return errorResult("host_fasta is required"), predictPairOutput{}, nil
	}
	for _, p := range []string{input.VirusFasta, input.HostFasta} {
		if _, err := os.Stat(p); err != nil {
			return errorResult(fmt.Sprintf("reading genome %s: %s", p, err)), predictPairOutput{}, nil
		}
	}

	ext := strings.TrimPrefix(filepath.Ext(input.VirusFasta), ".")
	hostExt := strings.TrimPrefix(filepath.Ext(input.HostFasta), ".")
	if ext == "" || ext != hostExt {
		return errorResult(fmt.Sprintf("virus and host genomes must share a filename extension, got %q and %q", ext, hostExt)), predictPairOutput{}, nil
	}

	pairsFile, err := writePairsFile(filepath.Base(input.VirusFasta), filepath.Base(input.HostFasta))
	if err != nil {
		return errorResult(fmt.Sprintf("preparing pair restriction: %s", err)), predictPairOutput{}, nil
	}
	defer os.Remove(pairsFile)

	set, err := s.computer.ComputeFeatures(ctx, core.PipelineOptions{
		VirusGenomeDir: filepath.Dir(input.VirusFasta),
		HostGenomeDir:  filepath.Dir(input.HostFasta),
		GenomeExt:      ext,
		PairsFile:      pairsFile,
		BlastnFile:     input.BlastnFile,
		SpacerFile:     input.SpacerFile,
		Workers:        1,
	})
	if err != nil {
		return errorResult(fmt.Sprintf("computing features: %s", err)), predictPairOutput{}, nil
	}
	if len(set.Pairs) != 1 {
		return errorResult(fmt.Sprintf("expected one scoreable pair, got %d (check the genome files)", len(set.Pairs))), predictPairOutput{}, nil
	}

	model, err := mlmodel.LoadModel(s.modelPath)
	if err != nil {
		return errorResult(fmt.Sprintf("loading model: %s", err)), predictPairOutput{}, nil
	}

	predictions, err := core.ScorePairs(model, "", set.Pairs)
	if err != nil {
		return errorResult(fmt.Sprintf("scoring pair: %s", err)), predictPairOutput{}, nil
	}

	pf := set.Pairs[0]
	pred := predictions[0]
	verdict := "does not infect"
	if pred.Class == 1 {
		verdict = "infects"
	}

	out := predictPairOutput{
		Virus:        pf.Virus,
		Host:         pf.Host,
		GCDifference: pf.GCDifference,
		K3Dist:       pf.K3Dist,
		K6Dist:       pf.K6Dist,
		HomologyHit:  pf.HomologyHit,
		GeneLevel:    pf.GeneLevel,
		Class:        pred.Class,
		Score:        pred.Score,
		Verdict:      verdict,
		ModelName:    model.Name,
		ModelVersion: model.Version,
		Findings:     findingsToOutput(set.Findings),
	}
	return nil, out, nil
}

func (s *Server) handleListRuns(ctx context.Context, _ *gomcp.CallToolRequest, input listRunsInput) (*gomcp.CallToolResult, listRunsOutput, error) {
	if s.store == nil {
		return errorResult("run store not available (storage may be disabled)"), listRunsOutput{}, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return errorResult(fmt.Sprintf("listing runs: %s", err)), listRunsOutput{}, nil
	}

	out := listRunsOutput{
		Runs:  make([]runOutput, len(runs)),
		Count: len(runs),
	}
	for i, r := range runs {
		out.Runs[i] = runToOutput(r)
	}

	return nil, out, nil
}

func (s *Server) handleGetRun(ctx context.Context, _ *gomcp.CallToolRequest, input getRunInput) (*gomcp.CallToolResult, getRunOutput, error) {
	if s.store == nil {
		return errorResult("run store not available (storage may be disabled)"), getRunOutput{}, nil
	}
	if input.RunID == "" {
		return errorResult("run_id is required"), getRunOutput{}, nil
	}

	run, err := s.store.GetRun(ctx, input.RunID)
	if err != nil {
		return errorResult(fmt.Sprintf("getting run %s: %s", input.RunID, err)), getRunOutput{}, nil
	}

	predictions, err := s.store.Predictions(ctx, input.RunID)
	if err != nil {
		return errorResult(fmt.Sprintf("loading predictions for %s: %s", input.RunID, err)), getRunOutput{}, nil
	}

	out := getRunOutput{
		Run:         runToOutput(*run),
		Predictions: make([]predictionOutput, len(predictions)),
	}
	for i, p := range predictions {
		out.Predictions[i] = predictionOutput{
			Virus: p.Virus,
			Host:  p.Host,
			Class: p.Class,
			Score: p.Score,
		}
	}

	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (observability may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		RunsStarted:    metrics.RunsStarted,
		RunsCompleted:  metrics.RunsCompleted,
		RunsFailed:     metrics.RunsFailed,
		PairsScored:    metrics.PairsScored,
		PositivePairs:  metrics.PositivePairs,
		QCWarnings:     metrics.QCWarnings,
		WarningsByCode: metrics.WarningsByCode,
		AvgRunMillis:   metrics.AvgRunMillis,
		EventCount:     metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ getAlertsInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.alertEngine == nil {
		return errorResult("alert engine not available (observability may be disabled)"), getAlertsOutput{}, nil
	}

	alerts, err := s.alertEngine.Evaluate()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{}, nil
	}

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		}
	}

	return nil, out, nil
}

// --- Helpers ---

// writePairsFile writes a one-row pairs CSV restricting the pipeline to a
// single virus-host pair.
func writePairsFile(virus, host string) (string, error) {
	f, err := os.CreateTemp("", "vhip-pair-*.csv")
	if err != nil {
		return "", err
	}
	_, werr := fmt.Fprintf(f, "%s,%s\n", virus, host)
	cerr := f.Close()
	if werr != nil {
		os.Remove(f.Name())
		return "", werr
	}
	if cerr != nil {
		os.Remove(f.Name())
		return "", cerr
	}
	return f.Name(), nil
}

func runToOutput(r models.Run) runOutput {
	out := runOutput{
		ID:           r.ID,
		Status:       string(r.Status),
		ModelName:    r.ModelName,
		ModelVersion: r.ModelVersion,
		VirusDir:     r.VirusDir,
		HostDir:      r.HostDir,
		Pairs:        r.Pairs,
		Positive:     r.Positive,
		OutputPath:   r.OutputPath,
		Error:        r.Error,
		Started:      r.Started.Format(time.RFC3339),
	}
	if !r.Finished.IsZero() {
		out.Finished = r.Finished.Format(time.RFC3339)
		out.DurationMS = r.Duration().Milliseconds()
	}
	return out
}

func findingsToOutput(findings []models.QCFinding) []findingOutput {
	if len(findings) == 0 {
		return nil
	}
	out := make([]findingOutput, len(findings))
	for i, f := range findings {
		out[i] = findingOutput{
			Severity: string(f.Severity),
			Code:     f.Code,
			Subject:  f.Subject,
			Message:  f.Message,
		}
	}
	return out
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{
		WarningsByCode: make(map[string]int),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
