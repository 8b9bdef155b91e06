// Package internal provides the App struct that wires all components of the
// VHIP pipeline together and initializes the CLI layer.
package internal

import (
	"os"
	"path/filepath"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/cli"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/core"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/log"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/observability"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/storage"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/pkg/models"
)

// App holds all service dependencies for the VHIP pipeline.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.Config

	// Storage layer
	RunStore *storage.RunStore
	Reports  *storage.ReportWriter

	// Core services
	Computer    core.FeatureComputer
	RunIDs      core.RunIDGenerator
	Runner      core.Predictor
	ProjectInit core.ProjectInitializer

	// Observability
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
}

// NewApp creates and wires all components of the VHIP pipeline.
// basePath is the workspace root containing vhip.yaml and the run data.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadConfig()
	if err != nil {
		// Use defaults if the config file is unreadable.
		cfg = core.DefaultConfig()
	}
	app.Config = cfg

	log.Configure(log.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Format == "console",
	})

	// --- Storage layer ---
	app.Reports = storage.NewReportWriter()
	app.RunStore, err = storage.OpenRunStore(resolvePath(basePath, cfg.DatabasePath))
	if err != nil {
		// Non-fatal: run history is disabled when the database can't be opened.
		app.RunStore = nil
	}

	// --- Observability ---
	app.EventLog, err = observability.NewJSONLEventLog(resolvePath(basePath, cfg.EventLogPath))
	if err != nil {
		// Non-fatal: disable observability if the log can't be created.
		app.EventLog = nil
	}
	if app.EventLog != nil {
		app.AlertEngine = observability.NewAlertEngine(app.EventLog, observability.DefaultAlertThresholds())
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}
	if cfg.Notify.WebhookURL != "" {
		app.Notifier = observability.NewWebhookNotifier(cfg.Notify.WebhookURL)
	}

	// --- Core services ---
	// Interface-typed views of the optional services, so disabled ones stay
	// nil rather than becoming non-nil interfaces around nil pointers.
	var events core.EventLogger
	if app.EventLog != nil {
		events = app.EventLog
	}
	var store core.RunStore
	if app.RunStore != nil {
		store = app.RunStore
	}
	var notifier core.RunNotifier
	if app.Notifier != nil {
		notifier = app.Notifier
	}

	app.Computer = core.NewFeatureComputer(events)
	app.RunIDs = core.NewRunIDGenerator(basePath)
	app.ProjectInit = core.NewProjectInitializer()
	app.Runner = core.NewPredictor(app.Computer, app.Reports, app.RunIDs, store, events, notifier)

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Config = app.Config
	cli.Computer = app.Computer
	cli.Reports = app.Reports
	cli.Runner = app.Runner
	cli.Runs = store
	cli.ProjectInit = app.ProjectInit

	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle
// and the run database. It is safe to call Close on an App whose optional
// services are nil.
func (a *App) Close() error {
	var firstErr error
	if a.EventLog != nil {
		firstErr = a.EventLog.Close()
	}
	if a.RunStore != nil {
		if err := a.RunStore.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ResolveBasePath determines the workspace root for the VHIP data.
// It checks the VHIP_HOME env var, then falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("VHIP_HOME"); home != "" {
		return home
	}
	// Default: look for vhip.yaml in the current directory tree.
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	// Walk up to find a directory containing vhip.yaml.
	for {
		if _, err := os.Stat(filepath.Join(dir, "vhip.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	// Fall back to cwd.
	cwd, _ := os.Getwd()
	return cwd
}

// resolvePath joins rel with basePath unless rel is already absolute.
func resolvePath(basePath, rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(basePath, rel)
}
