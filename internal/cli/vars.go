package cli

import (
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/core"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/observability"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/pkg/models"
)

// Shared state and observability service instances, set during app
// initialization in app.go.
var (
	// BasePath is the project root holding vhip.yaml and the run data.
	BasePath string

	// Config is the loaded project configuration.
	Config *models.Config

	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
)

// activeConfig returns the loaded configuration, falling back to the
// defaults when the CLI runs without application wiring.
func activeConfig() *models.Config {
	if Config != nil {
		return Config
	}
	return core.DefaultConfig()
}
