package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/log"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/pkg/models"
)

// qcCollector accumulates quality-control findings raised while a run is
// set up and computed. Safe for concurrent use.
type qcCollector struct {
	mu       sync.Mutex
	findings []models.QCFinding
	logger   zerolog.Logger
}

func newQCCollector() *qcCollector {
	return &qcCollector{logger: log.WithComponent("qc")}
}

// add records one finding and logs it at a level matching its severity.
func (c *qcCollector) add(severity models.QCSeverity, code, subject, message string) {
	c.record(models.QCFinding{
		Severity: severity,
		Code:     code,
		Subject:  subject,
		Message:  message,
	})
}

// extend appends pre-built findings, preserving their order.
func (c *qcCollector) extend(findings []models.QCFinding) {
	for _, f := range findings {
		c.record(f)
	}
}

func (c *qcCollector) record(f models.QCFinding) {
	c.mu.Lock()
	c.findings = append(c.findings, f)
	c.mu.Unlock()

	evt := c.logger.Warn()
	if f.Severity == models.QCInfo {
		evt = c.logger.Info()
	}
	evt.Str("code", f.Code).Str("subject", f.Subject).Msg(f.Message)
}

// Findings returns the collected findings in recording order.
func (c *qcCollector) Findings() []models.QCFinding {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.QCFinding, len(c.findings))
	copy(out, c.findings)
	return out
}

// NewQCReport assembles the final quality-control report of a run.
func NewQCReport(runID string, findings []models.QCFinding) models.QCReport {
	return models.QCReport{
		RunID:     runID,
		Generated: time.Now().UTC(),
		Findings:  findings,
	}
}
