package models

import "time"

// QCSeverity grades a quality-control finding.
type QCSeverity string

const (
	QCInfo     QCSeverity = "info"
	QCWarning  QCSeverity = "warning"
	QCCritical QCSeverity = "critical"
)

// QC finding codes.
const (
	QCCodeSkippedGenes    = "skipped_genes"
	QCCodeNoTRNA          = "no_trna"
	QCCodeMissingGeneFile = "missing_gene_file"
	QCCodeUnknownContig   = "unknown_contig"
	QCCodeUnknownPair     = "unknown_pair"
	QCCodeNoHomology      = "no_homology_input"
	QCCodeMetricFailed    = "metric_failed"
	QCCodeUnusableGenes   = "unusable_gene_file"
)

// QCFinding is one quality-control observation about a run input or pair.
type QCFinding struct {
	Severity QCSeverity `yaml:"severity" json:"severity"`
	Code     string     `yaml:"code" json:"code"`
	Subject  string     `yaml:"subject" json:"subject"`
	Message  string     `yaml:"message" json:"message"`
}

// QCReport collects the findings of one run.
type QCReport struct {
	RunID     string      `yaml:"run_id" json:"run_id"`
	Generated time.Time   `yaml:"generated" json:"generated"`
	Findings  []QCFinding `yaml:"findings" json:"findings"`
}

// CountBySeverity tallies findings per severity grade.
func (r QCReport) CountBySeverity() map[QCSeverity]int {
	counts := make(map[QCSeverity]int)
	for _, f := range r.Findings {
		counts[f.Severity]++
	}
	return counts
}

// HasCritical reports whether any finding is graded critical.
func (r QCReport) HasCritical() bool {
	for _, f := range r.Findings {
		if f.Severity == QCCritical {
			return true
		}
	}
	return false
}
