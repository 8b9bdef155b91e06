package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/core"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/pkg/models"
)

// ReportWriter writes the per-run output files: the feature table, the
// prediction table, and the quality-control report. Every file lands via
// an atomic replace, so readers never observe a half-written table.
type ReportWriter struct{}

// NewReportWriter creates a ReportWriter.
func NewReportWriter() *ReportWriter {
	return &ReportWriter{}
}

// WriteFeatureTable writes one TSV row per pair. With extended set, the
// gene-level columns follow the genome-level ones, carrying NA where a
// metric was unavailable.
func (w *ReportWriter) WriteFeatureTable(path string, pairs []models.PairFeatures, extended bool) error {
	var b strings.Builder

	header := append([]string{"virus", "host"}, models.FeatureColumns...)
	if extended {
		header = append(header, models.GeneFeatureColumns...)
	}
	b.WriteString(strings.Join(header, "\t"))
	b.WriteByte('\n')

	for _, pf := range pairs {
		row := []string{
			pf.Virus,
			pf.Host,
			formatFloat(pf.GCDifference),
			formatFloat(pf.K3Dist),
			formatFloat(pf.K6Dist),
			formatBool(pf.HomologyHit),
		}
		if extended {
			for _, col := range models.GeneFeatureColumns {
				if value, ok := pf.GeneLevel[col]; ok {
					row = append(row, formatFloat(value))
				} else {
					row = append(row, "NA")
				}
			}
		}
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}
	return writeAtomic(path, []byte(b.String()))
}

// WritePredictionTable writes one TSV row per scored pair: the model's
// input features, the predicted class, and the infection probability.
func (w *ReportWriter) WritePredictionTable(path string, predictions []models.Prediction) error {
	var b strings.Builder

	header := append([]string{"virus", "host"}, models.FeatureColumns...)
	header = append(header, "prediction", "score")
	b.WriteString(strings.Join(header, "\t"))
	b.WriteByte('\n')

	for _, pred := range predictions {
		row := []string{
			pred.Virus,
			pred.Host,
			formatFloat(pred.GCDifference),
			formatFloat(pred.K3Dist),
			formatFloat(pred.K6Dist),
			formatBool(pred.HomologyHit),
			strconv.Itoa(pred.Class),
			formatFloat(pred.Score),
		}
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}
	return writeAtomic(path, []byte(b.String()))
}

// WriteQCReport writes the findings of a run as YAML.
func (w *ReportWriter) WriteQCReport(path string, report models.QCReport) error {
	data, err := yaml.Marshal(&report)
	if err != nil {
		return fmt.Errorf("marshal QC report: %w", err)
	}
	return writeAtomic(path, data)
}

// writeAtomic stages data in a pending file and replaces path in one
// rename after fsync.
func writeAtomic(path string, data []byte) error {
	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending file for %s: %w", path, err)
	}
	defer func() { _ = pending.Cleanup() }()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}

func formatBool(value bool) string {
	if value {
		return "1"
	}
	return "0"
}

var _ core.ReportWriter = (*ReportWriter)(nil)
