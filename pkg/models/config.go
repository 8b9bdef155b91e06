package models

// ThresholdConfig bounds the imprecision tolerated when aggregating codon
// statistics from annotated gene files.
type ThresholdConfig struct {
	// Imprecise is the fraction of imprecise codons tolerated per gene.
	Imprecise float64 `yaml:"imprecise" mapstructure:"imprecise"`
	// SkippedGenes is the tolerated fraction of genes excluded for
	// imprecision before aggregation fails.
	SkippedGenes float64 `yaml:"skipped_genes" mapstructure:"skipped_genes"`
}

// QCConfig tunes the quality-control engine.
type QCConfig struct {
	// SkippedGeneWarn is the skipped-gene fraction above which a warning
	// finding is raised for a gene file.
	SkippedGeneWarn float64 `yaml:"skipped_gene_warn" mapstructure:"skipped_gene_warn"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// NotifyConfig controls run-completion webhook notifications.
type NotifyConfig struct {
	WebhookURL string `yaml:"webhook_url,omitempty" mapstructure:"webhook_url"`
}

// Config holds the project-wide settings read from vhip.yaml via Viper.
type Config struct {
	// Workers bounds the parallel feature computations per run.
	Workers int `yaml:"workers" mapstructure:"workers"`

	// GenomeExt and GeneExt are the filename extensions of genome and
	// annotated gene files, without the leading dot.
	GenomeExt string `yaml:"genome_ext" mapstructure:"genome_ext"`
	GeneExt   string `yaml:"gene_ext" mapstructure:"gene_ext"`

	// ModelPath points at the classifier model file.
	ModelPath string `yaml:"model_path" mapstructure:"model_path"`

	// OutputDir receives feature tables, prediction tables and QC reports.
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`

	// DatabasePath is the SQLite run store location.
	DatabasePath string `yaml:"database_path" mapstructure:"database_path"`

	// EventLogPath is the append-only JSONL event log location.
	EventLogPath string `yaml:"event_log_path" mapstructure:"event_log_path"`

	Thresholds ThresholdConfig `yaml:"thresholds" mapstructure:"thresholds"`
	QC         QCConfig        `yaml:"qc" mapstructure:"qc"`
	Logging    LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	Notify     NotifyConfig    `yaml:"notify,omitempty" mapstructure:"notify"`
}
