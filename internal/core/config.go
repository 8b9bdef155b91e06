// Package core contains the business logic for VHIP, including pair
// enumeration, feature computation, quality control, run orchestration,
// and configuration.
package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/pkg/models"
	"github.com/spf13/viper"
)

// validExtPattern matches filename extensions given without the leading dot.
var validExtPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ConfigurationManager defines the interface for loading and validating
// project configuration from the vhip.yaml file.
type ConfigurationManager interface {
	LoadConfig() (*models.Config, error)
	ValidateConfig(config interface{}) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// basePath is the directory where vhip.yaml resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *models.Config {
	return &models.Config{
		Workers:      6,
		GenomeExt:    "fasta",
		GeneExt:      "ffn",
		ModelPath:    "models/vhip_gbt.json",
		OutputDir:    "output",
		DatabasePath: ".vhip/runs.db",
		EventLogPath: ".vhip_events.jsonl",
		Thresholds: models.ThresholdConfig{
			Imprecise:    0.0,
			SkippedGenes: 0.5,
		},
		QC: models.QCConfig{
			SkippedGeneWarn: 0.1,
		},
		Logging: models.LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig reads the vhip.yaml file from the base path using Viper.
// If the file does not exist, sensible defaults are returned. Every key
// can be overridden through the environment as VHIP_<SECTION>_<KEY>.
func (cm *viperConfigManager) LoadConfig() (*models.Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("vhip")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	v.SetEnvPrefix("VHIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("workers", cfg.Workers)
	v.SetDefault("extensions.genome", cfg.GenomeExt)
	v.SetDefault("extensions.gene", cfg.GeneExt)
	v.SetDefault("model.path", cfg.ModelPath)
	v.SetDefault("output.dir", cfg.OutputDir)
	v.SetDefault("storage.database", cfg.DatabasePath)
	v.SetDefault("storage.event_log", cfg.EventLogPath)
	v.SetDefault("thresholds.imprecise", cfg.Thresholds.Imprecise)
	v.SetDefault("thresholds.skipped_genes", cfg.Thresholds.SkippedGenes)
	v.SetDefault("qc.skipped_gene_warn", cfg.QC.SkippedGeneWarn)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("notify.webhook_url", cfg.Notify.WebhookURL)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading vhip.yaml: %w", err)
		}
		// No config file found; defaults and environment overrides apply.
	}

	// Map nested YAML keys to Config fields.
	cfg.Workers = v.GetInt("workers")
	cfg.GenomeExt = v.GetString("extensions.genome")
	cfg.GeneExt = v.GetString("extensions.gene")
	cfg.ModelPath = v.GetString("model.path")
	cfg.OutputDir = v.GetString("output.dir")
	cfg.DatabasePath = v.GetString("storage.database")
	cfg.EventLogPath = v.GetString("storage.event_log")
	cfg.Thresholds.Imprecise = v.GetFloat64("thresholds.imprecise")
	cfg.Thresholds.SkippedGenes = v.GetFloat64("thresholds.skipped_genes")
	cfg.QC.SkippedGeneWarn = v.GetFloat64("qc.skipped_gene_warn")
	cfg.Logging.Level = v.GetString("logging.level")
	cfg.Logging.Format = v.GetString("logging.format")
	cfg.Notify.WebhookURL = v.GetString("notify.webhook_url")

	return cfg, nil
}

// ValidateConfig checks the provided configuration for invalid values and
// returns a clear error message identifying the problem.
func (cm *viperConfigManager) ValidateConfig(config interface{}) error {
	if config == nil {
		return fmt.Errorf("configuration is nil")
	}

	switch cfg := config.(type) {
	case *models.Config:
		return validateConfig(cfg)
	default:
		return fmt.Errorf("unsupported configuration type: %T", config)
	}
}

// validLogLevels is the set of allowed logging.level values.
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats is the set of allowed logging.format values.
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateConfig checks a Config for invalid field values.
func validateConfig(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if cfg.Workers < 1 {
		errs = append(errs, fmt.Sprintf("workers must be at least 1, got %d", cfg.Workers))
	}

	if !validExtPattern.MatchString(cfg.GenomeExt) {
		errs = append(errs, fmt.Sprintf(
			"extensions.genome %q is invalid, must be alphanumeric without a leading dot",
			cfg.GenomeExt,
		))
	}

	if !validExtPattern.MatchString(cfg.GeneExt) {
		errs = append(errs, fmt.Sprintf(
			"extensions.gene %q is invalid, must be alphanumeric without a leading dot",
			cfg.GeneExt,
		))
	}

	if cfg.ModelPath == "" {
		errs = append(errs, "model.path must not be empty")
	}

	if cfg.OutputDir == "" {
		errs = append(errs, "output.dir must not be empty")
	}

	if cfg.DatabasePath == "" {
		errs = append(errs, "storage.database must not be empty")
	}

	if cfg.EventLogPath == "" {
		errs = append(errs, "storage.event_log must not be empty")
	}

	if cfg.Thresholds.Imprecise < 0 || cfg.Thresholds.Imprecise > 1 {
		errs = append(errs, fmt.Sprintf(
			"thresholds.imprecise %g is invalid, must be between 0 and 1",
			cfg.Thresholds.Imprecise,
		))
	}

	if cfg.Thresholds.SkippedGenes < 0 || cfg.Thresholds.SkippedGenes > 1 {
		errs = append(errs, fmt.Sprintf(
			"thresholds.skipped_genes %g is invalid, must be between 0 and 1",
			cfg.Thresholds.SkippedGenes,
		))
	}

	if cfg.QC.SkippedGeneWarn < 0 || cfg.QC.SkippedGeneWarn > 1 {
		errs = append(errs, fmt.Sprintf(
			"qc.skipped_gene_warn %g is invalid, must be between 0 and 1",
			cfg.QC.SkippedGeneWarn,
		))
	}

	if !validLogLevels[cfg.Logging.Level] {
		errs = append(errs, fmt.Sprintf(
			"logging.level %q is invalid, must be one of: trace, debug, info, warn, error",
			cfg.Logging.Level,
		))
	}

	if !validLogFormats[cfg.Logging.Format] {
		errs = append(errs, fmt.Sprintf(
			"logging.format %q is invalid, must be one of: json, console",
			cfg.Logging.Format,
		))
	}

	if url := cfg.Notify.WebhookURL; url != "" &&
		!strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		errs = append(errs, fmt.Sprintf(
			"notify.webhook_url %q is invalid, must start with http:// or https://",
			url,
		))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
