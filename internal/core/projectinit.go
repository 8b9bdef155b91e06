package core

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// InitConfig holds the parameters for initializing a project workspace.
type InitConfig struct {
	BasePath  string
	Name      string
	GenomeExt string
	GeneExt   string
}

// InitResult holds a summary of what was created vs. skipped.
type InitResult struct {
	Created []string
	Skipped []string
}

// ProjectInitializer defines the interface for initializing a prediction
// workspace with the recommended directory structure.
type ProjectInitializer interface {
	Init(config InitConfig) (*InitResult, error)
}

type projectInitializer struct{}

// NewProjectInitializer creates a new ProjectInitializer.
func NewProjectInitializer() ProjectInitializer {
	return &projectInitializer{}
}

const configTemplate = `# {{.Name}} configuration for vhip.
# Every key can be overridden through the environment as
# VHIP_<SECTION>_<KEY>, e.g. VHIP_MODEL_PATH or VHIP_WORKERS.

workers: 6

extensions:
  genome: {{.GenomeExt}}
  gene: {{.GeneExt}}

model:
  path: models/vhip_gbt.json

output:
  dir: output

storage:
  database: .vhip/runs.db
  event_log: .vhip_events.jsonl

thresholds:
  imprecise: 0.0
  skipped_genes: 0.5

qc:
  skipped_gene_warn: 0.1

logging:
  level: info
  format: json

# Uncomment to post run summaries and alerts to a webhook:
# notify:
#   webhook_url: https://hooks.example.com/vhip
`

const readmeTemplate = `# {{.Name}}

Prediction workspace for vhip.

- viruses/      phage genome files (.{{.GenomeExt}})
- hosts/        bacterial genome files (.{{.GenomeExt}})
- virus_genes/  annotated phage genes (.{{.GeneExt}}), optional
- host_genes/   annotated host genes (.{{.GeneExt}}), optional
- models/       classifier model files
- output/       per-run feature tables, predictions and QC reports

Run a prediction with:

    vhip predict --viruses viruses --hosts hosts
`

const gitignoreContent = `output/
.vhip/
.vhip_events.jsonl
blastdb/
*.tsv
`

// Init creates the workspace directory structure and starter files. It is
// safe to run on existing projects: files and directories that already
// exist are skipped and not overwritten.
func (pi *projectInitializer) Init(config InitConfig) (*InitResult, error) {
	result := &InitResult{}

	if config.Name == "" {
		config.Name = filepath.Base(config.BasePath)
	}
	if config.GenomeExt == "" {
		config.GenomeExt = "fasta"
	}
	if config.GeneExt == "" {
		config.GeneExt = "ffn"
	}

	dirs := []string{
		config.BasePath,
		filepath.Join(config.BasePath, "viruses"),
		filepath.Join(config.BasePath, "hosts"),
		filepath.Join(config.BasePath, "virus_genes"),
		filepath.Join(config.BasePath, "host_genes"),
		filepath.Join(config.BasePath, "models"),
		filepath.Join(config.BasePath, "output"),
		filepath.Join(config.BasePath, ".vhip"),
	}
	for _, dir := range dirs {
		created, err := ensureDir(dir)
		if err != nil {
			return nil, fmt.Errorf("initializing project: creating directory %s: %w", dir, err)
		}
		if created {
			result.Created = append(result.Created, dir)
		} else {
			result.Skipped = append(result.Skipped, dir)
		}
	}

	configPath := filepath.Join(config.BasePath, "vhip.yaml")
	if err := writeFileIfNotExists(configPath, func() ([]byte, error) {
		return renderTemplate("vhip.yaml", configTemplate, config)
	}, result); err != nil {
		return nil, err
	}

	readmePath := filepath.Join(config.BasePath, "README.md")
	if err := writeFileIfNotExists(readmePath, func() ([]byte, error) {
		return renderTemplate("README.md", readmeTemplate, config)
	}, result); err != nil {
		return nil, err
	}

	gitignorePath := filepath.Join(config.BasePath, ".gitignore")
	if err := writeFileIfNotExists(gitignorePath, func() ([]byte, error) {
		return []byte(gitignoreContent), nil
	}, result); err != nil {
		return nil, err
	}

	return result, nil
}

// ensureDir creates a directory if it does not exist. Returns true if created.
func ensureDir(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(path, 0o750); err != nil {
		return false, err
	}
	return true, nil
}

// writeFileIfNotExists writes content from contentFn if the file does not
// exist. It records created/skipped in the result.
func writeFileIfNotExists(path string, contentFn func() ([]byte, error), result *InitResult) error {
	if _, err := os.Stat(path); err == nil {
		result.Skipped = append(result.Skipped, path)
		return nil
	}
	content, err := contentFn()
	if err != nil {
		return fmt.Errorf("initializing project: generating content for %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("initializing project: writing %s: %w", path, err)
	}
	result.Created = append(result.Created, path)
	return nil
}

// renderTemplate renders a starter file with text/template.
func renderTemplate(name, content string, data interface{}) ([]byte, error) {
	tmpl, err := template.New(name).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
