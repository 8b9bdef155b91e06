package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestModel writes a minimal valid model file and returns its path.
func writeTestModel(t *testing.T) string {
	t.Helper()
	content := `{
  "name": "vhip_gbt",
  "version": "1.0",
  "features": ["GCdifference", "k3dist", "k6dist", "Homology_hit"],
  "classes": [0, 1],
  "init_raw_score": -0.3,
  "trees": [
    {
      "children_left": [1, -1, -1],
      "children_right": [2, -1, -1],
      "feature": [0, 0, 0],
      "threshold": [0.05, 0, 0],
      "value": [0, 0.4, -0.2]
    }
  ]
}`
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing model file: %v", err)
	}
	return path
}

func TestModelInfo_Success(t *testing.T) {
	origPath := modelInfoPath
	defer func() { modelInfoPath = origPath }()
	modelInfoPath = writeTestModel(t)

	err := modelInfoCmd.RunE(modelInfoCmd, []string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestModelInfo_JSON(t *testing.T) {
	origPath := modelInfoPath
	origJSON := modelInfoJSON
	defer func() {
		modelInfoPath = origPath
		modelInfoJSON = origJSON
	}()
	modelInfoPath = writeTestModel(t)
	modelInfoJSON = true

	err := modelInfoCmd.RunE(modelInfoCmd, []string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestModelInfo_MissingFile(t *testing.T) {
	origPath := modelInfoPath
	defer func() { modelInfoPath = origPath }()
	modelInfoPath = filepath.Join(t.TempDir(), "absent.json")

	err := modelInfoCmd.RunE(modelInfoCmd, []string{})
	if err == nil {
		t.Fatal("expected error for missing model file")
	}
	if !strings.Contains(err.Error(), "load model") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestModelInfo_InvalidModel(t *testing.T) {
	origPath := modelInfoPath
	defer func() { modelInfoPath = origPath }()

	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte(`{"name": "x"}`), 0o600); err != nil {
		t.Fatalf("writing model file: %v", err)
	}
	modelInfoPath = path

	err := modelInfoCmd.RunE(modelInfoCmd, []string{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "invalid model file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestModelInfo_ConfigFallbackPath(t *testing.T) {
	origPath := modelInfoPath
	origConfig := Config
	defer func() {
		modelInfoPath = origPath
		Config = origConfig
	}()

	cfg := *activeConfig()
	cfg.ModelPath = writeTestModel(t)
	Config = &cfg
	modelInfoPath = ""

	err := modelInfoCmd.RunE(modelInfoCmd, []string{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
