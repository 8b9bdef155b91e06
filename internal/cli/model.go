package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/mlmodel"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect the classifier model",
}

var (
	modelInfoPath string
	modelInfoJSON bool
)

var modelInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print model metadata",
	Long: `Load the classifier model file, validate its structure, and print its
name, version, feature order and tree count. A model that fails
validation is reported with the reason.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := modelInfoPath
		if path == "" {
			path = activeConfig().ModelPath
		}

		m, err := mlmodel.LoadModel(path)
		if err != nil {
			return err
		}

		if modelInfoJSON {
			out := struct {
				Name     string   `json:"name"`
				Version  string   `json:"version"`
				Features []string `json:"features"`
				Classes  []int    `json:"classes"`
				Trees    int      `json:"trees"`
			}{m.Name, m.Version, m.Features, m.Classes, len(m.Trees)}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling model info: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Model %s\n", m.Name)
		fmt.Printf("  Version:  %s\n", m.Version)
		fmt.Printf("  Trees:    %d\n", len(m.Trees))
		fmt.Printf("  Classes:  %v\n", m.Classes)
		fmt.Printf("  Features: %s\n", strings.Join(m.Features, ", "))
		fmt.Printf("  File:     %s\n", path)
		return nil
	},
}

func init() {
	modelInfoCmd.Flags().StringVar(&modelInfoPath, "model", "", "Classifier model file (default from vhip.yaml)")
	modelInfoCmd.Flags().BoolVar(&modelInfoJSON, "json", false, "Output as JSON")
	modelCmd.AddCommand(modelInfoCmd)
	rootCmd.AddCommand(modelCmd)
}
