package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/core"
)

// Runner executes prediction runs end to end.
// Set during application wiring.
var Runner core.Predictor

var (
	predictInput  inputFlags
	predictModel  string
	predictOutput string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict which hosts each virus infects",
	Long: `Run the full prediction pipeline: enumerate virus-host pairs, compute
their interaction features, score every pair with the gradient-boosted
classifier, and write the feature table, prediction table and QC report
to the output directory.

Each run gets a unique RUN-XXXXX identifier and is recorded in the run
history, inspectable later with 'vhip runs'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Runner == nil {
			return fmt.Errorf("predictor not initialized")
		}
		if err := predictInput.validate(); err != nil {
			return err
		}

		cfg := activeConfig()
		modelPath := predictModel
		if modelPath == "" {
			modelPath = cfg.ModelPath
		}
		outputDir := predictOutput
		if outputDir == "" {
			outputDir = cfg.OutputDir
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		res, err := Runner.PredictInteractions(ctx, core.PredictOptions{
			Pipeline:  predictInput.options(),
			ModelPath: modelPath,
			OutputDir: outputDir,
		})
		if err != nil {
			return fmt.Errorf("running prediction: %w", err)
		}

		fmt.Printf("Run %s completed in %s\n", res.Run.ID, res.Run.Duration().Round(time.Millisecond))
		fmt.Printf("  Model:       %s %s\n", res.Run.ModelName, res.Run.ModelVersion)
		fmt.Printf("  Pairs:       %d scored, %d predicted to infect\n", res.Run.Pairs, res.Run.Positive)
		fmt.Printf("  Features:    %s\n", res.FeaturesPath)
		fmt.Printf("  Predictions: %s\n", res.PredictionsPath)
		fmt.Printf("  QC report:   %s\n", res.ReportPath)
		printFindings(res.Report.Findings)
		return nil
	},
}

func init() {
	predictInput.addTo(predictCmd)
	predictCmd.Flags().StringVar(&predictModel, "model", "", "Classifier model file (default from vhip.yaml)")
	predictCmd.Flags().StringVar(&predictOutput, "output", "", "Output directory for run tables (default from vhip.yaml)")
	rootCmd.AddCommand(predictCmd)
}
