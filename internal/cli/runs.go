package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/core"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/observability"
)

// Runs is the run history store used by the runs commands.
// Set during application wiring; nil when storage is disabled.
var Runs core.RunStore

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded prediction runs",
	Long: `Inspect the run history: every prediction run is recorded with its
status, model, pair counts and output location, and keeps its per-pair
predictions for later inspection.`,
}

var (
	runsListLimit int
	runsListJSON  bool
)

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent prediction runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Runs == nil {
			return fmt.Errorf("run store not initialized (storage may be disabled)")
		}

		runs, err := Runs.ListRuns(context.Background(), runsListLimit)
		if err != nil {
			return fmt.Errorf("listing runs: %w", err)
		}

		if runsListJSON {
			data, err := json.MarshalIndent(runs, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling runs: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		fmt.Printf("%-10s %-10s %-6s %-9s %-10s %s\n", "ID", "STATUS", "PAIRS", "POSITIVE", "DURATION", "STARTED")
		for _, r := range runs {
			fmt.Printf("%-10s %-10s %-6d %-9d %-10s %s\n",
				r.ID, r.Status, r.Pairs, r.Positive,
				r.Duration().Round(time.Second),
				r.Started.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var (
	runsShowJSON   bool
	runsShowEvents bool
)

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run with its predictions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Runs == nil {
			return fmt.Errorf("run store not initialized (storage may be disabled)")
		}

		ctx := context.Background()
		run, err := Runs.GetRun(ctx, args[0])
		if err != nil {
			return fmt.Errorf("loading run: %w", err)
		}
		predictions, err := Runs.Predictions(ctx, run.ID)
		if err != nil {
			return fmt.Errorf("loading predictions: %w", err)
		}

		var events []observability.Event
		if runsShowEvents {
			if EventLog == nil {
				return fmt.Errorf("event log not initialized (observability may be disabled)")
			}
			events, err = EventLog.Read(observability.EventFilter{RunID: run.ID})
			if err != nil {
				return fmt.Errorf("loading events: %w", err)
			}
		}

		if runsShowJSON {
			out := struct {
				Run         any                   `json:"run"`
				Predictions any                   `json:"predictions"`
				Events      []observability.Event `json:"events,omitempty"`
			}{run, predictions, events}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling run: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Run %s\n", run.ID)
		fmt.Printf("  Status:   %s\n", run.Status)
		fmt.Printf("  Model:    %s %s\n", run.ModelName, run.ModelVersion)
		fmt.Printf("  Viruses:  %s\n", run.VirusDir)
		fmt.Printf("  Hosts:    %s\n", run.HostDir)
		fmt.Printf("  Pairs:    %d scored, %d predicted to infect\n", run.Pairs, run.Positive)
		if run.OutputPath != "" {
			fmt.Printf("  Output:   %s\n", run.OutputPath)
		}
		if run.Error != "" {
			fmt.Printf("  Error:    %s\n", run.Error)
		}
		fmt.Printf("  Started:  %s\n", run.Started.Format(time.RFC3339))
		if !run.Finished.IsZero() {
			fmt.Printf("  Finished: %s (%s)\n", run.Finished.Format(time.RFC3339), run.Duration().Round(time.Second))
		}

		if len(predictions) > 0 {
			fmt.Printf("\n  %-30s %-30s %-6s %s\n", "VIRUS", "HOST", "CLASS", "SCORE")
			for _, p := range predictions {
				fmt.Printf("  %-30s %-30s %-6d %.4f\n", p.Virus, p.Host, p.Class, p.Score)
			}
		}

		if runsShowEvents {
			fmt.Printf("\n  %-20s %-5s %-20s %s\n", "TIME", "LEVEL", "TYPE", "MESSAGE")
			for _, e := range events {
				fmt.Printf("  %-20s %-5s %-20s %s\n",
					e.Time.Format("2006-01-02 15:04:05"), e.Level, e.Type, e.Message)
			}
			if len(events) == 0 {
				fmt.Println("  No events recorded for this run.")
			}
		}
		return nil
	},
}

func init() {
	runsListCmd.Flags().IntVar(&runsListLimit, "limit", 20, "Maximum number of runs to list")
	runsListCmd.Flags().BoolVar(&runsListJSON, "json", false, "Output as JSON")
	runsShowCmd.Flags().BoolVar(&runsShowJSON, "json", false, "Output as JSON")
	runsShowCmd.Flags().BoolVar(&runsShowEvents, "events", false, "Include the run's event trail")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
