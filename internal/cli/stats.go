package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/observability"
)

var (
	statsJSON   bool
	statsSince  string
	statsNotify bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show run metrics and active alerts",
	Long: `Aggregate the event log into run metrics for the given time window and
evaluate alert conditions against it.

Alerts check for stalled runs, repeated failures, and elevated QC
warning counts. Use --notify to post triggered alerts to the configured
webhook.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (observability may be disabled)")
		}

		since, err := parseSinceDuration(statsSince)
		if err != nil {
			return err
		}

		metrics, err := MetricsCalc.Calculate(since)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		var alerts []observability.Alert
		if AlertEngine != nil {
			alerts, err = AlertEngine.Evaluate()
			if err != nil {
				return fmt.Errorf("evaluating alerts: %w", err)
			}
		}

		if statsJSON {
			out := struct {
				Metrics *observability.Metrics `json:"metrics"`
				Alerts  []observability.Alert  `json:"alerts"`
			}{metrics, alerts}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling stats: %w", err)
			}
			fmt.Println(string(data))
		} else {
			printMetrics(metrics, sinceLabel(statsSince))
			printAlerts(alerts)
		}

		if statsNotify && len(alerts) > 0 {
			if Notifier == nil {
				return fmt.Errorf("notifier not configured (set notify.webhook_url in vhip.yaml)")
			}
			if err := Notifier.Notify(alerts); err != nil {
				return fmt.Errorf("sending notifications: %w", err)
			}
			fmt.Printf("Sent %d alert(s) to the webhook.\n", len(alerts))
		}
		return nil
	},
}

func printMetrics(m *observability.Metrics, window string) {
	fmt.Printf("Metrics (since %s)\n\n", window)
	fmt.Printf("  %-24s %d\n", "Runs started", m.RunsStarted)
	fmt.Printf("  %-24s %d\n", "Runs completed", m.RunsCompleted)
	fmt.Printf("  %-24s %d\n", "Runs failed", m.RunsFailed)
	fmt.Printf("  %-24s %d\n", "Pairs scored", m.PairsScored)
	fmt.Printf("  %-24s %d\n", "Positive pairs", m.PositivePairs)
	fmt.Printf("  %-24s %d\n", "QC warnings", m.QCWarnings)
	fmt.Printf("  %-24s %d ms\n", "Avg run duration", m.AvgRunMillis)
	fmt.Printf("  %-24s %d\n", "Events", m.EventCount)

	if len(m.WarningsByCode) > 0 {
		codes := make([]string, 0, len(m.WarningsByCode))
		for code := range m.WarningsByCode {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		fmt.Println("\n  Warnings by code:")
		for _, code := range codes {
			fmt.Printf("    %-22s %d\n", code, m.WarningsByCode[code])
		}
	}
}

func printAlerts(alerts []observability.Alert) {
	fmt.Println()
	if len(alerts) == 0 {
		fmt.Println("No active alerts.")
		return
	}

	fmt.Printf("%d active alert(s):\n\n", len(alerts))
	for _, alert := range alerts {
		severity := strings.ToUpper(string(alert.Severity))
		fmt.Printf("  [%s] %s\n", severity, alert.Message)
		fmt.Printf("         triggered at %s\n\n", alert.TriggeredAt.Format("2006-01-02 15:04 UTC"))
	}
}

// sinceLabel renders the window for display, applying the default used by
// parseSinceDuration.
func sinceLabel(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "7d"
	}
	return s
}

// parseSinceDuration converts a window like "7d" or "24h" into the cutoff
// time. An empty string defaults to seven days.
func parseSinceDuration(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = "7d"
	}

	now := time.Now().UTC()
	switch {
	case strings.HasSuffix(s, "d"):
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day duration %q", s)
		}
		return now.AddDate(0, 0, -days), nil
	case strings.HasSuffix(s, "h"):
		hours, err := strconv.Atoi(strings.TrimSuffix(s, "h"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid hour duration %q", s)
		}
		return now.Add(-time.Duration(hours) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration format %q (use e.g. 7d, 30d, 24h)", s)
	}
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output as JSON")
	statsCmd.Flags().StringVar(&statsSince, "since", "7d", "Time window for metrics (e.g. 7d, 30d, 24h)")
	statsCmd.Flags().BoolVar(&statsNotify, "notify", false, "Post triggered alerts to the configured webhook")
	rootCmd.AddCommand(statsCmd)
}
