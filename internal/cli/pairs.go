package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/core"
)

var (
	pairsViruses string
	pairsHosts   string
	pairsFile    string
	pairsExt     string
	pairsJSON    bool
)

var pairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "List the virus-host pairs a run would score",
	Long: `List the virus-host pairs a run over the given directories would score,
one tab-separated pair per line. Without --pairs this is the full
cartesian product of the genome files on both sides; with --pairs only
the listed combinations survive.

Useful for checking the pairing before committing to a long run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Computer == nil {
			return fmt.Errorf("feature computer not initialized")
		}
		if pairsViruses == "" || pairsHosts == "" {
			return fmt.Errorf("virus and host genome directories are required (--viruses, --hosts)")
		}

		ext := pairsExt
		if ext == "" {
			ext = activeConfig().GenomeExt
		}

		pairs, err := Computer.DeterminePairs(core.PipelineOptions{
			VirusGenomeDir: pairsViruses,
			HostGenomeDir:  pairsHosts,
			GenomeExt:      ext,
			PairsFile:      pairsFile,
		})
		if err != nil {
			return fmt.Errorf("determining pairs: %w", err)
		}

		if pairsJSON {
			data, err := json.MarshalIndent(pairs, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling pairs: %w", err)
			}
			fmt.Println(string(data))
			return nil
		}

		for _, p := range pairs {
			fmt.Printf("%s\t%s\n", p.Virus, p.Host)
		}
		return nil
	},
}

func init() {
	pairsCmd.Flags().StringVar(&pairsViruses, "viruses", "", "Directory of virus genome files (required)")
	pairsCmd.Flags().StringVar(&pairsHosts, "hosts", "", "Directory of host genome files (required)")
	pairsCmd.Flags().StringVar(&pairsFile, "pairs", "", "CSV of virus,host filenames restricting which pairs are listed")
	pairsCmd.Flags().StringVar(&pairsExt, "genome-ext", "", "Genome filename extension (default from vhip.yaml)")
	pairsCmd.Flags().BoolVar(&pairsJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(pairsCmd)
}
