package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/integration"
)

var (
	blastnQuery   string
	blastnDB      string
	blastnOut     string
	blastnDBDir   string
	blastnEvalue  string
	blastnThreads int
)

// blastnCheckVersion and blastnSearch are indirections over the BLAST+
// tooling so tests can run without the binaries installed.
var (
	blastnCheckVersion = func() error {
		return integration.NewBlastVersionChecker().CheckMinimumVersion(integration.MinBlastVersion)
	}
	blastnSearch = func(ctx context.Context, cfg integration.BlastConfig) (*integration.BlastResult, error) {
		return integration.NewBlastRunner(os.Stderr).Run(ctx, cfg)
	}
)

var blastnCmd = &cobra.Command{
	Use:   "blastn",
	Short: "Run the homology search between virus and host genomes",
	Long: `Wrap NCBI BLAST+ to produce the tabular homology input the feature
pipeline consumes: build a nucleotide database from the host sequences,
search the virus sequences against it with tabular output, and report
the hit count.

Requires makeblastdb and blastn on PATH (BLAST+ 2.10 or newer). Feed the
resulting table to 'vhip predict --blastn' or 'vhip features --blastn'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if blastnQuery == "" || blastnDB == "" {
			return fmt.Errorf("query and database FASTA files are required (--query, --db)")
		}

		if err := blastnCheckVersion(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var extra []string
		if blastnEvalue != "" {
			extra = append(extra, "-evalue", blastnEvalue)
		}
		if blastnThreads > 0 {
			extra = append(extra, "-num_threads", strconv.Itoa(blastnThreads))
		}

		res, err := blastnSearch(ctx, integration.BlastConfig{
			QueryFasta: blastnQuery,
			DBFasta:    blastnDB,
			OutputPath: blastnOut,
			DBDir:      blastnDBDir,
			ExtraArgs:  extra,
		})
		if err != nil {
			return fmt.Errorf("running homology search: %w", err)
		}

		fmt.Printf("%d hit(s) written to %s\n", res.Hits, res.OutputPath)
		fmt.Printf("Database: %s\n", res.DBPath)
		return nil
	},
}

func init() {
	blastnCmd.Flags().StringVar(&blastnQuery, "query", "", "Virus FASTA used as the query (required)")
	blastnCmd.Flags().StringVar(&blastnDB, "db", "", "Host FASTA the database is built from (required)")
	blastnCmd.Flags().StringVar(&blastnOut, "out", "blastn.tsv", "Output path for the tabular hit report")
	blastnCmd.Flags().StringVar(&blastnDBDir, "db-dir", "", "Directory for the BLAST database (default: blastdb next to the output)")
	blastnCmd.Flags().StringVar(&blastnEvalue, "evalue", "", "Expectation value cutoff passed to blastn")
	blastnCmd.Flags().IntVar(&blastnThreads, "threads", 0, "Number of blastn threads")
	rootCmd.AddCommand(blastnCmd)
}
