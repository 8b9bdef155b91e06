package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/core"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/genes"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/pkg/models"
)

// Computer enumerates virus-host pairs and computes their features.
// Set during application wiring.
var Computer core.FeatureComputer

// Reports writes the feature, prediction and QC report files.
// Set during application wiring.
var Reports core.ReportWriter

// inputFlags binds the pipeline input flags shared by the features and
// predict commands.
type inputFlags struct {
	viruses    string
	hosts      string
	virusGenes string
	hostGenes  string
	pairsFile  string
	blastn     string
	spacers    string
	genomeExt  string
	geneExt    string
	workers    int
}

func (f *inputFlags) addTo(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.viruses, "viruses", "", "Directory of virus genome files (required)")
	cmd.Flags().StringVar(&f.hosts, "hosts", "", "Directory of host genome files (required)")
	cmd.Flags().StringVar(&f.virusGenes, "virus-genes", "", "Directory of virus gene files (enables gene-level features)")
	cmd.Flags().StringVar(&f.hostGenes, "host-genes", "", "Directory of host gene files (enables gene-level features)")
	cmd.Flags().StringVar(&f.pairsFile, "pairs", "", "CSV of virus,host filenames restricting which pairs are scored")
	cmd.Flags().StringVar(&f.blastn, "blastn", "", "Tabular blastn output feeding the homology signal")
	cmd.Flags().StringVar(&f.spacers, "spacers", "", "Tabular spacer blastn output feeding the homology signal")
	cmd.Flags().StringVar(&f.genomeExt, "genome-ext", "", "Genome filename extension (default from vhip.yaml)")
	cmd.Flags().StringVar(&f.geneExt, "gene-ext", "", "Gene filename extension (default from vhip.yaml)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Parallel pair computations (default from vhip.yaml)")
}

func (f *inputFlags) validate() error {
	if f.viruses == "" || f.hosts == "" {
		return fmt.Errorf("virus and host genome directories are required (--viruses, --hosts)")
	}
	return nil
}

// options assembles pipeline options from the flags, filling unset values
// from the loaded configuration.
func (f *inputFlags) options() core.PipelineOptions {
	cfg := activeConfig()

	genomeExt := f.genomeExt
	if genomeExt == "" {
		genomeExt = cfg.GenomeExt
	}
	geneExt := f.geneExt
	if geneExt == "" {
		geneExt = cfg.GeneExt
	}
	workers := f.workers
	if workers == 0 {
		workers = cfg.Workers
	}

	return core.PipelineOptions{
		VirusGenomeDir: f.viruses,
		HostGenomeDir:  f.hosts,
		VirusGeneDir:   f.virusGenes,
		HostGeneDir:    f.hostGenes,
		GenomeExt:      genomeExt,
		GeneExt:        geneExt,
		PairsFile:      f.pairsFile,
		BlastnFile:     f.blastn,
		SpacerFile:     f.spacers,
		Workers:        workers,
		Thresholds: genes.Thresholds{
			Imprecise:    cfg.Thresholds.Imprecise,
			SkippedGenes: cfg.Thresholds.SkippedGenes,
		},
		SkippedGeneWarn: cfg.QC.SkippedGeneWarn,
	}
}

var (
	featuresInput inputFlags
	featuresOut   string
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Compute interaction features without classifying",
	Long: `Compute the genome-level interaction features (GC difference, k-mer
distances, homology) for every virus-host pair and write them as a TSV
table. When gene directories are given, the gene-level codon and amino
acid metrics are appended as extra columns.

Use this to inspect or export features without running the classifier.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Computer == nil {
			return fmt.Errorf("feature computer not initialized")
		}
		if Reports == nil {
			return fmt.Errorf("report writer not initialized")
		}
		if err := featuresInput.validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		opts := featuresInput.options()
		set, err := Computer.ComputeFeatures(ctx, opts)
		if err != nil {
			return fmt.Errorf("computing features: %w", err)
		}

		extended := opts.VirusGeneDir != "" && opts.HostGeneDir != ""
		if err := Reports.WriteFeatureTable(featuresOut, set.Pairs, extended); err != nil {
			return fmt.Errorf("writing feature table: %w", err)
		}

		fmt.Printf("Wrote %d pair(s) to %s\n", len(set.Pairs), featuresOut)
		printFindings(set.Findings)
		return nil
	},
}

// printFindings lists QC findings beneath a command's summary output.
func printFindings(findings []models.QCFinding) {
	if len(findings) == 0 {
		return
	}
	fmt.Printf("\n%d QC finding(s):\n", len(findings))
	for _, f := range findings {
		fmt.Printf("  [%s] %s: %s\n", f.Severity, f.Subject, f.Message)
	}
}

func init() {
	featuresInput.addTo(featuresCmd)
	featuresCmd.Flags().StringVar(&featuresOut, "out", "features.tsv", "Output path for the feature table")
	rootCmd.AddCommand(featuresCmd)
}
