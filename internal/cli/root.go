package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/version"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(v, commit, date string) {
	appVersion = v
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "vhip",
	Short: "Predict virus-host interactions from genome signatures",
	Long: `VHIP predicts which bacterial hosts a phage can infect using genome
sequence signatures alone.

It computes GC content, k-mer profiles, codon usage and homology features
for every virus-host pair, scores the pairs with a gradient-boosted
classifier, and records each run with its feature table, prediction table
and quality-control report.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vhip %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

// versionVerifyCmd guards releases: the release workflow runs it against
// the pushed tag and aborts when the tag does not name this source tree.
var versionVerifyCmd = &cobra.Command{
	Use:   "verify <tag>",
	Short: "Verify that a release tag matches the compiled version",
	Long: `Verify that a release tag names exactly this source tree.

Tags must be of the form v<version> where <version> is the version
compiled into the binary. On mismatch the command exits non-zero with a
diagnostic, which release workflows use to refuse publishing a tag that
disagrees with the source.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := version.VerifyTag(args[0]); err != nil {
			return err
		}
		fmt.Printf("tag %s matches version %s\n", args[0], version.Version)
		return nil
	},
}

func init() {
	versionCmd.AddCommand(versionVerifyCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
