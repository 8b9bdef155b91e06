package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/core"
)

// ProjectInit is the ProjectInitializer used by the init command.
// Set during application wiring.
var ProjectInit core.ProjectInitializer

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a prediction workspace",
	Long: `Initialize a new or existing directory as a vhip workspace: genome and
gene directories, a models directory, the output directory, and a
starter vhip.yaml configuration.

Safe to run on existing projects -- files and directories that already
exist are skipped and not overwritten.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ProjectInit == nil {
			return fmt.Errorf("project initializer not initialized")
		}

		basePath := "."
		if len(args) > 0 {
			basePath = args[0]
		}
		absPath, err := filepath.Abs(basePath)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		name, _ := cmd.Flags().GetString("name")
		genomeExt, _ := cmd.Flags().GetString("genome-ext")
		geneExt, _ := cmd.Flags().GetString("gene-ext")

		if name == "" {
			name = filepath.Base(absPath)
		}

		result, err := ProjectInit.Init(core.InitConfig{
			BasePath:  absPath,
			Name:      name,
			GenomeExt: genomeExt,
			GeneExt:   geneExt,
		})
		if err != nil {
			return fmt.Errorf("initializing project: %w", err)
		}

		if len(result.Created) > 0 {
			fmt.Println("Created:")
			for _, p := range result.Created {
				rel, _ := filepath.Rel(absPath, p)
				fmt.Printf("  %s\n", rel)
			}
		}
		if len(result.Skipped) > 0 {
			fmt.Println("Skipped (already exist):")
			for _, p := range result.Skipped {
				rel, _ := filepath.Rel(absPath, p)
				fmt.Printf("  %s\n", rel)
			}
		}

		fmt.Printf("\nWorkspace %q initialized at %s\n", name, absPath)
		return nil
	},
}

func init() {
	initCmd.Flags().String("name", "", "Workspace name (defaults to directory basename)")
	initCmd.Flags().String("genome-ext", "fasta", "Genome filename extension")
	initCmd.Flags().String("gene-ext", "ffn", "Gene filename extension")
	rootCmd.AddCommand(initCmd)
}
