package integration

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/log"
)

// BlastConfig holds all parameters needed to search virus genomes against
// a host sequence database.
type BlastConfig struct {
	QueryFasta string   // virus sequences used as the query
	DBFasta    string   // host sequences the database is built from
	OutputPath string   // destination of the 12-column tabular hit report
	DBDir      string   // where makeblastdb writes; defaults to a blastdb dir next to OutputPath
	ExtraArgs  []string // additional blastn arguments appended verbatim
}

// ToolResult captures the outcome of one external tool invocation.
type ToolResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// BlastResult reports where the database and hit table were written.
type BlastResult struct {
	DBPath     string
	OutputPath string
	Hits       int
}

// BlastRunner wraps the NCBI BLAST+ command line tools.
type BlastRunner interface {
	// MakeDB builds a nucleotide database from a FASTA file and returns
	// the database path prefix.
	MakeDB(ctx context.Context, fasta, outDir string) (string, error)
	// Blastn searches query sequences against a database, writing
	// tabular output (-outfmt 6) to outputPath.
	Blastn(ctx context.Context, query, db, outputPath string, extraArgs ...string) error
	// Run builds the database and runs the search in one step.
	Run(ctx context.Context, config BlastConfig) (*BlastResult, error)
}

// blastRunner implements BlastRunner.
type blastRunner struct {
	logger zerolog.Logger
	stderr io.Writer
}

// NewBlastRunner creates a new BlastRunner. Tool diagnostics go to the
// given writer when non-nil, in addition to the captured result.
func NewBlastRunner(stderr io.Writer) BlastRunner {
	return &blastRunner{
		logger: log.WithComponent("blast"),
		stderr: stderr,
	}
}

// runTool executes one external tool, capturing stdout and stderr. A
// non-zero exit is reported through the result, not as an error; an error
// means the tool could not be started at all.
func (r *blastRunner) runTool(ctx context.Context, name string, args ...string) (*ToolResult, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("%s not found in PATH (install NCBI BLAST+): %w", name, err)
	}

	r.logger.Debug().Str("tool", name).Strs("args", args).Msg("running external tool")

	cmd := exec.CommandContext(ctx, name, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	if r.stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderrBuf, r.stderr)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()

	result := &ToolResult{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			return result, fmt.Errorf("executing %s: %w", name, err)
		}
	}

	if result.ExitCode != 0 {
		r.logger.Error().
			Str("tool", name).
			Int("exit_code", result.ExitCode).
			Str("stderr", strings.TrimSpace(result.Stderr)).
			Msg("external tool failed")
	}

	return result, nil
}

// MakeDB builds a nucleotide BLAST database from the given FASTA file.
func (r *blastRunner) MakeDB(ctx context.Context, fasta, outDir string) (string, error) {
	if _, err := os.Stat(fasta); err != nil {
		return "", fmt.Errorf("database input %s: %w", fasta, err)
	}
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return "", fmt.Errorf("creating database directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(fasta), filepath.Ext(fasta))
	dbPath := filepath.Join(outDir, base)

	result, err := r.runTool(ctx, "makeblastdb",
		"-in", fasta,
		"-dbtype", "nucl",
		"-out", dbPath,
	)
	if err != nil {
		return "", err
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("makeblastdb exited with code %d: %s", result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	return dbPath, nil
}

// Blastn searches the query FASTA against an existing database.
func (r *blastRunner) Blastn(ctx context.Context, query, db, outputPath string, extraArgs ...string) error {
	if _, err := os.Stat(query); err != nil {
		return fmt.Errorf("query input %s: %w", query, err)
	}

	args := []string{
		"-query", query,
		"-db", db,
		"-outfmt", "6",
		"-out", outputPath,
	}
	args = append(args, extraArgs...)

	result, err := r.runTool(ctx, "blastn", args...)
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("blastn exited with code %d: %s", result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	return nil
}

// Run builds a database from the host sequences, searches the virus
// sequences against it, and counts the hits written.
func (r *blastRunner) Run(ctx context.Context, config BlastConfig) (*BlastResult, error) {
	if config.QueryFasta == "" || config.DBFasta == "" || config.OutputPath == "" {
		return nil, fmt.Errorf("query, database and output paths are all required")
	}

	dbDir := config.DBDir
	if dbDir == "" {
		dbDir = filepath.Join(filepath.Dir(config.OutputPath), "blastdb")
	}

	dbPath, err := r.MakeDB(ctx, config.DBFasta, dbDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(config.OutputPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	if err := r.Blastn(ctx, config.QueryFasta, dbPath, config.OutputPath, config.ExtraArgs...); err != nil {
		return nil, err
	}

	hits, err := countLines(config.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("counting hits: %w", err)
	}

	r.logger.Info().
		Str("query", config.QueryFasta).
		Str("db", dbPath).
		Int("hits", hits).
		Msg("homology search completed")

	return &BlastResult{
		DBPath:     dbPath,
		OutputPath: config.OutputPath,
		Hits:       hits,
	}, nil
}

// countLines counts the non-empty lines of a file.
func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if len(bytes.TrimSpace(scanner.Bytes())) > 0 {
			count++
		}
	}
	return count, scanner.Err()
}
