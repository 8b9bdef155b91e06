package integration

import (
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// BlastVersion represents a semantic version of the NCBI BLAST+ suite.
type BlastVersion struct {
	Major int
	Minor int
	Patch int
}

// String returns the version in semver format (e.g., "2.14.1").
func (v BlastVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1 if v < other, 0 if v == other, 1 if v > other.
func (v BlastVersion) Compare(other BlastVersion) int {
	if v.Major != other.Major {
		if v.Major < other.Major {
			return -1
		}
		return 1
	}
	if v.Minor != other.Minor {
		if v.Minor < other.Minor {
			return -1
		}
		return 1
	}
	if v.Patch != other.Patch {
		if v.Patch < other.Patch {
			return -1
		}
		return 1
	}
	return 0
}

// MinBlastVersion is the oldest BLAST+ release the pipeline is tested
// against.
var MinBlastVersion = BlastVersion{Major: 2, Minor: 10, Patch: 0}

// BlastVersionChecker defines operations for detecting and validating the
// installed BLAST+ version.
type BlastVersionChecker interface {
	// DetectVersion runs `blastn -version` and parses the output.
	DetectVersion() (*BlastVersion, error)
	// CheckMinimumVersion returns an error if the detected version is less than the required minimum.
	CheckMinimumVersion(min BlastVersion) error
}

// blastVersionChecker implements BlastVersionChecker.
type blastVersionChecker struct {
	// versionParser is injected for testability. If nil, uses parseBlastVersion.
	versionParser func(string) (*BlastVersion, error)
	// commandRunner is injected for testability. If nil, uses runBlastnVersion.
	commandRunner func() (string, error)
	// cachedVersion stores the detected version to avoid repeated exec calls.
	cachedVersion *BlastVersion
}

// NewBlastVersionChecker creates a new BlastVersionChecker.
func NewBlastVersionChecker() BlastVersionChecker {
	return &blastVersionChecker{
		versionParser: parseBlastVersion,
		commandRunner: runBlastnVersion,
	}
}

// NewBlastVersionCheckerWithParser creates a version checker with a custom
// version parser and command runner for testing.
func NewBlastVersionCheckerWithParser(
	parser func(string) (*BlastVersion, error),
	runner func() (string, error),
) BlastVersionChecker {
	return &blastVersionChecker{
		versionParser: parser,
		commandRunner: runner,
	}
}

// runBlastnVersion executes `blastn -version` and returns the output.
func runBlastnVersion() (string, error) {
	cmd := exec.Command("blastn", "-version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("running blastn -version: %w", err)
	}
	return string(output), nil
}

// parseBlastVersion extracts the version from `blastn -version` output,
// which looks like "blastn: 2.14.1+\n Package: blast 2.14.1, build ...".
func parseBlastVersion(s string) (*BlastVersion, error) {
	re := regexp.MustCompile(`blastn:\s*(\d+)\.(\d+)\.(\d+)`)
	matches := re.FindStringSubmatch(s)
	if matches == nil {
		// Fall back to a bare semver anywhere in the output.
		re = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)
		matches = re.FindStringSubmatch(s)
	}
	if matches == nil {
		return nil, fmt.Errorf("no version found in blastn output %q", strings.TrimSpace(s))
	}

	major, _ := strconv.Atoi(matches[1])
	minor, _ := strconv.Atoi(matches[2])
	patch, _ := strconv.Atoi(matches[3])

	return &BlastVersion{
		Major: major,
		Minor: minor,
		Patch: patch,
	}, nil
}

// DetectVersion runs `blastn -version` and parses the output.
func (c *blastVersionChecker) DetectVersion() (*BlastVersion, error) {
	if c.cachedVersion != nil {
		return c.cachedVersion, nil
	}

	output, err := c.commandRunner()
	if err != nil {
		return nil, fmt.Errorf("detecting BLAST+ version: %w", err)
	}

	version, err := c.versionParser(output)
	if err != nil {
		return nil, fmt.Errorf("parsing version output %q: %w", output, err)
	}

	c.cachedVersion = version
	return version, nil
}

// CheckMinimumVersion returns an error if the detected version is less
// than the required minimum.
func (c *blastVersionChecker) CheckMinimumVersion(min BlastVersion) error {
	detected, err := c.DetectVersion()
	if err != nil {
		return err
	}

	if detected.Compare(min) < 0 {
		return fmt.Errorf("BLAST+ version %s is less than required minimum %s", detected, min)
	}

	return nil
}
