package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// RunIDGenerator defines the interface for generating unique, sequential run IDs.
type RunIDGenerator interface {
	GenerateRunID() (string, error)
}

// fileRunIDGenerator implements RunIDGenerator by persisting a counter
// in a .run_counter file on disk.
type fileRunIDGenerator struct {
	basePath string
}

// NewRunIDGenerator creates a new RunIDGenerator that stores its counter
// in a .run_counter file within basePath.
func NewRunIDGenerator(basePath string) RunIDGenerator {
	return &fileRunIDGenerator{basePath: basePath}
}

// GenerateRunID reads the current counter from the .run_counter file,
// increments it, writes it back, and returns the formatted run ID.
// If the counter file does not exist, the counter starts from 1.
// Format: RUN-{counter:05d} (e.g., RUN-00001). The counter file is held
// under an exclusive lock so concurrent processes never hand out the
// same ID.
func (g *fileRunIDGenerator) GenerateRunID() (string, error) {
	if err := os.MkdirAll(g.basePath, 0o750); err != nil {
		return "", fmt.Errorf("creating base path for run counter: %w", err)
	}

	counterPath := filepath.Join(g.basePath, ".run_counter")

	unlock, err := lockFile(counterPath)
	if err != nil {
		return "", fmt.Errorf("locking run counter: %w", err)
	}
	defer func() { _ = unlock() }()

	counter := 0
	data, err := os.ReadFile(counterPath)
	if err != nil {
		return "", fmt.Errorf("reading run counter file: %w", err)
	}
	if trimmed := strings.TrimSpace(string(data)); trimmed != "" {
		counter, err = strconv.Atoi(trimmed)
		if err != nil {
			return "", fmt.Errorf("parsing run counter %q: %w", trimmed, err)
		}
	}

	counter++

	if err := os.WriteFile(counterPath, []byte(strconv.Itoa(counter)), 0o600); err != nil {
		return "", fmt.Errorf("writing run counter file: %w", err)
	}

	return fmt.Sprintf("RUN-%05d", counter), nil
}
