// Package blast reads NCBI BLAST tabular output and condenses alignments
// into genome-level hit maps for the homology feature.
package blast

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/log"
)

// Alignment is one line of tabular BLAST output (-outfmt 6, 12 columns).
type Alignment struct {
	QueryID         string
	SubjectID       string
	PercentIdentity float64
	Length          int
	Mismatches      int
	GapOpens        int
	QueryStart      int
	QueryEnd        int
	SubjectStart    int
	SubjectEnd      int
	EValue          float64
	BitScore        float64
}

const outfmt6Columns = 12

// ReadAlignments parses a tabular BLAST output file. Blank lines and
// comment lines are ignored; anything else must carry the 12 standard
// columns.
func ReadAlignments(path string) ([]Alignment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read blast output: %w", err)
	}
	defer f.Close()

	var alignments []Alignment
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		aln, err := parseAlignment(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		alignments = append(alignments, aln)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read blast output: %w", err)
	}
	return alignments, nil
}

func parseAlignment(line string) (Alignment, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != outfmt6Columns {
		return Alignment{}, fmt.Errorf("expected %d tab-separated columns, got %d", outfmt6Columns, len(fields))
	}

	var (
		aln  Alignment
		err  error
		ints = []struct {
			dst *int
			idx int
		}{
			{&aln.Length, 3}, {&aln.Mismatches, 4}, {&aln.GapOpens, 5},
			{&aln.QueryStart, 6}, {&aln.QueryEnd, 7},
			{&aln.SubjectStart, 8}, {&aln.SubjectEnd, 9},
		}
	)
	aln.QueryID = fields[0]
	aln.SubjectID = fields[1]
	if aln.PercentIdentity, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return Alignment{}, fmt.Errorf("pident %q: %w", fields[2], err)
	}
	for _, col := range ints {
		if *col.dst, err = strconv.Atoi(fields[col.idx]); err != nil {
			return Alignment{}, fmt.Errorf("column %d %q: %w", col.idx+1, fields[col.idx], err)
		}
	}
	if aln.EValue, err = strconv.ParseFloat(fields[10], 64); err != nil {
		return Alignment{}, fmt.Errorf("evalue %q: %w", fields[10], err)
	}
	if aln.BitScore, err = strconv.ParseFloat(fields[11], 64); err != nil {
		return Alignment{}, fmt.Errorf("bitscore %q: %w", fields[11], err)
	}
	return aln, nil
}

// HitMap maps each query's genome file to the genome files its alignments
// hit, through the contig header index. One entry is appended per
// alignment, so repeated hits stay repeated. Alignments naming contigs
// absent from the index are skipped with a warning; the distinct unknown
// contig IDs are returned in first-seen order.
func HitMap(alignments []Alignment, headers map[string]string) (map[string][]string, []string) {
	logger := log.WithComponent("blast")
	hits := make(map[string][]string)
	var unknown []string
	seen := make(map[string]bool)
	skip := func(contig, role string) {
		logger.Warn().
			Str("event", "blast.unknown_contig").
			Str("contig", contig).
			Msg("skipping alignment with unknown " + role + " contig")
		if !seen[contig] {
			seen[contig] = true
			unknown = append(unknown, contig)
		}
	}
	for _, aln := range alignments {
		queryFile, ok := headers[aln.QueryID]
		if !ok {
			skip(aln.QueryID, "query")
			continue
		}
		subjectFile, ok := headers[aln.SubjectID]
		if !ok {
			skip(aln.SubjectID, "subject")
			continue
		}
		hits[queryFile] = append(hits[queryFile], subjectFile)
	}
	return hits, unknown
}

// HasHit reports whether the hit map records at least one alignment from
// the virus genome file to the host genome file.
func HasHit(hits map[string][]string, virusFile, hostFile string) bool {
	for _, hit := range hits[virusFile] {
		if hit == hostFile {
			return true
		}
	}
	return false
}
