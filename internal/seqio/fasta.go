// Package seqio reads FASTA-formatted nucleotide files.
//
// Genome files may hold one or many contigs; gene files (Bakta-style .ffn)
// hold one record per annotated gene with the product in the description.
package seqio

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNoRecords is returned when a FASTA file holds no sequence records.
var ErrNoRecords = errors.New("no fasta records")

// Record is a single FASTA entry.
type Record struct {
	ID          string // first whitespace-delimited token of the header
	Description string // remainder of the header line
	Seq         string // sequence with line breaks removed, case preserved
}

// ReadRecords parses every record in a FASTA file.
func ReadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fasta: %w", err)
	}

	var (
		records []Record
		cur     *Record
		seq     strings.Builder
	)
	flush := func() {
		if cur != nil {
			cur.Seq = seq.String()
			records = append(records, *cur)
			seq.Reset()
		}
	}

	for lineNo, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, ">"):
			flush()
			id, desc, _ := strings.Cut(strings.TrimSpace(line[1:]), " ")
			cur = &Record{ID: id, Description: strings.TrimSpace(desc)}
		case strings.HasPrefix(line, ";"):
			// Legacy comment line, ignored.
			continue
		default:
			if cur == nil {
				return nil, fmt.Errorf("%s:%d: sequence data before first header", path, lineNo+1)
			}
			seq.WriteString(strings.TrimSpace(line))
		}
	}
	flush()

	if len(records) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoRecords)
	}
	return records, nil
}

// ReadGenome returns the full nucleotide sequence of a genome file in upper
// case. Multi-contig assemblies contribute every contig, concatenated in
// file order.
func ReadGenome(path string) (string, error) {
	records, err := ReadRecords(path)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, rec := range records {
		b.WriteString(strings.ToUpper(rec.Seq))
	}
	return b.String(), nil
}

// ReadHeaders returns the record IDs of a FASTA file in file order.
func ReadHeaders(path string) ([]string, error) {
	records, err := ReadRecords(path)
	if err != nil {
		return nil, err
	}
	headers := make([]string, len(records))
	for i, rec := range records {
		headers[i] = rec.ID
	}
	return headers, nil
}
