package seqio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFasta(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestReadRecords(t *testing.T) {
	path := writeFasta(t, "two.fasta", ">MG592522.1 Marine virus isolate\nATGC\nGGTT\n\n>contig_2\nacgt\n")

	records, err := ReadRecords(path)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ID != "MG592522.1" {
		t.Errorf("ID = %q, want MG592522.1", records[0].ID)
	}
	if records[0].Description != "Marine virus isolate" {
		t.Errorf("Description = %q, want %q", records[0].Description, "Marine virus isolate")
	}
	if records[0].Seq != "ATGCGGTT" {
		t.Errorf("Seq = %q, want ATGCGGTT (line breaks removed)", records[0].Seq)
	}
	if records[1].ID != "contig_2" || records[1].Seq != "acgt" {
		t.Errorf("second record = %+v, want contig_2/acgt with case preserved", records[1])
	}
}

func TestReadRecordsCRLF(t *testing.T) {
	path := writeFasta(t, "crlf.fasta", ">seq1 desc\r\nATGC\r\nTTAA\r\n")

	records, err := ReadRecords(path)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if records[0].Seq != "ATGCTTAA" {
		t.Errorf("Seq = %q, want ATGCTTAA", records[0].Seq)
	}
}

func TestReadRecordsErrors(t *testing.T) {
	if _, err := ReadRecords(filepath.Join(t.TempDir(), "missing.fasta")); err == nil {
		t.Error("expected error for missing file")
	}

	empty := writeFasta(t, "empty.fasta", "")
	if _, err := ReadRecords(empty); !errors.Is(err, ErrNoRecords) {
		t.Errorf("empty file: got %v, want ErrNoRecords", err)
	}

	headerless := writeFasta(t, "headerless.fasta", "ATGC\n")
	if _, err := ReadRecords(headerless); err == nil {
		t.Error("expected error for sequence data before first header")
	}
}

func TestReadGenomeConcatenatesContigs(t *testing.T) {
	path := writeFasta(t, "genome.fasta", ">c1\natg\n>c2\nGGCC\n")

	seq, err := ReadGenome(path)
	if err != nil {
		t.Fatalf("ReadGenome: %v", err)
	}
	if seq != "ATGGGCC" {
		t.Errorf("ReadGenome = %q, want ATGGGCC (all contigs, upper case)", seq)
	}
}

func TestReadHeaders(t *testing.T) {
	path := writeFasta(t, "h.fasta", ">a one\nAA\n>b two\nCC\n>c\nGG\n")

	headers, err := ReadHeaders(path)
	if err != nil {
		t.Fatalf("ReadHeaders: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(headers) != len(want) {
		t.Fatalf("got %d headers, want %d", len(headers), len(want))
	}
	for i := range want {
		if headers[i] != want[i] {
			t.Errorf("headers[%d] = %q, want %q", i, headers[i], want[i])
		}
	}
}
