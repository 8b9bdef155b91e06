package genes

import (
	"fmt"
	"strings"
)

// CodonLength is the number of bases per codon.
const CodonLength = 3

// Gene is a single annotated gene sequence.
type Gene struct {
	Seq     string
	ID      string
	Product string
}

// NewGene validates and normalises a gene sequence. The length must be a
// multiple of CodonLength; anything else cannot be framed into codons.
func NewGene(seq, id, product string) (*Gene, error) {
	if len(seq)%CodonLength != 0 {
		return nil, fmt.Errorf("gene %s: %w (length %d)", id, ErrGeneLength, len(seq))
	}
	return &Gene{Seq: strings.ToUpper(seq), ID: id, Product: product}, nil
}

// NumCodons returns the number of codon frames in the gene.
func (g *Gene) NumCodons() int {
	return len(g.Seq) / CodonLength
}

// CodonCounts tallies every codon frame of the gene over the full table
// domain. Frames not present in the table (ambiguous bases) are counted as
// imprecise instead.
func (g *Gene) CodonCounts() (counts map[string]int, imprecise int) {
	counts = make(map[string]int, len(CodonList))
	for _, codon := range CodonList {
		counts[codon] = 0
	}
	for i := 0; i+CodonLength <= len(g.Seq); i += CodonLength {
		codon := g.Seq[i : i+CodonLength]
		if _, ok := counts[codon]; ok {
			counts[codon]++
		} else {
			imprecise++
		}
	}
	return counts, imprecise
}

// ImpreciseFraction returns the fraction of codon frames that are not in
// the codon table. Empty genes have no frames and report zero.
func (g *Gene) ImpreciseFraction() float64 {
	n := g.NumCodons()
	if n == 0 {
		return 0
	}
	_, imprecise := g.CodonCounts()
	return float64(imprecise) / float64(n)
}

// AminoAcidCounts tallies the amino acids encoded by the gene's codons over
// the full amino-acid domain. Stop codons do not contribute.
func (g *Gene) AminoAcidCounts() map[string]int {
	aa := make(map[string]int, len(AminoAcidList))
	for _, code := range AminoAcidList {
		aa[code] = 0
	}
	counts, _ := g.CodonCounts()
	for codon, n := range counts {
		if n != 0 && !isStopCodon(codon) {
			aa[CodonTable[codon]] += n
		}
	}
	return aa
}

// PositionalGC returns the GC content at codon positions 1, 2 and 3,
// expressed as G+C bases per codon.
func (g *Gene) PositionalGC() (gc1, gc2, gc3 float64) {
	n := g.NumCodons()
	if n == 0 {
		return 0, 0, 0
	}
	var c1, c2, c3 int
	for i := 0; i+CodonLength <= len(g.Seq); i += CodonLength {
		for j := 0; j < CodonLength; j++ {
			switch base := g.Seq[i+j]; base {
			case 'G', 'C':
				switch j {
				case 0:
					c1++
				case 1:
					c2++
				case 2:
					c3++
				}
			}
		}
	}
	return float64(c1) / float64(n), float64(c2) / float64(n), float64(c3) / float64(n)
}
