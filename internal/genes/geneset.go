package genes

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/log"
	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/seqio"
)

// Thresholds bound how much imprecision a gene set may carry before its
// aggregate statistics are considered unusable.
type Thresholds struct {
	// Imprecise is the fraction of imprecise codons tolerated in a single
	// gene before the gene is excluded from aggregation.
	Imprecise float64

	// SkippedGenes is the tolerated fraction of genes excluded for
	// imprecision; beyond it aggregation fails.
	SkippedGenes float64
}

// DefaultThresholds tolerates no imprecise codons per gene and up to half
// of the genes being excluded.
func DefaultThresholds() Thresholds {
	return Thresholds{Imprecise: 0.0, SkippedGenes: 0.5}
}

// GeneSet holds the annotated genes of one organism, usually read from a
// Bakta-style .ffn file.
type GeneSet struct {
	// ID identifies the source, normally the gene file path.
	ID string

	// Genes are the codon-framable genes of the file.
	Genes []*Gene

	// SkippedGenes records the IDs of genes whose length was not a
	// multiple of the codon length. A few percent is normal for
	// annotated virus and host genomes.
	SkippedGenes []string
}

// LoadGeneSet reads an annotated gene file into a GeneSet. Genes that
// cannot be framed into codons are skipped and recorded.
func LoadGeneSet(path string) (*GeneSet, error) {
	if path == "" {
		return nil, ErrEmptyGeneSet
	}
	records, err := seqio.ReadRecords(path)
	if err != nil {
		if errors.Is(err, seqio.ErrNoRecords) {
			return nil, fmt.Errorf("%s: %w", path, ErrEmptyGeneSet)
		}
		return nil, fmt.Errorf("load gene set: %w", err)
	}

	gs := &GeneSet{ID: path}
	for _, rec := range records {
		gene, err := NewGene(rec.Seq, rec.ID, rec.Description)
		if err != nil {
			gs.SkippedGenes = append(gs.SkippedGenes, rec.ID)
			continue
		}
		gs.Genes = append(gs.Genes, gene)
	}

	logger := log.WithComponent("genes")
	logger.Debug().
		Str("event", "geneset.loaded").
		Str("file", path).
		Int("genes", len(gs.Genes)).
		Int("skipped", len(gs.SkippedGenes)).
		Float64("skipped_percent", float64(len(gs.SkippedGenes))/float64(len(records))*100).
		Msg("gene set loaded")

	return gs, nil
}

// CodonUsage aggregates codon-level statistics across a gene set.
type CodonUsage struct {
	// Counts per codon over the full table domain.
	Counts map[string]int

	// Frequency of each codon out of all counted codons.
	Frequency map[string]float64

	// AminoCounts per amino acid, stops excluded.
	AminoCounts map[string]int

	// AminoFrequency of each amino acid out of all counted amino acids.
	AminoFrequency map[string]float64

	// RSCU is the relative synonymous codon usage: observed count over
	// the count expected were all synonymous codons used equally.
	// Codons never observed stay at zero.
	RSCU map[string]float64

	// ImpreciseCodons is the total number of imprecise codons seen,
	// including those of excluded genes.
	ImpreciseCodons int

	// SkippedImprecise records the IDs of genes excluded for exceeding
	// the per-gene imprecision threshold.
	SkippedImprecise []string
}

// CodonUsage computes aggregate codon counts, frequencies, amino-acid usage
// and RSCU for the gene set. Genes whose imprecise-codon fraction exceeds
// th.Imprecise are excluded; when the excluded fraction exceeds
// th.SkippedGenes the aggregation fails.
func (gs *GeneSet) CodonUsage(th Thresholds) (*CodonUsage, error) {
	if len(gs.Genes) == 0 {
		return nil, fmt.Errorf("%s: %w", gs.ID, ErrNoCodons)
	}

	usage := &CodonUsage{
		Counts:         make(map[string]int, len(CodonList)),
		Frequency:      make(map[string]float64, len(CodonList)),
		AminoCounts:    make(map[string]int, len(AminoAcidList)),
		AminoFrequency: make(map[string]float64, len(AminoAcidList)),
		RSCU:           make(map[string]float64, len(CodonList)),
	}
	for _, codon := range CodonList {
		usage.Counts[codon] = 0
		usage.RSCU[codon] = 0
	}
	for _, aa := range AminoAcidList {
		usage.AminoCounts[aa] = 0
	}

	for _, gene := range gs.Genes {
		counts, imprecise := gene.CodonCounts()
		usage.ImpreciseCodons += imprecise

		fraction := 0.0
		if n := gene.NumCodons(); n > 0 {
			fraction = float64(imprecise) / float64(n)
		}
		if fraction > th.Imprecise {
			usage.SkippedImprecise = append(usage.SkippedImprecise, gene.ID)
			continue
		}
		for codon, n := range counts {
			usage.Counts[codon] += n
		}
	}

	if frac := float64(len(usage.SkippedImprecise)) / float64(len(gs.Genes)); frac > th.SkippedGenes {
		return nil, fmt.Errorf("%s: %w: %d of %d genes exceed the imprecise threshold %g",
			gs.ID, ErrTooManySkipped, len(usage.SkippedImprecise), len(gs.Genes), th.Imprecise)
	}
	if len(usage.SkippedImprecise) > 0 {
		logger := log.WithComponent("genes")
		logger.Warn().
			Str("event", "geneset.imprecise_skipped").
			Str("file", gs.ID).
			Int("skipped", len(usage.SkippedImprecise)).
			Msg("excluded genes with too many imprecise codons")
	}

	total := 0
	for _, n := range usage.Counts {
		total += n
	}
	if total == 0 {
		return nil, fmt.Errorf("%s: %w", gs.ID, ErrNoCodons)
	}
	for codon, n := range usage.Counts {
		usage.Frequency[codon] = float64(n) / float64(total)
	}

	for _, codon := range CodonList {
		if isStopCodon(codon) {
			continue
		}
		usage.AminoCounts[CodonTable[codon]] += usage.Counts[codon]
	}
	aaTotal := 0
	for _, n := range usage.AminoCounts {
		aaTotal += n
	}
	for aa, n := range usage.AminoCounts {
		if aaTotal > 0 {
			usage.AminoFrequency[aa] = float64(n) / float64(aaTotal)
		} else {
			usage.AminoFrequency[aa] = 0
		}
	}

	for _, codon := range CodonList {
		count := usage.Counts[codon]
		if count == 0 {
			continue
		}
		syn := SynonymousCodons(codon)
		synTotal := 0
		for _, s := range syn {
			synTotal += usage.Counts[s]
		}
		expected := float64(synTotal) / float64(len(syn))
		usage.RSCU[codon] = float64(count) / expected
	}

	return usage, nil
}

// tRNAProductPattern matches Bakta-style tRNA gene products such as
// "tRNA-Ala(ggc)": the three-letter amino acid plus the anticodon.
var tRNAProductPattern = regexp.MustCompile(`^tRNA-(\w{3})\((\w{3})\)`)

// TRNACounts tallies the tRNA gene copy numbers of a gene set.
type TRNACounts struct {
	// ByAminoAcid counts tRNA genes per decoded amino acid.
	ByAminoAcid map[string]int

	// ByTCC counts tRNA genes per tRNA-complementary codon, the codon a
	// tRNA decodes, derived as the reverse complement of its anticodon.
	// Keyed by the sense codons.
	ByTCC map[string]int

	// Total is the number of tRNA genes counted.
	Total int
}

// TRNACounts scans gene products for tRNA annotations and tallies them by
// amino acid and by tRNA-complementary codon. Products with an unknown
// amino-acid code or an anticodon complementary to a stop codon are skipped
// with a warning.
func (gs *GeneSet) TRNACounts() *TRNACounts {
	counts := &TRNACounts{
		ByAminoAcid: make(map[string]int, len(AminoAcidList)),
		ByTCC:       make(map[string]int, len(SenseCodons)),
	}
	for _, aa := range AminoAcidList {
		counts.ByAminoAcid[aa] = 0
	}
	for _, codon := range SenseCodons {
		counts.ByTCC[codon] = 0
	}

	logger := log.WithComponent("genes")
	found := false
	for _, gene := range gs.Genes {
		m := tRNAProductPattern.FindStringSubmatch(gene.Product)
		if m == nil {
			continue
		}
		aa, ok := AAConversions[m[1]]
		if !ok {
			logger.Warn().
				Str("event", "trna.unknown_amino_acid").
				Str("gene", gene.ID).
				Str("product", gene.Product).
				Msg("skipping tRNA gene with unknown amino-acid code")
			continue
		}
		tcc := seqio.ReverseComplement(m[2])
		if _, sense := counts.ByTCC[tcc]; !sense {
			logger.Warn().
				Str("event", "trna.invalid_anticodon").
				Str("gene", gene.ID).
				Str("product", gene.Product).
				Str("tcc", tcc).
				Msg("skipping tRNA gene whose anticodon maps outside the sense codons")
			continue
		}
		found = true
		counts.ByAminoAcid[aa]++
		counts.ByTCC[tcc]++
		counts.Total++
	}

	if !found {
		logger.Warn().
			Str("event", "trna.none_found").
			Str("file", gs.ID).
			Msg("no tRNA genes found in the gene set")
	}
	return counts
}

// Frequencies returns the tRNA copy-number frequencies out of the total
// tRNA count, by amino acid and by tRNA-complementary codon. With no tRNA
// genes all frequencies are zero.
func (c *TRNACounts) Frequencies() (byAminoAcid, byTCC map[string]float64) {
	byAminoAcid = make(map[string]float64, len(c.ByAminoAcid))
	byTCC = make(map[string]float64, len(c.ByTCC))
	for aa, n := range c.ByAminoAcid {
		if c.Total > 0 {
			byAminoAcid[aa] = float64(n) / float64(c.Total)
		} else {
			byAminoAcid[aa] = 0
		}
	}
	for codon, n := range c.ByTCC {
		if c.Total > 0 {
			byTCC[codon] = float64(n) / float64(c.Total)
		} else {
			byTCC[codon] = 0
		}
	}
	return byAminoAcid, byTCC
}
