package genes

import (
	"fmt"
	"sort"
)

// TRNAMetrics scores how well a virus's codon and amino-acid usage agrees
// with the tRNA pool available during infection. The host-pool variants use
// the host's tRNA genes alone; the virocell variants add the virus's own
// tRNA genes to the pool.
type TRNAMetrics struct {
	virusUsage *CodonUsage
	virusTRNA  *TRNACounts
	hostTRNA   *TRNACounts
}

// NewTRNAMetrics prepares the accordance inputs from both gene sets.
func NewTRNAMetrics(virus, host *GeneSet, th Thresholds) (*TRNAMetrics, error) {
	usage, err := virus.CodonUsage(th)
	if err != nil {
		return nil, fmt.Errorf("virus codon usage: %w", err)
	}
	return &TRNAMetrics{
		virusUsage: usage,
		virusTRNA:  virus.TRNACounts(),
		hostTRNA:   host.TRNACounts(),
	}, nil
}

// TAAI is the tRNA amino-acid accordance index: the rank correlation
// between the virus's amino-acid frequencies and the host's tRNA gene
// frequencies by amino acid. All amino acids participate.
func (m *TRNAMetrics) TAAI() (float64, error) {
	keys := sortedKeys(AminoAcidList)
	hostFreq, _ := m.hostTRNA.Frequencies()
	return Spearman(
		FreqVector(m.virusUsage.AminoFrequency, keys),
		FreqVector(hostFreq, keys),
	)
}

// VirocellTAAI is TAAI against the pooled virus plus host tRNA genes.
func (m *TRNAMetrics) VirocellTAAI() (float64, error) {
	keys := sortedKeys(AminoAcidList)
	pool, err := pooledCountFrequencies(m.virusTRNA.ByAminoAcid, m.hostTRNA.ByAminoAcid, keys)
	if err != nil {
		return 0, fmt.Errorf("taai: %w", err)
	}
	return Spearman(FreqVector(m.virusUsage.AminoFrequency, keys), pool)
}

// TCAI is the tRNA codon accordance index: the rank correlation between the
// virus's codon frequencies and the host's tRNA gene frequencies by
// tRNA-complementary codon. Stop codons never participate; non-degenerate
// codons can additionally be excluded.
func (m *TRNAMetrics) TCAI(skipNonDegenerate bool) (float64, error) {
	keys := tcaiKeys(skipNonDegenerate)
	_, hostFreq := m.hostTRNA.Frequencies()
	return Spearman(
		FreqVector(m.virusUsage.Frequency, keys),
		FreqVector(hostFreq, keys),
	)
}

// VirocellTCAI is TCAI against the pooled virus plus host tRNA genes. The
// pool total only spans the participating codons.
func (m *TRNAMetrics) VirocellTCAI(skipNonDegenerate bool) (float64, error) {
	keys := tcaiKeys(skipNonDegenerate)
	pool, err := pooledCountFrequencies(m.virusTRNA.ByTCC, m.hostTRNA.ByTCC, keys)
	if err != nil {
		return 0, fmt.Errorf("tcai: %w", err)
	}
	return Spearman(FreqVector(m.virusUsage.Frequency, keys), pool)
}

func tcaiKeys(skipNonDegenerate bool) []string {
	excluded := map[string]bool{}
	if skipNonDegenerate {
		for _, codon := range NonDegenerateCodons {
			excluded[codon] = true
		}
	}
	var keys []string
	for _, codon := range SenseCodons {
		if !excluded[codon] {
			keys = append(keys, codon)
		}
	}
	sort.Strings(keys)
	return keys
}

func sortedKeys(list []string) []string {
	keys := append([]string(nil), list...)
	sort.Strings(keys)
	return keys
}

// pooledCountFrequencies sums both count maps over keys and normalises by
// the pooled total.
func pooledCountFrequencies(virus, host map[string]int, keys []string) ([]float64, error) {
	total := 0
	counts := make([]int, len(keys))
	for i, k := range keys {
		counts[i] = virus[k] + host[k]
		total += counts[i]
	}
	if total == 0 {
		return nil, fmt.Errorf("virocell tRNA pool is empty")
	}
	out := make([]float64, len(keys))
	for i, n := range counts {
		out[i] = float64(n) / float64(total)
	}
	return out, nil
}
