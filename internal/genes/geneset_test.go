package genes

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeGeneFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genes.ffn")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

const shortGenesFile = ">gene1 hypothetical protein\nATGGAA\n>gene2 hypothetical protein\nTCATCC\n>gene3 truncated\nATGGAAT\n"

func TestLoadGeneSet(t *testing.T) {
	gs, err := LoadGeneSet(writeGeneFile(t, shortGenesFile))
	if err != nil {
		t.Fatalf("LoadGeneSet: %v", err)
	}
	if len(gs.Genes) != 2 {
		t.Errorf("got %d genes, want 2", len(gs.Genes))
	}
	if len(gs.SkippedGenes) != 1 || gs.SkippedGenes[0] != "gene3" {
		t.Errorf("SkippedGenes = %v, want [gene3]", gs.SkippedGenes)
	}
	if gs.Genes[0].Product != "hypothetical protein" {
		t.Errorf("Product = %q, want %q", gs.Genes[0].Product, "hypothetical protein")
	}
}

func TestLoadGeneSetEmpty(t *testing.T) {
	if _, err := LoadGeneSet(""); !errors.Is(err, ErrEmptyGeneSet) {
		t.Errorf("empty path: got %v, want ErrEmptyGeneSet", err)
	}
	if _, err := LoadGeneSet(writeGeneFile(t, "")); !errors.Is(err, ErrEmptyGeneSet) {
		t.Errorf("empty file: got %v, want ErrEmptyGeneSet", err)
	}
}

func TestCodonUsage(t *testing.T) {
	gs, err := LoadGeneSet(writeGeneFile(t, shortGenesFile))
	if err != nil {
		t.Fatalf("LoadGeneSet: %v", err)
	}
	usage, err := gs.CodonUsage(DefaultThresholds())
	if err != nil {
		t.Fatalf("CodonUsage: %v", err)
	}

	wantCounts := map[string]int{"ATG": 1, "GAA": 1, "TCA": 1, "TCC": 1}
	for _, codon := range CodonList {
		if usage.Counts[codon] != wantCounts[codon] {
			t.Errorf("Counts[%s] = %d, want %d", codon, usage.Counts[codon], wantCounts[codon])
		}
	}

	for codon, want := range map[string]float64{"ATG": 0.25, "GAA": 0.25, "TCA": 0.25, "TCC": 0.25, "GGG": 0} {
		if got := usage.Frequency[codon]; math.Abs(got-want) > 1e-12 {
			t.Errorf("Frequency[%s] = %v, want %v", codon, got, want)
		}
	}

	wantAmino := map[string]int{"M": 1, "E": 1, "S": 2}
	for _, aa := range AminoAcidList {
		if usage.AminoCounts[aa] != wantAmino[aa] {
			t.Errorf("AminoCounts[%s] = %d, want %d", aa, usage.AminoCounts[aa], wantAmino[aa])
		}
	}
	for aa, want := range map[string]float64{"M": 0.25, "E": 0.25, "S": 0.5} {
		if got := usage.AminoFrequency[aa]; math.Abs(got-want) > 1e-12 {
			t.Errorf("AminoFrequency[%s] = %v, want %v", aa, got, want)
		}
	}

	// GAA is one of two glutamate codons, observed alone: 1 / (1/2) = 2.
	// TCA and TCC are two of six serine codons: 1 / (2/6) = 3.
	wantRSCU := map[string]float64{"ATG": 1, "GAA": 2, "TCA": 3, "TCC": 3}
	for _, codon := range CodonList {
		if got := usage.RSCU[codon]; math.Abs(got-wantRSCU[codon]) > 1e-12 {
			t.Errorf("RSCU[%s] = %v, want %v", codon, got, wantRSCU[codon])
		}
	}
}

func TestCodonUsageImpreciseExclusion(t *testing.T) {
	content := ">clean protein\nATGGAA\n>dirty protein\nATGNNN\n"
	gs, err := LoadGeneSet(writeGeneFile(t, content))
	if err != nil {
		t.Fatalf("LoadGeneSet: %v", err)
	}

	usage, err := gs.CodonUsage(DefaultThresholds())
	if err != nil {
		t.Fatalf("CodonUsage: %v", err)
	}
	if len(usage.SkippedImprecise) != 1 || usage.SkippedImprecise[0] != "dirty" {
		t.Errorf("SkippedImprecise = %v, want [dirty]", usage.SkippedImprecise)
	}
	if usage.ImpreciseCodons != 1 {
		t.Errorf("ImpreciseCodons = %d, want 1", usage.ImpreciseCodons)
	}
	if usage.Counts["ATG"] != 1 {
		t.Errorf("Counts[ATG] = %d, want 1 (dirty gene excluded)", usage.Counts["ATG"])
	}

	// A laxer per-gene threshold readmits the dirty gene.
	lax, err := gs.CodonUsage(Thresholds{Imprecise: 0.5, SkippedGenes: 0.5})
	if err != nil {
		t.Fatalf("CodonUsage lax: %v", err)
	}
	if len(lax.SkippedImprecise) != 0 {
		t.Errorf("lax SkippedImprecise = %v, want none", lax.SkippedImprecise)
	}
	if lax.Counts["ATG"] != 2 {
		t.Errorf("lax Counts[ATG] = %d, want 2", lax.Counts["ATG"])
	}
}

func TestCodonUsageTooManySkipped(t *testing.T) {
	content := ">d1 p\nNNNNNN\n>d2 p\nNNNTTT\n>clean p\nATGGAA\n"
	gs, err := LoadGeneSet(writeGeneFile(t, content))
	if err != nil {
		t.Fatalf("LoadGeneSet: %v", err)
	}
	if _, err := gs.CodonUsage(DefaultThresholds()); !errors.Is(err, ErrTooManySkipped) {
		t.Errorf("got %v, want ErrTooManySkipped (2 of 3 genes over threshold)", err)
	}
}

func TestTRNACounts(t *testing.T) {
	content := ">t1 tRNA-Ala(ggc)\nATGGAA\n" +
		">t2 tRNA-Ser(tga)\nATGGAA\n" +
		">t3 tRNA-Ser(gga)\nATGGAA\n" +
		">g1 hypothetical protein\nATGGAA\n" +
		">t4 tRNA-Xaa(ggc)\nATGGAA\n"
	gs, err := LoadGeneSet(writeGeneFile(t, content))
	if err != nil {
		t.Fatalf("LoadGeneSet: %v", err)
	}

	counts := gs.TRNACounts()
	if counts.Total != 3 {
		t.Errorf("Total = %d, want 3 (unknown code skipped, protein ignored)", counts.Total)
	}
	if counts.ByAminoAcid["A"] != 1 || counts.ByAminoAcid["S"] != 2 {
		t.Errorf("ByAminoAcid = A:%d S:%d, want A:1 S:2", counts.ByAminoAcid["A"], counts.ByAminoAcid["S"])
	}
	// Anticodon ggc decodes GCC, tga decodes TCA, gga decodes TCC.
	if counts.ByTCC["GCC"] != 1 || counts.ByTCC["TCA"] != 1 || counts.ByTCC["TCC"] != 1 {
		t.Errorf("ByTCC = GCC:%d TCA:%d TCC:%d, want 1 each",
			counts.ByTCC["GCC"], counts.ByTCC["TCA"], counts.ByTCC["TCC"])
	}
	if _, hasStop := counts.ByTCC["TAA"]; hasStop {
		t.Error("ByTCC domain must exclude stop codons")
	}

	byAA, byTCC := counts.Frequencies()
	if got := byAA["S"]; math.Abs(got-2.0/3.0) > 1e-12 {
		t.Errorf("freq byAA[S] = %v, want 2/3", got)
	}
	if got := byTCC["GCC"]; math.Abs(got-1.0/3.0) > 1e-12 {
		t.Errorf("freq byTCC[GCC] = %v, want 1/3", got)
	}
}

func TestTRNACountsSuppressorSkipped(t *testing.T) {
	// Anticodon tta decodes TAA, a stop codon outside the tcc domain.
	content := ">t1 tRNA-Ala(tta)\nATGGAA\n>t2 tRNA-Ala(ggc)\nATGGAA\n"
	gs, err := LoadGeneSet(writeGeneFile(t, content))
	if err != nil {
		t.Fatalf("LoadGeneSet: %v", err)
	}
	counts := gs.TRNACounts()
	if counts.Total != 1 {
		t.Errorf("Total = %d, want 1 (suppressor tRNA skipped)", counts.Total)
	}
	if counts.ByAminoAcid["A"] != 1 {
		t.Errorf("ByAminoAcid[A] = %d, want 1", counts.ByAminoAcid["A"])
	}
}

func TestTRNAFrequenciesZeroSafe(t *testing.T) {
	gs, err := LoadGeneSet(writeGeneFile(t, ">g1 hypothetical protein\nATGGAA\n"))
	if err != nil {
		t.Fatalf("LoadGeneSet: %v", err)
	}
	counts := gs.TRNACounts()
	byAA, byTCC := counts.Frequencies()
	for aa, v := range byAA {
		if v != 0 {
			t.Errorf("byAA[%s] = %v, want 0 with no tRNA genes", aa, v)
		}
	}
	for codon, v := range byTCC {
		if v != 0 {
			t.Errorf("byTCC[%s] = %v, want 0 with no tRNA genes", codon, v)
		}
	}
}
