// Package genes computes gene-level composition features from annotated
// gene files: codon usage, amino-acid usage, RSCU, tRNA gene inventories,
// and the comparison metrics between a virus and a candidate host.
package genes

// StopSymbol marks translation stops in the codon table.
const StopSymbol = "_"

// CodonTable maps each DNA codon to the one-letter code of the amino acid
// it encodes, with StopSymbol for stop codons.
var CodonTable = map[string]string{
	"ATA": "I",
	"ATC": "I",
	"ATT": "I",
	"ATG": "M",
	"ACA": "T",
	"ACC": "T",
	"ACG": "T",
	"ACT": "T",
	"AAC": "N",
	"AAT": "N",
	"AAA": "K",
	"AAG": "K",
	"AGC": "S",
	"AGT": "S",
	"AGA": "R",
	"AGG": "R",
	"CTA": "L",
	"CTC": "L",
	"CTG": "L",
	"CTT": "L",
	"CCA": "P",
	"CCC": "P",
	"CCG": "P",
	"CCT": "P",
	"CAC": "H",
	"CAT": "H",
	"CAA": "Q",
	"CAG": "Q",
	"CGA": "R",
	"CGC": "R",
	"CGG": "R",
	"CGT": "R",
	"GTA": "V",
	"GTC": "V",
	"GTG": "V",
	"GTT": "V",
	"GCA": "A",
	"GCC": "A",
	"GCG": "A",
	"GCT": "A",
	"GAC": "D",
	"GAT": "D",
	"GAA": "E",
	"GAG": "E",
	"GGA": "G",
	"GGC": "G",
	"GGG": "G",
	"GGT": "G",
	"TCA": "S",
	"TCC": "S",
	"TCG": "S",
	"TCT": "S",
	"TTC": "F",
	"TTT": "F",
	"TTA": "L",
	"TTG": "L",
	"TAC": "Y",
	"TAT": "Y",
	"TAA": StopSymbol,
	"TAG": StopSymbol,
	"TGC": "C",
	"TGT": "C",
	"TGA": StopSymbol,
	"TGG": "W",
}

// CodonList fixes the canonical iteration order for every per-codon map in
// this package. Feature vectors handed to comparison metrics are aligned on
// this order.
var CodonList = []string{
	"ATA", "ATC", "ATT", "ATG", "ACA", "ACC", "ACG", "ACT",
	"AAC", "AAT", "AAA", "AAG", "AGC", "AGT", "AGA", "AGG",
	"CTA", "CTC", "CTG", "CTT", "CCA", "CCC", "CCG", "CCT",
	"CAC", "CAT", "CAA", "CAG", "CGA", "CGC", "CGG", "CGT",
	"GTA", "GTC", "GTG", "GTT", "GCA", "GCC", "GCG", "GCT",
	"GAC", "GAT", "GAA", "GAG", "GGA", "GGC", "GGG", "GGT",
	"TCA", "TCC", "TCG", "TCT", "TTC", "TTT", "TTA", "TTG",
	"TAC", "TAT", "TAA", "TAG", "TGC", "TGT", "TGA", "TGG",
}

// AAConversions translates three-letter amino-acid abbreviations, as found
// in annotated tRNA gene products, to one-letter codes.
var AAConversions = map[string]string{
	"Ala": "A",
	"Arg": "R",
	"Asn": "N",
	"Asp": "D",
	"Cys": "C",
	"Gln": "Q",
	"Glu": "E",
	"Gly": "G",
	"His": "H",
	"Ile": "I",
	"Leu": "L",
	"Lys": "K",
	"Met": "M",
	"Phe": "F",
	"Pro": "P",
	"Ser": "S",
	"Thr": "T",
	"Trp": "W",
	"Tyr": "Y",
	"Val": "V",
}

// Derived from CodonTable in CodonList order.
var (
	// AminoAcidList holds the 20 one-letter codes in first-appearance order.
	AminoAcidList []string

	// StopCodons lists the three stop codons.
	StopCodons []string

	// SenseCodons lists the 61 non-stop codons; the key domain for
	// tRNA-complementary-codon counts.
	SenseCodons []string

	// NonDegenerateCodons lists codons whose amino acid is encoded by no
	// other codon (ATG and TGG).
	NonDegenerateCodons []string

	synonymousCodons = map[string][]string{}
)

func init() {
	codonsPerAA := map[string]int{}
	for _, codon := range CodonList {
		codonsPerAA[CodonTable[codon]]++
	}

	seen := map[string]bool{}
	for _, codon := range CodonList {
		aa := CodonTable[codon]
		if aa == StopSymbol {
			StopCodons = append(StopCodons, codon)
			continue
		}
		SenseCodons = append(SenseCodons, codon)
		synonymousCodons[aa] = append(synonymousCodons[aa], codon)
		if !seen[aa] {
			seen[aa] = true
			AminoAcidList = append(AminoAcidList, aa)
		}
		if codonsPerAA[aa] == 1 {
			NonDegenerateCodons = append(NonDegenerateCodons, codon)
		}
	}
}

// SynonymousCodons returns the codons encoding the same amino acid as codon,
// including codon itself, in canonical order.
func SynonymousCodons(codon string) []string {
	return synonymousCodons[CodonTable[codon]]
}

func isStopCodon(codon string) bool {
	return CodonTable[codon] == StopSymbol
}
