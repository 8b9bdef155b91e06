package models

// Pair names a virus genome file and a candidate host genome file.
// Both sides are bare filenames, not paths.
type Pair struct {
	Virus string `json:"virus"`
	Host  string `json:"host"`
}

// FeatureColumns lists the classifier inputs in model order.
var FeatureColumns = []string{"GCdifference", "k3dist", "k6dist", "Homology_hit"}

// GeneFeatureColumns lists the extended gene-level metrics in report order.
// A metric missing from GeneLevelFeatures is reported as NA.
var GeneFeatureColumns = []string{
	"codons_slope", "codons_R2", "codons_cos",
	"aa_slope", "aa_R2", "aa_cos",
	"RSCU_slope", "RSCU_R2", "RSCU_cos",
	"TAAI_host", "TAAI_virocell",
	"TCAI_host", "TCAI_virocell",
}

// GeneLevelFeatures maps gene-level metric names to their computed values.
// Metrics that could not be computed for a pair are absent.
type GeneLevelFeatures map[string]float64

// PairFeatures holds the computed signals of one virus-host pair.
type PairFeatures struct {
	Pair
	GCDifference float64 `json:"gc_difference"`
	K3Dist       float64 `json:"k3dist"`
	K6Dist       float64 `json:"k6dist"`
	HomologyHit  bool    `json:"homology_hit"`

	// GeneLevel is nil when gene files were unavailable for the pair.
	GeneLevel GeneLevelFeatures `json:"gene_level,omitempty"`
}

// Vector returns the classifier input row in FeatureColumns order.
func (f PairFeatures) Vector() []float64 {
	hit := 0.0
	if f.HomologyHit {
		hit = 1.0
	}
	return []float64{f.GCDifference, f.K3Dist, f.K6Dist, hit}
}
