// Package genomes computes genome-level composition features: k-mer
// profiles with the alignment-free d2* dissimilarity, and GC content.
package genomes

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrKMismatch flags a distance between profiles of different word sizes.
	ErrKMismatch = errors.New("profiles have different k-mer sizes")

	// ErrEmptyProfile flags a profile without counted windows.
	ErrEmptyProfile = errors.New("profile has no counted k-mer windows")

	// ErrDegenerateProfile flags a profile whose counts exactly match its
	// mononucleotide null model, leaving nothing to compare.
	ErrDegenerateProfile = errors.New("profile is indistinguishable from its null model")
)

const bases = "ACGT"

// Profile holds the k-mer counts of one genome sequence together with the
// mononucleotide null model the d2* statistic centres against.
type Profile struct {
	K       int
	Counts  map[string]int
	Windows int // number of counted sliding windows

	// baseProb is the background probability of A, C, G and T over the
	// unambiguous bases of the source sequence.
	baseProb [4]float64
}

// NewProfile counts all k-length sliding windows of seq. Windows containing
// a base other than A, C, G or T are skipped.
func NewProfile(seq string, k int) (*Profile, error) {
	if k < 1 {
		return nil, fmt.Errorf("k-mer size %d is not positive", k)
	}
	seq = strings.ToUpper(seq)

	p := &Profile{K: k, Counts: make(map[string]int)}

	var baseCounts [4]int
	unambiguous := 0
	for i := 0; i < len(seq); i++ {
		if idx := baseIndex(seq[i]); idx >= 0 {
			baseCounts[idx]++
			unambiguous++
		}
	}
	if unambiguous > 0 {
		for i := range baseCounts {
			p.baseProb[i] = float64(baseCounts[i]) / float64(unambiguous)
		}
	}

	for i := 0; i+k <= len(seq); i++ {
		window := seq[i : i+k]
		if !unambiguousWindow(window) {
			continue
		}
		p.Counts[window]++
		p.Windows++
	}
	return p, nil
}

func baseIndex(b byte) int {
	switch b {
	case 'A':
		return 0
	case 'C':
		return 1
	case 'G':
		return 2
	case 'T':
		return 3
	}
	return -1
}

func unambiguousWindow(window string) bool {
	for i := 0; i < len(window); i++ {
		if baseIndex(window[i]) < 0 {
			return false
		}
	}
	return true
}

// expected returns the count of word predicted by the profile's
// mononucleotide null model.
func (p *Profile) expected(word string) float64 {
	prob := 1.0
	for i := 0; i < len(word); i++ {
		prob *= p.baseProb[baseIndex(word[i])]
	}
	return float64(p.Windows) * prob
}

// D2Star computes the d2* dissimilarity between two k-mer profiles: both
// count vectors are centred against their own null-model expectations,
// scaled, and compared; the result is 0.5 * (1 - similarity), which lies in
// [0, 1] with 0 for identical composition.
func D2Star(x, y *Profile) (float64, error) {
	if x.K != y.K {
		return 0, fmt.Errorf("%w: %d vs %d", ErrKMismatch, x.K, y.K)
	}
	if x.Windows == 0 || y.Windows == 0 {
		return 0, ErrEmptyProfile
	}

	var numerator, normX, normY float64
	words := 1 << (2 * x.K)
	for w := 0; w < words; w++ {
		word := kmerWord(w, x.K)
		ex, ey := x.expected(word), y.expected(word)
		if ex == 0 || ey == 0 {
			// A zero expectation implies the word cannot occur in that
			// sequence; its count is necessarily zero as well.
			continue
		}
		cx := float64(x.Counts[word]) - ex
		cy := float64(y.Counts[word]) - ey
		numerator += cx * cy / math.Sqrt(ex*ey)
		normX += cx * cx / ex
		normY += cy * cy / ey
	}
	if normX == 0 || normY == 0 {
		return 0, ErrDegenerateProfile
	}

	similarity := numerator / math.Sqrt(normX*normY)
	return 0.5 * (1 - similarity), nil
}

// kmerWord decodes an index in [0, 4^k) into its k-mer string.
func kmerWord(idx, k int) string {
	b := make([]byte, k)
	for i := k - 1; i >= 0; i-- {
		b[i] = bases[idx&3]
		idx >>= 2
	}
	return string(b)
}
