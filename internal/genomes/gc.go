package genomes

import "strings"

// GC returns the GC content of a sequence as a percentage of its
// unambiguous bases. A sequence without unambiguous bases reports zero.
func GC(seq string) float64 {
	seq = strings.ToUpper(seq)
	gc, unambiguous := 0, 0
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'G', 'C':
			gc++
			unambiguous++
		case 'A', 'T':
			unambiguous++
		}
	}
	if unambiguous == 0 {
		return 0
	}
	return float64(gc) / float64(unambiguous) * 100
}
