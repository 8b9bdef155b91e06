package genomes

import (
	"errors"
	"math"
	"testing"

	"pgregory.net/rapid"
)

func sequenceGenerator(minLen, maxLen int) *rapid.Generator[string] {
	return rapid.Custom(func(rt *rapid.T) string {
		n := rapid.IntRange(minLen, maxLen).Draw(rt, "len")
		b := make([]byte, n)
		for i := range b {
			b[i] = bases[rapid.IntRange(0, 3).Draw(rt, "base")]
		}
		return string(b)
	})
}

// Feature: vhip, Property: D2Star Range And Symmetry
// The d2* dissimilarity of any two comparable profiles lies in [0, 1] and
// does not depend on argument order.
func TestProperty_D2StarRangeAndSymmetry(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		k := rapid.IntRange(2, 4).Draw(rt, "k")
		x, err := NewProfile(sequenceGenerator(20, 120).Draw(rt, "x"), k)
		if err != nil {
			t.Fatalf("NewProfile: %v", err)
		}
		y, err := NewProfile(sequenceGenerator(20, 120).Draw(rt, "y"), k)
		if err != nil {
			t.Fatalf("NewProfile: %v", err)
		}

		d, err := D2Star(x, y)
		if errors.Is(err, ErrDegenerateProfile) {
			return
		}
		if err != nil {
			t.Fatalf("D2Star: %v", err)
		}
		if d < -1e-9 || d > 1+1e-9 {
			t.Fatalf("D2Star = %v, outside [0, 1]", d)
		}

		flipped, err := D2Star(y, x)
		if err != nil {
			t.Fatalf("D2Star flipped: %v", err)
		}
		if math.Abs(d-flipped) > 1e-9 {
			t.Fatalf("D2Star not symmetric: %v vs %v", d, flipped)
		}
	})
}

// Feature: vhip, Property: Profile Window Accounting
// Counted windows sum to the window total, and every counted word has the
// requested length.
func TestProperty_ProfileWindowAccounting(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		k := rapid.IntRange(1, 6).Draw(rt, "k")
		seq := sequenceGenerator(0, 200).Draw(rt, "seq")

		p, err := NewProfile(seq, k)
		if err != nil {
			t.Fatalf("NewProfile: %v", err)
		}

		sum := 0
		for word, n := range p.Counts {
			if len(word) != k {
				t.Fatalf("counted word %q has length %d, want %d", word, len(word), k)
			}
			sum += n
		}
		if sum != p.Windows {
			t.Fatalf("counts sum to %d, Windows = %d", sum, p.Windows)
		}

		if wantMax := len(seq) - k + 1; wantMax >= 0 && p.Windows > wantMax {
			t.Fatalf("Windows = %d exceeds possible windows %d", p.Windows, wantMax)
		}
	})
}
