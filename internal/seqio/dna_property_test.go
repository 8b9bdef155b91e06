package seqio

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// Feature: vhip, Property: Reverse Complement Involution
// Applying the reverse complement twice returns the upper-cased input for
// unambiguous sequences.
func TestProperty_ReverseComplementInvolution(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seq := rapid.StringMatching(`[ACGTacgt]{0,200}`).Draw(rt, "seq")

		if got, want := ReverseComplement(ReverseComplement(seq)), strings.ToUpper(seq); got != want {
			t.Fatalf("double reverse complement of %q = %q, want %q", seq, got, want)
		}
	})
}

// Feature: vhip, Property: Reverse Complement Alphabet
// The output has the input's length and only contains A, C, G, T, or N.
func TestProperty_ReverseComplementAlphabet(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seq := rapid.String().Draw(rt, "seq")
		got := ReverseComplement(seq)

		if len(got) != len(seq) {
			t.Fatalf("length changed: %d -> %d", len(seq), len(got))
		}
		for i := 0; i < len(got); i++ {
			switch got[i] {
			case 'A', 'C', 'G', 'T', 'N':
			default:
				t.Fatalf("ReverseComplement(%q)[%d] = %q, not in ACGTN", seq, i, string(got[i]))
			}
		}
	})
}
