package genomes

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func mustProfile(t *testing.T, seq string, k int) *Profile {
	t.Helper()
	p, err := NewProfile(seq, k)
	if err != nil {
		t.Fatalf("NewProfile(%q, %d): %v", seq, k, err)
	}
	return p
}

func TestNewProfileCounts(t *testing.T) {
	p := mustProfile(t, "AATT", 2)
	if p.Windows != 3 {
		t.Errorf("Windows = %d, want 3", p.Windows)
	}
	for word, want := range map[string]int{"AA": 1, "AT": 1, "TT": 1} {
		if p.Counts[word] != want {
			t.Errorf("Counts[%s] = %d, want %d", word, p.Counts[word], want)
		}
	}
}

func TestNewProfileSkipsAmbiguousWindows(t *testing.T) {
	// ATNGC at k=2: AT counts, TN and NG are skipped, GC counts.
	p := mustProfile(t, "ATNGC", 2)
	if p.Windows != 2 {
		t.Errorf("Windows = %d, want 2", p.Windows)
	}
	if p.Counts["AT"] != 1 || p.Counts["GC"] != 1 {
		t.Errorf("Counts = %v, want AT:1 GC:1", p.Counts)
	}
}

func TestNewProfileLowercase(t *testing.T) {
	p := mustProfile(t, "aatt", 2)
	if p.Counts["AT"] != 1 {
		t.Errorf("lowercase input not normalised: %v", p.Counts)
	}
}

func TestNewProfileInvalidK(t *testing.T) {
	if _, err := NewProfile("ACGT", 0); err == nil {
		t.Error("expected error for k = 0")
	}
}

func TestD2StarKnownValue(t *testing.T) {
	x := mustProfile(t, "AATT", 2)
	y := mustProfile(t, "ATAT", 2)

	got, err := D2Star(x, y)
	if err != nil {
		t.Fatalf("D2Star: %v", err)
	}
	// Hand-derived for these two profiles under their mononucleotide
	// null models: similarity -sqrt(33)/33.
	want := 0.5 * (1 + math.Sqrt(33)/33)
	if !almostEqual(got, want) {
		t.Errorf("D2Star = %v, want %v", got, want)
	}

	flipped, err := D2Star(y, x)
	if err != nil {
		t.Fatalf("D2Star flipped: %v", err)
	}
	if !almostEqual(got, flipped) {
		t.Errorf("D2Star not symmetric: %v vs %v", got, flipped)
	}
}

func TestD2StarIdenticalProfiles(t *testing.T) {
	x := mustProfile(t, "ACGTACGGTTAACCGGATCGATCG", 3)

	got, err := D2Star(x, x)
	if err != nil {
		t.Fatalf("D2Star: %v", err)
	}
	if !almostEqual(got, 0) {
		t.Errorf("D2Star(x, x) = %v, want 0", got)
	}
}

func TestD2StarErrors(t *testing.T) {
	k2 := mustProfile(t, "AATT", 2)
	k3 := mustProfile(t, "AATTGG", 3)
	if _, err := D2Star(k2, k3); !errors.Is(err, ErrKMismatch) {
		t.Errorf("k mismatch: got %v, want ErrKMismatch", err)
	}

	empty := mustProfile(t, "NNNN", 2)
	if _, err := D2Star(k2, empty); !errors.Is(err, ErrEmptyProfile) {
		t.Errorf("empty profile: got %v, want ErrEmptyProfile", err)
	}

	// At k = 1 the null-model expectations equal the counts exactly, so
	// there is no signal to compare.
	m1 := mustProfile(t, "AACG", 1)
	m2 := mustProfile(t, "CCGT", 1)
	if _, err := D2Star(m1, m2); !errors.Is(err, ErrDegenerateProfile) {
		t.Errorf("degenerate profiles: got %v, want ErrDegenerateProfile", err)
	}
}

func TestGC(t *testing.T) {
	tests := []struct {
		seq  string
		want float64
	}{
		{"ATGC", 50},
		{"GGCC", 100},
		{"ATAT", 0},
		{"GCGCNN", 100},
		{"atgc", 50},
		{"NNNN", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := GC(tt.seq); !almostEqual(got, tt.want) {
			t.Errorf("GC(%q) = %v, want %v", tt.seq, got, tt.want)
		}
	}
}
