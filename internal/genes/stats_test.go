package genes

import (
	"errors"
	"math"
	"testing"
)

func TestSpearmanMonotonic(t *testing.T) {
	got, err := Spearman([]float64{1, 2, 3, 4}, []float64{10, 20, 30, 40})
	if err != nil {
		t.Fatalf("Spearman: %v", err)
	}
	if !almostEqual(got, 1) {
		t.Errorf("Spearman = %v, want 1 for a monotonic pair", got)
	}

	got, err = Spearman([]float64{1, 2, 3, 4}, []float64{8, 6, 4, 2})
	if err != nil {
		t.Fatalf("Spearman: %v", err)
	}
	if !almostEqual(got, -1) {
		t.Errorf("Spearman = %v, want -1 for a reversed pair", got)
	}
}

func TestSpearmanNonMonotonic(t *testing.T) {
	// Rank vectors (1,2,3,4) vs (2,1,4,3): rho = 1 - 6*4/(4*15) = 0.6.
	got, err := Spearman([]float64{1, 2, 3, 4}, []float64{5, 2, 9, 7})
	if err != nil {
		t.Fatalf("Spearman: %v", err)
	}
	if !almostEqual(got, 0.6) {
		t.Errorf("Spearman = %v, want 0.6", got)
	}
}

func TestSpearmanAverageRankTies(t *testing.T) {
	// x ranks with the tie averaged: (1.5, 1.5, 3); y ranks (1, 2, 3).
	got, err := Spearman([]float64{1, 1, 2}, []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("Spearman: %v", err)
	}
	want := math.Sqrt(3) / 2
	if !almostEqual(got, want) {
		t.Errorf("Spearman = %v, want %v", got, want)
	}
}

func TestSpearmanErrors(t *testing.T) {
	if _, err := Spearman([]float64{1, 2}, []float64{1}); err == nil {
		t.Error("expected error for mismatched lengths")
	}
	if _, err := Spearman([]float64{1}, []float64{1}); err == nil {
		t.Error("expected error for a single observation")
	}
	if _, err := Spearman([]float64{2, 2, 2}, []float64{1, 2, 3}); !errors.Is(err, ErrConstantInput) {
		t.Errorf("constant input: got %v, want ErrConstantInput", err)
	}
}

func TestRanks(t *testing.T) {
	got := ranks([]float64{10, 30, 20, 30})
	want := []float64{1, 3.5, 2, 3.5}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ranks[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
