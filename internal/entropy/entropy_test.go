package entropy

import (
	"errors"
	"math"
	"testing"
)

func TestPickWithProbability_AlwaysReturnsItem(t *testing.T) {
	rng := NewRand(7)
	items := []string{"a", "b", "c"}
	probs := []float64{0.2, 0.5, 0.3}
	seen := make(map[string]int)

	for i := 0; i < 10000; i++ {
		got, err := PickWithProbability(rng, items, probs)
		if err != nil {
			t.Fatalf("trial %d: unexpected error: %v", i, err)
		}
		if got == "" {
			t.Fatalf("trial %d: got empty item", i)
		}
		seen[got]++
	}

	for _, it := range items {
		if seen[it] == 0 {
			t.Errorf("item %q never picked in 10000 trials", it)
		}
	}
	// b should dominate.
	if seen["b"] < seen["a"] || seen["b"] < seen["c"] {
		t.Errorf("distribution looks wrong: %v", seen)
	}
}

func TestPickWithProbability_BadSum(t *testing.T) {
	rng := NewRand(1)
	tests := []struct {
		name  string
		items []int
		probs []float64
	}{
		{"sum below one", []int{1, 2}, []float64{0.3, 0.3}},
		{"sum above one", []int{1, 2}, []float64{0.7, 0.7}},
		{"length mismatch", []int{1, 2, 3}, []float64{0.5, 0.5}},
		{"negative", []int{1, 2}, []float64{1.5, -0.5}},
		{"empty", []int{}, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PickWithProbability(rng, tt.items, tt.probs)
			if !errors.Is(err, ErrProbabilitySum) {
				t.Errorf("expected ErrProbabilitySum, got %v", err)
			}
		})
	}
}

func TestPickIndex_FallthroughClampsToLast(t *testing.T) {
	// Cumulative sum stops just below the roll.
	probs := []float64{0.3, 0.3, 0.3999999999, 0}
	if got := pickIndex(probs, 0.99999999999); got != 2 {
		t.Errorf("pickIndex fallthrough = %d, want 2 (last non-zero)", got)
	}
	if got := pickIndex(probs, 0.0); got != 0 {
		t.Errorf("pickIndex(0) = %d, want 0", got)
	}
}

func TestNewRand_Deterministic(t *testing.T) {
	a := NewRand(42)
	b := NewRand(42)
	for i := 0; i < 100; i++ {
		if a.Float64() != b.Float64() {
			t.Fatal("same seed should produce same stream")
		}
	}
	if NewRand(0) == nil {
		t.Fatal("zero seed should still yield a source")
	}
}

func TestClampedNormal_Bounds(t *testing.T) {
	rng := NewRand(3)
	for i := 0; i < 5000; i++ {
		v := ClampedNormal(rng, 0.2, 5, 0.05, 0.6)
		if v < 0.05 || v > 0.6 {
			t.Fatalf("ClampedNormal out of bounds: %v", v)
		}
	}
}

func TestSkewNormal_ShapeShiftsMean(t *testing.T) {
	rng := NewRand(11)
	const n = 20000
	sumPos, sumNeg := 0.0, 0.0
	for i := 0; i < n; i++ {
		sumPos += SkewNormal(rng, 0, 1, 5)
		sumNeg += SkewNormal(rng, 0, 1, -5)
	}
	if sumPos/n <= 0.5 {
		t.Errorf("positive shape mean = %v, want > 0.5", sumPos/n)
	}
	if sumNeg/n >= -0.5 {
		t.Errorf("negative shape mean = %v, want < -0.5", sumNeg/n)
	}
}

func TestMapRange(t *testing.T) {
	tests := []struct {
		name                        string
		v, inMin, inMax, oMin, oMax float64
		want                        float64
	}{
		{"midpoint", 5, 0, 10, 0, 100, 50},
		{"clamped low", -3, 0, 10, 0, 100, 0},
		{"clamped high", 30, 0, 10, 0, 100, 100},
		{"inverted output", 2.5, 0, 10, 1, 0, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapRange(tt.v, tt.inMin, tt.inMax, tt.oMin, tt.oMax)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("MapRange = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMapLogRange(t *testing.T) {
	got := MapLogRange(100, 1, 10000, 0, 1)
	if math.Abs(got-0.5) > 1e-12 {
		t.Errorf("MapLogRange(100) = %v, want 0.5", got)
	}
}

func TestRoundToAndIntRange(t *testing.T) {
	if got := RoundTo(3.14159, 2); got != 3.14 {
		t.Errorf("RoundTo = %v, want 3.14", got)
	}
	r := IntRange(1, 5)
	if len(r) != 4 || r[0] != 1 || r[3] != 4 {
		t.Errorf("IntRange(1,5) = %v", r)
	}
	if len(IntRange(5, 1)) != 0 {
		t.Error("IntRange with end <= start should be empty")
	}
}

func TestSampleIndices_Distinct(t *testing.T) {
	rng := NewRand(5)
	idx := SampleIndices(rng, 10, 6)
	if len(idx) != 6 {
		t.Fatalf("len = %d, want 6", len(idx))
	}
	seen := map[int]bool{}
	for _, i := range idx {
		if seen[i] {
			t.Fatalf("duplicate index %d", i)
		}
		seen[i] = true
	}
	if len(SampleIndices(rng, 3, 10)) != 3 {
		t.Error("n should clamp to size")
	}
}

func TestNormalize(t *testing.T) {
	p, err := Normalize([]float64{1, 3})
	if err != nil {
		t.Fatal(err)
	}
	if p[0] != 0.25 || p[1] != 0.75 {
		t.Errorf("Normalize = %v", p)
	}
	if _, err := Normalize([]float64{0, 0}); err == nil {
		t.Error("expected error for zero weights")
	}
}
