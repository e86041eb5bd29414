package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/planetgen/internal/entropy"
)

func TestDefault_Loads(t *testing.T) {
	c := Default()
	if c.Len() < 20 {
		t.Fatalf("bundled catalog has %d materials, want at least 20", c.Len())
	}
	var elements, minerals int
	for _, m := range c.Materials() {
		switch m.Class {
		case ClassElement:
			elements++
		case ClassMineral:
			minerals++
			if m.Formula == "" {
				t.Errorf("mineral %s has no formula", m.Name)
			}
		}
		if m.Density <= 0 {
			t.Errorf("%s density = %g", m.Name, m.Density)
		}
	}
	if elements == 0 || minerals == 0 {
		t.Errorf("elements=%d minerals=%d, want both", elements, minerals)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", "materials: []\n"},
		{"bad yaml", "materials: [\n"},
		{"missing name", "materials:\n  - symbol: X\n    class: element\n"},
		{"bad class", "materials:\n  - symbol: X\n    name: Ex\n    class: gas\n"},
		{"duplicate", "materials:\n  - {symbol: X, name: Ex, class: element}\n  - {symbol: X, name: Why, class: element}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tt.doc)); err == nil {
				t.Error("Load succeeded, want error")
			}
		})
	}

	if _, err := Load(strings.NewReader("materials: []\n")); !errors.Is(err, ErrEmpty) {
		t.Errorf("empty: err = %v, want ErrEmpty", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crust.yaml")
	doc := "materials:\n  - {symbol: Fe, name: Iron, class: element, density: 7.874}\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if names := c.Names(); len(names) != 1 || names[0] != "Iron" {
		t.Errorf("Names = %v", names)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file loaded")
	}
}

func TestSample_DistinctAndClamped(t *testing.T) {
	c := Default()
	rng := entropy.NewRand(5)
	before := c.Names()

	for trial := 0; trial < 100; trial++ {
		got := c.Sample(rng, 5)
		if len(got) != 5 {
			t.Fatalf("Sample returned %d materials, want 5", len(got))
		}
		seen := map[string]bool{}
		for _, m := range got {
			if seen[m.Symbol] {
				t.Fatalf("duplicate %s in sample", m.Symbol)
			}
			seen[m.Symbol] = true
		}
	}

	if got := c.Sample(rng, c.Len()+10); len(got) != c.Len() {
		t.Errorf("oversized sample = %d, want %d", len(got), c.Len())
	}
	if got := c.Sample(rng, 0); len(got) != 0 {
		t.Errorf("zero sample = %d", len(got))
	}

	after := c.Names()
	for i := range before {
		if before[i] != after[i] {
			t.Fatal("sampling reordered the catalog")
		}
	}
}
