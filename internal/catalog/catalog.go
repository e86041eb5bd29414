// Package catalog loads the crust material catalog the builder samples from.
// The catalog is read once and never mutated afterwards.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/planetgen/internal/entropy"
)

//go:embed materials.yaml
var defaultCatalog []byte

// Class separates pure elements from minerals.
type Class string

const (
	ClassElement Class = "element"
	ClassMineral Class = "mineral"
)

// Material is one catalog entry.
type Material struct {
	Symbol  string  `yaml:"symbol" json:"symbol"`
	Name    string  `yaml:"name" json:"name"`
	Class   Class   `yaml:"class" json:"class"`
	Formula string  `yaml:"formula,omitempty" json:"formula,omitempty"`
	Density float64 `yaml:"density" json:"density"` // g/cm³
}

// Catalog is an immutable pool of materials.
type Catalog struct {
	materials []Material
}

type file struct {
	Materials []Material `yaml:"materials"`
}

// ErrEmpty is returned when a catalog file lists no materials.
var ErrEmpty = errors.New("catalog has no materials")

// Load parses a YAML catalog.
func Load(r io.Reader) (*Catalog, error) {
	var f file
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(f.Materials) == 0 {
		return nil, ErrEmpty
	}
	seen := make(map[string]bool, len(f.Materials))
	for i, m := range f.Materials {
		if m.Symbol == "" || m.Name == "" {
			return nil, fmt.Errorf("material %d: symbol and name are required", i)
		}
		if seen[m.Symbol] {
			return nil, fmt.Errorf("material %d: duplicate symbol %q", i, m.Symbol)
		}
		seen[m.Symbol] = true
		switch m.Class {
		case ClassElement, ClassMineral:
		default:
			return nil, fmt.Errorf("material %q: unknown class %q", m.Symbol, m.Class)
		}
	}
	return &Catalog{materials: f.Materials}, nil
}

// LoadFile parses the catalog at path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Default returns the bundled catalog.
func Default() *Catalog {
	var f file
	if err := yaml.Unmarshal(defaultCatalog, &f); err != nil {
		panic(fmt.Sprintf("bundled catalog: %v", err))
	}
	return &Catalog{materials: f.Materials}
}

// Len returns the number of materials.
func (c *Catalog) Len() int {
	return len(c.materials)
}

// Materials returns a copy of every entry.
func (c *Catalog) Materials() []Material {
	out := make([]Material, len(c.materials))
	copy(out, c.materials)
	return out
}

// Names returns the material names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.materials))
	for i, m := range c.materials {
		out[i] = m.Name
	}
	return out
}

// Sample draws n distinct materials without replacement. n is clamped to
// the catalog size.
func (c *Catalog) Sample(rng *rand.Rand, n int) []Material {
	if c == nil {
		return nil
	}
	idx := entropy.SampleIndices(rng, len(c.materials), n)
	out := make([]Material, len(idx))
	for i, j := range idx {
		out[i] = c.materials[j]
	}
	return out
}
