package builder

import (
	"fmt"
	"math/rand"

	"github.com/talgya/planetgen/internal/body"
)

var (
	namePrefixes = []string{
		"Ar", "Bel", "Cor", "Dra", "Eos", "Fen", "Gal", "Hel", "Ith", "Jor",
		"Kal", "Lum", "Mor", "Nex", "Ory", "Pyr", "Qua", "Rhe", "Sel", "Tav",
		"Ul", "Ves", "Wyn", "Xan", "Yth", "Zer", "Ael", "Cae", "Tyr", "Nim",
	}
	nameSuffixes = []string{
		"a", "on", "is", "ara", "eth", "ion", "us", "ix", "ora", "ene",
		"ax", "ium", "yr", "oth", "ea", "an", "os", "ine", "ula", "emi",
		"ar", "iel", "une", "esh", "ova",
	}
)

// namer hands out syllable names unique within one system.
type namer struct {
	rng  *rand.Rand
	used map[string]bool
}

func newNamer(rng *rand.Rand) *namer {
	return &namer{rng: rng, used: make(map[string]bool)}
}

func (n *namer) reserve(name string) {
	n.used[name] = true
}

// next returns a fresh name, retrying on collision. ok is false when every
// attempt collided.
func (n *namer) next() (name string, ok bool) {
	for i := 0; i < NameAttempts; i++ {
		name = namePrefixes[n.rng.Intn(len(namePrefixes))] + nameSuffixes[n.rng.Intn(len(nameSuffixes))]
		if !n.used[name] {
			n.used[name] = true
			return name, true
		}
	}
	return "", false
}

// starName returns a catalogue designation such as "HD 40307".
func starName(rng *rand.Rand, class body.SpectralClass) string {
	return fmt.Sprintf("%s %d", class.Prefix, 1000+rng.Intn(99000))
}
