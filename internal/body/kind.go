package body

import "fmt"

// Kind tags the variant a Body carries. Star kinds carry StarData, planet
// kinds carry PlanetData.
type Kind uint8

const (
	KindStar Kind = iota // Main-sequence star
	KindWhiteDwarf
	KindSubTerran
	KindTerran
	KindSuperTerran
	KindMiniNeptunian
	KindIceGiant
	KindGasGiant
)

var kindNames = [...]string{
	KindStar:          "Star",
	KindWhiteDwarf:    "WhiteDwarf",
	KindSubTerran:     "SubTerran",
	KindTerran:        "Terran",
	KindSuperTerran:   "SuperTerran",
	KindMiniNeptunian: "MiniNeptunian",
	KindIceGiant:      "IceGiant",
	KindGasGiant:      "GasGiant",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsStar reports whether k carries StarData.
func (k Kind) IsStar() bool {
	switch k {
	case KindStar, KindWhiteDwarf:
		return true
	default:
		return false
	}
}

// IsPlanet reports whether k carries PlanetData.
func (k Kind) IsPlanet() bool {
	switch k {
	case KindSubTerran, KindTerran, KindSuperTerran, KindMiniNeptunian, KindIceGiant, KindGasGiant:
		return true
	default:
		return false
	}
}

// Rocky reports whether k is one of the three terrestrial kinds.
func (k Kind) Rocky() bool {
	return k == KindSubTerran || k == KindTerran || k == KindSuperTerran
}

// ParseKind is the inverse of String.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, s)
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
