package types

import (
	"fmt"
	"strings"
)

// Cereal identifies a kind of good held in the granary. The set is closed;
// the zero value is not a valid cereal.
type Cereal int

// Known cereals.
const (
	Rice Cereal = iota + 1
	Buckwheat
	Peas
	Millet
	Bulgur
)

var cerealNames = map[Cereal]string{
	Rice:      "RICE",
	Buckwheat: "BUCKWHEAT",
	Peas:      "PEAS",
	Millet:    "MILLET",
	Bulgur:    "BULGUR",
}

// Cereals lists every known cereal in declaration order.
var Cereals = []Cereal{Rice, Buckwheat, Peas, Millet, Bulgur}

// Valid reports whether c is a member of the enumeration.
func (c Cereal) Valid() bool {
	_, ok := cerealNames[c]
	return ok
}

// String returns the upper-case name of the cereal, or Cereal(n) for values
// outside the enumeration.
func (c Cereal) String() string {
	if name, ok := cerealNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Cereal(%d)", int(c))
}

// ParseCereal returns the cereal with the given name. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseCereal(name string) (Cereal, error) {
	want := strings.ToUpper(strings.TrimSpace(name))
	for _, c := range Cereals {
		if cerealNames[c] == want {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown cereal %q", ErrInvalidArgument, name)
}

// MarshalText encodes the cereal as its name.
func (c Cereal) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArgument, c)
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a cereal name produced by MarshalText.
func (c *Cereal) UnmarshalText(text []byte) error {
	parsed, err := ParseCereal(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
