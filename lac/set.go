package lac

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Set is an ordered collection of named attenuation tables with one active
// selection. The selection is rejected, never clamped, when out of range.
type Set struct {
	luts   []Lut
	active int
}

// NewSet creates a set over the given tables. The first table starts active.
//
// Parameters:
//   - luts: the tables in selection order
//
// Returns:
//   - *Set: the new set
func NewSet(luts ...Lut) *Set {
	return &Set{luts: luts}
}

// Len returns the number of tables in the set.
func (s *Set) Len() int {
	return len(s.luts)
}

// Names returns the table names in selection order.
func (s *Set) Names() []string {
	names := make([]string, len(s.luts))
	for i := range s.luts {
		names[i] = s.luts[i].name
	}
	return names
}

// Active reports the selected table index.
func (s *Set) Active() int {
	return s.active
}

// SetActive selects the table used by subsequent remaps. On error the
// previous selection stays in place.
//
// Parameters:
//   - index: the table index to select
//
// Returns:
//   - error: ErrInvalidLutIndex when index is outside the set
func (s *Set) SetActive(index int) error {
	if index < 0 || index >= len(s.luts) {
		return fmt.Errorf("%w: %d of %d", ErrInvalidLutIndex, index, len(s.luts))
	}
	s.active = index
	return nil
}

// ActiveLut returns the selected table.
//
// Returns:
//   - *Lut: the selected table
//   - error: ErrInvalidLutIndex when the set is empty
func (s *Set) ActiveLut() (*Lut, error) {
	if len(s.luts) == 0 {
		return nil, fmt.Errorf("%w: set is empty", ErrInvalidLutIndex)
	}
	return &s.luts[s.active], nil
}

// lutFile mirrors the YAML document layout of a LUT table file.
type lutFile struct {
	Luts []struct {
		Name   string  `yaml:"name"`
		Values []Point `yaml:"values"`
	} `yaml:"luts"`
}

// Load reads a YAML table file into a set.
//
// Parameters:
//   - path: the table file path
//
// Returns:
//   - *Set: the loaded set with the first table active
//   - error: error if the file is missing, malformed, or holds no valid table
func Load(path string) (*Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lac file: %w", err)
	}
	var doc lutFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("lac file %q: %w", path, err)
	}
	if len(doc.Luts) == 0 {
		return nil, fmt.Errorf("lac file %q: no luts defined", path)
	}
	luts := make([]Lut, 0, len(doc.Luts))
	for _, entry := range doc.Luts {
		l, err := NewLut(entry.Name, entry.Values)
		if err != nil {
			return nil, fmt.Errorf("lac file %q: %w", path, err)
		}
		luts = append(luts, l)
	}
	return NewSet(luts...), nil
}

// Default returns the built-in table set used when no LUT file is given.
// Coefficients approximate mass attenuation at diagnostic energies over a
// 16-bit raw sample domain.
func Default() *Set {
	return NewSet(
		mustLut("water", []Point{{In: 0, Out: 0}, {In: 1024, Out: 0.2059}, {In: 65535, Out: 13.18}}),
		mustLut("bone", []Point{{In: 0, Out: 0}, {In: 1024, Out: 0.5730}, {In: 65535, Out: 36.67}}),
		mustLut("air", []Point{{In: 0, Out: 0}, {In: 1024, Out: 0.0004}, {In: 65535, Out: 0.0256}}),
	)
}
