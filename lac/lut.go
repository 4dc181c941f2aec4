// package lac loads named linear-attenuation-coefficient lookup tables and
// remaps voxel buffers through them.
package lac

import (
	"errors"
	"fmt"

	"github.com/HellmannM/anari-volume-viewer/common"
	"gonum.org/v1/gonum/interp"
)

// ErrInvalidLutIndex is returned when a LUT index is outside the loaded set.
var ErrInvalidLutIndex = errors.New("lut index out of range")

// Errors reported while building tables.
var (
	errLutNoName        = errors.New("lut missing a name")
	errLutTooFewEntries = errors.New("lut needs at least two control points")
	errLutNotIncreasing = errors.New("lut control points must be strictly increasing")
)

// Point is one control point of an attenuation table: a raw sample value and
// the coefficient it maps to.
type Point struct {
	In  float64 `yaml:"in"`
	Out float64 `yaml:"out"`
}

// Lut is one named attenuation table. Lookups interpolate piecewise-linearly
// between control points; inputs outside the table's domain take the
// boundary coefficient.
type Lut struct {
	name   string
	lo, hi float64
	pl     interp.PiecewiseLinear
}

// NewLut builds a table from its control points.
//
// Parameters:
//   - name: the table name shown in the LUT selection UI
//   - points: at least two control points with strictly increasing In values
//
// Returns:
//   - Lut: the fitted table
//   - error: error if the name is empty or the points are unusable
func NewLut(name string, points []Point) (Lut, error) {
	if name == "" {
		return Lut{}, errLutNoName
	}
	if len(points) < 2 {
		return Lut{}, fmt.Errorf("%w: %q has %d", errLutTooFewEntries, name, len(points))
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		if i > 0 && p.In <= points[i-1].In {
			return Lut{}, fmt.Errorf("%w: %q at point %d", errLutNotIncreasing, name, i)
		}
		xs[i] = p.In
		ys[i] = p.Out
	}
	l := Lut{name: name, lo: xs[0], hi: xs[len(xs)-1]}
	if err := l.pl.Fit(xs, ys); err != nil {
		return Lut{}, fmt.Errorf("lut %q: %w", name, err)
	}
	return l, nil
}

// mustLut builds a built-in table and panics on error. Only used with
// constant control points.
func mustLut(name string, points []Point) Lut {
	l, err := NewLut(name, points)
	if err != nil {
		panic(fmt.Sprintf("lac: built-in lut %s: %v", name, err))
	}
	return l
}

// Name returns the table name.
func (l *Lut) Name() string {
	return l.name
}

// Eval maps one raw sample value to its attenuation coefficient. Inputs are
// clamped to the table's domain first, so out-of-range samples take the
// boundary coefficient.
//
// Parameters:
//   - v: the raw sample value
//
// Returns:
//   - float64: the interpolated coefficient
func (l *Lut) Eval(v float64) float64 {
	return l.pl.Predict(common.Clamp(v, l.lo, l.hi))
}
