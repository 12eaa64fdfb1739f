// Package mesh implements a hierarchical, error-adaptive interpolation mesh over the relative
// configuration space of two rigid bodies.
//
// A configuration is a translation vector, an orientation axis and a twist angle about that axis.
// The mesh nests three indices: an Octree over the translation, whose corners each hold a
// Quadtree of spherical triangles over the axis, whose vertices each hold a Bitree of intervals
// over the angle. Every sampled configuration lives at a Bitree interval endpoint.
package mesh

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/floats"
)

// NumValues is the number of properties stored per configuration.
const NumValues = 7

// EHigh is the penalty stored in configurations that are unknown or too close to evaluate.
const EHigh = 100.0

// Values is the property vector of one configuration.
type Values [NumValues]float64

var (
	// HighValues is the sentinel vector held by configurations that have not been evaluated, and
	// the value of every configuration inside the short-range cutoff.
	HighValues = Values{EHigh, EHigh, EHigh, EHigh, EHigh, EHigh, EHigh}
	// ZeroValues is the value of every configuration beyond the long-range cutoff.
	ZeroValues = Values{}
)

// IsHigh reports whether v carries the high-penalty sentinel.
func (v Values) IsHigh() bool {
	return v[0] == EHigh && v[1] == EHigh
}

// lerp returns a + (b-a)*t.
func lerp(a, b Values, t float64) Values {
	out := a
	floats.AddScaled(out[:], t, b[:])
	floats.AddScaled(out[:], -t, a[:])
	return out
}

// blend returns the weighted sum of vals.
func blend(weights []float64, vals []Values) Values {
	var out Values
	for i := range vals {
		floats.AddScaled(out[:], weights[i], vals[i][:])
	}
	return out
}

// Configuration is one sample point of the mesh. It is shared, never copied, by every node whose
// region it bounds.
type Configuration struct {
	ID       string
	Position r3.Vector
	Axis     r3.Vector
	Angle    float64
	Values   Values
	Filled   bool
}

func newConfiguration(id string, position, axis r3.Vector, angle float64) *Configuration {
	return &Configuration{
		ID:       id,
		Position: position,
		Axis:     axis,
		Angle:    angle,
		Values:   HighValues,
	}
}
