// Package evaluator contains analytic stand-ins for the expensive property computation a mesh
// is built from. They are smooth or deliberately discontinuous fields with no physical meaning,
// used to exercise and demonstrate refinement.
package evaluator

import (
	"context"
	"math"
	"slices"
	"sync/atomic"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/pairmesh/mesh"
)

// Constant returns an evaluator that always reports v.
func Constant(v mesh.Values) mesh.Evaluator {
	return mesh.EvaluatorFunc(func(r3.Vector, r3.Vector, float64) mesh.Values {
		return v
	})
}

// Ripple is a smooth field that decays with distance and is modulated by the orientation.
type Ripple struct {
	// Decay is the distance over which the field falls by a factor of e.
	Decay float64
}

// Evaluate implements mesh.Evaluator. The first component is the scalar field; the next three
// its negative gradient with respect to position and the last three the axis scaled by it.
func (r Ripple) Evaluate(ctx context.Context, position, axis r3.Vector, angle float64) (mesh.Values, error) {
	if err := ctx.Err(); err != nil {
		return mesh.Values{}, err
	}
	decay := r.Decay
	if decay <= 0 {
		decay = 4
	}
	dist := position.Norm()
	modulation := 1 + 0.5*axis.Normalize().Z*math.Cos(angle)
	field := math.Exp(-dist/decay) * modulation

	var v mesh.Values
	v[0] = field
	if dist > 0 {
		force := position.Mul(field / (decay * dist))
		v[1], v[2], v[3] = force.X, force.Y, force.Z
	}
	torque := axis.Normalize().Mul(field)
	v[4], v[5], v[6] = torque.X, torque.Y, torque.Z
	return v, nil
}

// Spike is Base everywhere except along Axis, where it is Peak.
type Spike struct {
	Axis r3.Vector
	Base float64
	Peak float64
}

// Evaluate implements mesh.Evaluator.
func (s Spike) Evaluate(ctx context.Context, position, axis r3.Vector, angle float64) (mesh.Values, error) {
	if err := ctx.Err(); err != nil {
		return mesh.Values{}, err
	}
	x := s.Base
	if axis.Normalize().Dot(s.Axis.Normalize()) > 1-1e-9 {
		x = s.Peak
	}
	var v mesh.Values
	for i := range v {
		v[i] = x
	}
	return v, nil
}

// Counter wraps an evaluator and counts the calls made through it.
type Counter struct {
	mesh.Evaluator
	calls atomic.Int64
}

// NewCounter returns a Counter around eval.
func NewCounter(eval mesh.Evaluator) *Counter {
	return &Counter{Evaluator: eval}
}

// Evaluate implements mesh.Evaluator.
func (c *Counter) Evaluate(ctx context.Context, position, axis r3.Vector, angle float64) (mesh.Values, error) {
	c.calls.Add(1)
	return c.Evaluator.Evaluate(ctx, position, axis, angle)
}

// Calls returns the number of calls so far.
func (c *Counter) Calls() int64 {
	return c.calls.Load()
}

var named = map[string]func() mesh.Evaluator{
	"constant": func() mesh.Evaluator { return Constant(mesh.Values{1, 1, 1, 1, 1, 1, 1}) },
	"ripple":   func() mesh.Evaluator { return Ripple{Decay: 4} },
	"spike":    func() mesh.Evaluator { return Spike{Axis: r3.Vector{Z: 1}, Base: 1, Peak: 50} },
}

// Names lists the evaluators available through ByName.
func Names() []string {
	names := lo.Keys(named)
	slices.Sort(names)
	return names
}

// ByName returns the named evaluator.
func ByName(name string) (mesh.Evaluator, error) {
	newEval, ok := named[name]
	if !ok {
		return nil, errors.Errorf("unknown evaluator %q, expected one of %v", name, Names())
	}
	return newEval(), nil
}
