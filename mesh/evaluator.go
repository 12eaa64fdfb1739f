package mesh

import (
	"context"

	"github.com/golang/geo/r3"
)

// Evaluator computes the property values of a configuration. It is the expensive computation the
// mesh stands in for, and may be called concurrently.
type Evaluator interface {
	Evaluate(ctx context.Context, position, axis r3.Vector, angle float64) (Values, error)
}

// EvaluatorFunc adapts a pure function to an Evaluator.
type EvaluatorFunc func(position, axis r3.Vector, angle float64) Values

// Evaluate calls f.
func (f EvaluatorFunc) Evaluate(_ context.Context, position, axis r3.Vector, angle float64) (Values, error) {
	return f(position, axis, angle), nil
}
