package mesh

import (
	"math"

	"github.com/golang/geo/r3"
)

// registry deduplicates grid references by location. Keys are bucketed on a lattice whose pitch
// equals the tolerance, so a lookup only has to compare against the 27 surrounding buckets.
type registry[T any] struct {
	tolerance float64
	buckets   map[[3]int64][]int
	keys      []r3.Vector
	values    []T
}

func newRegistry[T any](tolerance float64) *registry[T] {
	return &registry[T]{
		tolerance: tolerance,
		buckets:   make(map[[3]int64][]int),
	}
}

func (r *registry[T]) bucket(k r3.Vector) [3]int64 {
	return [3]int64{
		int64(math.Floor(k.X / r.tolerance)),
		int64(math.Floor(k.Y / r.tolerance)),
		int64(math.Floor(k.Z / r.tolerance)),
	}
}

// find returns the earliest registered value whose key lies within tolerance of k.
func (r *registry[T]) find(k r3.Vector) (T, bool) {
	b := r.bucket(k)
	best := -1
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, idx := range r.buckets[[3]int64{b[0] + dx, b[1] + dy, b[2] + dz}] {
					if r.keys[idx].Sub(k).Norm() >= r.tolerance {
						continue
					}
					if best < 0 || idx < best {
						best = idx
					}
				}
			}
		}
	}
	if best < 0 {
		var zero T
		return zero, false
	}
	return r.values[best], true
}

// getOrCreate returns the value registered near k, calling create and registering its result
// when there is none. The boolean reports whether create was called.
func (r *registry[T]) getOrCreate(k r3.Vector, create func() T) (T, bool) {
	if v, ok := r.find(k); ok {
		return v, false
	}
	v := create()
	b := r.bucket(k)
	r.buckets[b] = append(r.buckets[b], len(r.keys))
	r.keys = append(r.keys, k)
	r.values = append(r.values, v)
	return v, true
}

// all returns the registered values in insertion order.
func (r *registry[T]) all() []T {
	return r.values[:len(r.values):len(r.values)]
}

func (r *registry[T]) len() int {
	return len(r.values)
}
