package mesh

import (
	"context"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
	"go.viam.com/utils"
)

var (
	levelKey = tag.MustNewKey("level")

	subdivisions = stats.Int64("pairmesh/subdivisions", "nodes subdivided by refinement", stats.UnitDimensionless)
	evaluations  = stats.Int64("pairmesh/evaluations", "evaluator calls made to fill configurations", stats.UnitDimensionless)

	// SubdivisionsView totals subdivisions per refinement level.
	SubdivisionsView = &view.View{
		Name:        "pairmesh/subdivisions",
		Description: "nodes subdivided by refinement, per level",
		Measure:     subdivisions,
		TagKeys:     []tag.Key{levelKey},
		Aggregation: view.Sum(),
	}
	// EvaluationsView totals evaluator calls.
	EvaluationsView = &view.View{
		Name:        "pairmesh/evaluations",
		Description: "evaluator calls made to fill configurations",
		Measure:     evaluations,
		Aggregation: view.Sum(),
	}
)

// RegisterViews registers the mesh views with opencensus.
func RegisterViews() error {
	return view.Register(SubdivisionsView, EvaluationsView)
}

// UnregisterViews undoes RegisterViews.
func UnregisterViews() {
	view.Unregister(SubdivisionsView, EvaluationsView)
}

func recordSubdivisions(ctx context.Context, level Level, n int) {
	utils.UncheckedError(stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(levelKey, level.String())},
		subdivisions.M(int64(n))))
}

func recordEvaluations(ctx context.Context, n int64) {
	stats.Record(ctx, evaluations.M(n))
}
