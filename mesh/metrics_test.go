package mesh

import (
	"context"
	"testing"

	"go.opencensus.io/stats/view"
	"go.viam.com/test"

	"go.viam.com/pairmesh/logging"
)

func TestViews(t *testing.T) {
	test.That(t, RegisterViews(), test.ShouldBeNil)
	defer UnregisterViews()

	cfg := DefaultConfig()
	cfg.Symmetry = SymmetryXYZ
	unbounded(&cfg)
	cfg.MaxDepth = MaxDepth{Position: 3, Axis: 4, Angle: 3}
	g, err := NewGrid(cfg, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	stats, err := g.Refine(context.Background(), EvaluatorFunc(poleSpike), 0.1)
	test.That(t, err, test.ShouldBeNil)

	rows, err := view.RetrieveData(EvaluationsView.Name)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rows, test.ShouldHaveLength, 1)
	test.That(t, rows[0].Data.(*view.SumData).Value, test.ShouldEqual, float64(g.Len()))

	rows, err = view.RetrieveData(SubdivisionsView.Name)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rows, test.ShouldHaveLength, 3)
	total := map[string]float64{}
	for _, row := range rows {
		test.That(t, row.Tags, test.ShouldHaveLength, 1)
		total[row.Tags[0].Value] = row.Data.(*view.SumData).Value
	}
	test.That(t, total, test.ShouldResemble, map[string]float64{
		"position": float64(stats.Subdivisions[PositionLevel]),
		"axis":     float64(stats.Subdivisions[AxisLevel]),
		"angle":    float64(stats.Subdivisions[AngleLevel]),
	})
	test.That(t, total["axis"], test.ShouldEqual, float64(27*32))
}
