package mesh

import (
	"github.com/montanaflynn/stats"
)

// TreeSummary describes the trees of one level.
type TreeSummary struct {
	Trees     int
	Nodes     int
	Leaves    int
	MaxDepth  float64
	MeanDepth float64
}

// Summary describes the shape of a grid.
type Summary struct {
	Configurations int
	Filled         int
	// Levels is indexed by Level.
	Levels [3]TreeSummary
}

// depths accumulates leaf depths of the trees of one level.
type depths struct {
	summary TreeSummary
	leaves  stats.Float64Data
}

func addTree[G, S any](d *depths, a *arena[G, S]) {
	d.summary.Trees++
	d.summary.Nodes += a.Len()
	for leaf := range a.Leaves() {
		d.leaves = append(d.leaves, float64(leaf.depth))
	}
}

func (d *depths) finish() TreeSummary {
	d.summary.Leaves = len(d.leaves)
	// both only fail on empty input, which leaves the zero values
	d.summary.MaxDepth, _ = stats.Max(d.leaves)
	d.summary.MeanDepth, _ = stats.Mean(d.leaves)
	return d.summary
}

// Summary walks the whole grid.
func (g *Grid) Summary() Summary {
	var s Summary
	var levels [3]depths
	addTree(&levels[PositionLevel], &g.octree.arena)
	for _, qt := range g.octree.Quadtrees() {
		addTree(&levels[AxisLevel], &qt.arena)
		for _, bt := range qt.Bitrees() {
			addTree(&levels[AngleLevel], &bt.arena)
			for _, conf := range bt.Configurations() {
				s.Configurations++
				if conf.Filled {
					s.Filled++
				}
			}
		}
	}
	for i := range levels {
		s.Levels[i] = levels[i].finish()
	}
	return s
}
