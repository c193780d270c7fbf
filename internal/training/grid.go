package training

import (
	"fmt"

	"alsclassifier/internal/config"
)

// ParamSet is one hyperparameter combination from the search grid.
type ParamSet struct {
	NTrees          int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	ClassWeight     string
}

func (p ParamSet) String() string {
	return fmt.Sprintf("n_trees=%d max_depth=%d min_split=%d min_leaf=%d class_weight=%s",
		p.NTrees, p.MaxDepth, p.MinSamplesSplit, p.MinSamplesLeaf, p.ClassWeight)
}

// ExpandGrid enumerates the full cartesian product in a fixed order, so
// that "first best wins" tie-breaking is deterministic.
func ExpandGrid(grid config.GridConfig) []ParamSet {
	nTrees := orDefaultInts(grid.NTrees, 100)
	maxDepth := orDefaultInts(grid.MaxDepth, 10)
	minSplit := orDefaultInts(grid.MinSamplesSplit, 2)
	minLeaf := orDefaultInts(grid.MinSamplesLeaf, 1)
	classWeight := grid.ClassWeight
	if len(classWeight) == 0 {
		classWeight = []string{"none"}
	}

	var params []ParamSet
	for _, n := range nTrees {
		for _, depth := range maxDepth {
			for _, split := range minSplit {
				for _, leaf := range minLeaf {
					for _, weight := range classWeight {
						params = append(params, ParamSet{
							NTrees:          n,
							MaxDepth:        depth,
							MinSamplesSplit: split,
							MinSamplesLeaf:  leaf,
							ClassWeight:     weight,
						})
					}
				}
			}
		}
	}
	return params
}

func orDefaultInts(values []int, fallback int) []int {
	if len(values) == 0 {
		return []int{fallback}
	}
	return values
}
