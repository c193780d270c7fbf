package models

import (
	"fmt"
)

type ModelConfig struct {
	Algorithm       string
	NTrees          int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	ClassWeight     string
	Seed            int64
}

func CreateModel(config ModelConfig) (Model, error) {
	switch config.Algorithm {
	case "forest":
		if config.NTrees <= 0 {
			config.NTrees = 100
		}
		if config.MaxDepth <= 0 {
			config.MaxDepth = 10
		}
		if config.MinSamplesSplit <= 0 {
			config.MinSamplesSplit = 2
		}
		if config.MinSamplesLeaf <= 0 {
			config.MinSamplesLeaf = 1
		}
		return NewRandomForest(config.NTrees, config.MaxDepth, config.MinSamplesSplit,
			config.MinSamplesLeaf, config.ClassWeight, config.Seed), nil

	case "tree":
		if config.MaxDepth <= 0 {
			config.MaxDepth = 10
		}
		if config.MinSamplesSplit <= 0 {
			config.MinSamplesSplit = 2
		}
		if config.MinSamplesLeaf <= 0 {
			config.MinSamplesLeaf = 1
		}
		return NewDecisionTree(config.MaxDepth, config.MinSamplesSplit,
			config.MinSamplesLeaf, config.ClassWeight), nil

	default:
		return nil, fmt.Errorf("unknown algorithm: %s", config.Algorithm)
	}
}
