package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ModelDir   string         `yaml:"model_dir"`
	ReportPath string         `yaml:"report_path"`
	Training   TrainingConfig `yaml:"training"`
}

type TrainingConfig struct {
	TestSize    float64           `yaml:"test_size"`
	Seed        int64             `yaml:"seed"`
	CVFolds     int               `yaml:"cv_folds"`
	Oversampler OversamplerConfig `yaml:"oversampler"`
	Grid        GridConfig        `yaml:"grid"`
}

type OversamplerConfig struct {
	KNeighbors int `yaml:"k_neighbors"`
}

type GridConfig struct {
	NTrees          []int    `yaml:"n_trees"`
	MaxDepth        []int    `yaml:"max_depth"`
	MinSamplesSplit []int    `yaml:"min_samples_split"`
	MinSamplesLeaf  []int    `yaml:"min_samples_leaf"`
	ClassWeight     []string `yaml:"class_weight"`
}

func Default() *Config {
	return &Config{
		ModelDir:   "models",
		ReportPath: "reports/diagnostics.png",
		Training: TrainingConfig{
			TestSize: 0.2,
			Seed:     42,
			CVFolds:  5,
			Oversampler: OversamplerConfig{
				KNeighbors: 5,
			},
			Grid: GridConfig{
				NTrees:          []int{100, 200},
				MaxDepth:        []int{6, 10, 14},
				MinSamplesSplit: []int{2, 5},
				MinSamplesLeaf:  []int{1, 2},
				ClassWeight:     []string{"none", "balanced"},
			},
		},
	}
}

// Load reads a YAML config file, falling back to defaults for a missing
// file. A file that exists but does not parse is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Training.TestSize <= 0 || c.Training.TestSize >= 1 {
		return fmt.Errorf("test_size must be between 0 and 1, got %v", c.Training.TestSize)
	}
	if c.Training.CVFolds < 2 {
		return fmt.Errorf("cv_folds must be at least 2, got %d", c.Training.CVFolds)
	}
	if len(c.Training.Grid.NTrees) == 0 || len(c.Training.Grid.MaxDepth) == 0 {
		return fmt.Errorf("hyperparameter grid must include n_trees and max_depth values")
	}
	return nil
}
