// Package scenario loads groupbench run definitions from YAML.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/thebtf/grouper/internal/synthetic"
	"github.com/thebtf/grouper/pkg/grouping"
)

// Scenario describes one benchmark run: a synthetic dataset plus the
// grouping options to cluster it with. Zero-valued fields inherit the
// generator and engine defaults, so an empty scenario is runnable.
type Scenario struct {
	Name                 string   `yaml:"name"`
	Dims                 int      `yaml:"dims"`
	Blobs                int      `yaml:"blobs"`
	NodesPerBlob         int      `yaml:"nodes_per_blob"`
	Noise                float64  `yaml:"noise"`
	Seed                 int64    `yaml:"seed"`
	SimilarityPercentile float64  `yaml:"similarity_percentile"`
	MinClusterSize       int      `yaml:"min_cluster_size"`
	InsertThreshold      *float64 `yaml:"insert_threshold"`

	// TargetClusters, when positive, additionally tunes the threshold
	// against this target and reports the advisory result.
	TargetClusters int `yaml:"target_clusters"`
}

// Config is the top-level YAML structure.
type Config struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Generator returns the synthetic data parameters for the scenario.
func (s Scenario) Generator() synthetic.Config {
	return synthetic.Config{
		Dims:         s.Dims,
		Blobs:        s.Blobs,
		NodesPerBlob: s.NodesPerBlob,
		Noise:        s.Noise,
		Seed:         s.Seed,
	}
}

// Options returns the grouping options for the scenario.
func (s Scenario) Options() grouping.Options {
	return grouping.Options{
		SimilarityPercentile: s.SimilarityPercentile,
		MinClusterSize:       s.MinClusterSize,
		InsertThreshold:      s.InsertThreshold,
	}
}

// Default returns the scenario used when no config file is given. All
// parameters are left to downstream defaults.
func Default() Scenario {
	return Scenario{Name: "default"}
}

// Load reads scenarios from the YAML file at path. An empty path or a
// missing file yields the default scenario rather than an error; so does
// a file that defines none. Unnamed scenarios are named by position.
func Load(path string) ([]Scenario, error) {
	if path == "" {
		return []Scenario{Default()}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Scenario{Default()}, nil
		}
		return nil, fmt.Errorf("read scenario config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse scenario config: %w", err)
	}
	if len(cfg.Scenarios) == 0 {
		return []Scenario{Default()}, nil
	}

	for i := range cfg.Scenarios {
		if cfg.Scenarios[i].Name == "" {
			cfg.Scenarios[i].Name = fmt.Sprintf("scenario-%d", i)
		}
	}
	return cfg.Scenarios, nil
}
