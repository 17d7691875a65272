package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParsesScenarios(t *testing.T) {
	path := writeConfig(t, `
scenarios:
  - name: tight-blobs
    dims: 32
    blobs: 3
    nodes_per_blob: 20
    noise: 0.02
    seed: 9
    similarity_percentile: 90
    min_cluster_size: 3
    insert_threshold: 0.85
    target_clusters: 3
  - dims: 16
`)

	scenarios, err := Load(path)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)

	first := scenarios[0]
	assert.Equal(t, "tight-blobs", first.Name)
	assert.Equal(t, 32, first.Dims)
	assert.Equal(t, 3, first.Blobs)
	assert.Equal(t, 20, first.NodesPerBlob)
	assert.InDelta(t, 0.02, first.Noise, 1e-9)
	assert.Equal(t, int64(9), first.Seed)
	assert.InDelta(t, 90, first.SimilarityPercentile, 1e-9)
	assert.Equal(t, 3, first.MinClusterSize)
	require.NotNil(t, first.InsertThreshold)
	assert.InDelta(t, 0.85, *first.InsertThreshold, 1e-9)
	assert.Equal(t, 3, first.TargetClusters)

	// Unnamed scenarios are named by position.
	assert.Equal(t, "scenario-1", scenarios[1].Name)
	assert.Nil(t, scenarios[1].InsertThreshold)
}

func TestLoadMissingFileYieldsDefault(t *testing.T) {
	scenarios, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, "default", scenarios[0].Name)
}

func TestLoadEmptyPathYieldsDefault(t *testing.T) {
	scenarios, err := Load("")

	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, "default", scenarios[0].Name)
}

func TestLoadEmptyListYieldsDefault(t *testing.T) {
	path := writeConfig(t, "scenarios: []\n")

	scenarios, err := Load(path)
	require.NoError(t, err)
	require.Len(t, scenarios, 1)
	assert.Equal(t, "default", scenarios[0].Name)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "scenarios: [::not yaml")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestScenarioBridgesToGeneratorAndOptions(t *testing.T) {
	th := 0.9
	s := Scenario{
		Dims:                 8,
		Blobs:                2,
		NodesPerBlob:         4,
		Noise:                0.1,
		Seed:                 5,
		SimilarityPercentile: 88,
		MinClusterSize:       4,
		InsertThreshold:      &th,
	}

	gen := s.Generator()
	assert.Equal(t, 8, gen.Dims)
	assert.Equal(t, 2, gen.Blobs)
	assert.Equal(t, 4, gen.NodesPerBlob)
	assert.InDelta(t, 0.1, gen.Noise, 1e-9)
	assert.Equal(t, int64(5), gen.Seed)

	opts := s.Options()
	assert.InDelta(t, 88, opts.SimilarityPercentile, 1e-9)
	assert.Equal(t, 4, opts.MinClusterSize)
	require.NotNil(t, opts.InsertThreshold)
	assert.InDelta(t, 0.9, *opts.InsertThreshold, 1e-9)
}
