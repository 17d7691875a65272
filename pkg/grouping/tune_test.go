package grouping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// twoPairs has an exact similarity structure: 1.0 inside each pair, 0.0
// across, so every percentile in the 80-99 range resolves to a threshold
// of 1.0 and exactly two components.
func twoPairs() []*Node[string] {
	return []*Node[string]{
		testNode("a0", 1, 0, 0),
		testNode("a1", 1, 0, 0),
		testNode("b0", 0, 1, 0),
		testNode("b1", 0, 1, 0),
	}
}

type TuneSuite struct {
	suite.Suite
}

func TestTuneSuite(t *testing.T) {
	suite.Run(t, new(TuneSuite))
}

func (s *TuneSuite) TestEmptyGrouperReturnsDefaults() {
	g := New[string](DefaultOptions())

	res := g.TuneThresholdForTargetClusters(5, TuneOptions{})

	assert.InDelta(s.T(), DefaultSimilarityPercentile, res.Percentile, 1e-9)
	assert.Equal(s.T(), 0, res.ClusterCount)
	assert.InDelta(s.T(), 0.8, res.Threshold, 1e-9)
}

func (s *TuneSuite) TestBinarySearchConvergence() {
	tests := []struct {
		name           string
		maxClusters    int
		opts           TuneOptions
		wantPercentile float64
		wantClusters   int
		wantThreshold  float64
	}{
		{
			name:           "target met everywhere converges to the bottom of the range",
			maxClusters:    2,
			opts:           TuneOptions{},
			wantPercentile: 81,
			wantClusters:   2,
			wantThreshold:  1.0,
		},
		{
			name:           "unreachable target falls back to the upper bound",
			maxClusters:    1,
			opts:           TuneOptions{},
			wantPercentile: 99,
			wantClusters:   2,
			wantThreshold:  1.0,
		},
		{
			name:           "generous target behaves like the exact one",
			maxClusters:    10,
			opts:           TuneOptions{},
			wantPercentile: 81,
			wantClusters:   2,
			wantThreshold:  1.0,
		},
		{
			name:           "custom range and precision",
			maxClusters:    2,
			opts:           TuneOptions{MinPercentile: 10, MaxPercentile: 20, Precision: 5},
			wantPercentile: 15,
			wantClusters:   1,
			wantThreshold:  0.0,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			g := New[string](DefaultOptions())
			g.AddNodes(twoPairs(), true)

			res := g.TuneThresholdForTargetClusters(tt.maxClusters, tt.opts)

			assert.InDelta(s.T(), tt.wantPercentile, res.Percentile, 1e-9)
			assert.Equal(s.T(), tt.wantClusters, res.ClusterCount)
			assert.InDelta(s.T(), tt.wantThreshold, res.Threshold, 1e-9)
		})
	}
}

func (s *TuneSuite) TestSingleNode() {
	g := New[string](DefaultOptions())
	g.AddNode(testNode("a", 1, 0, 0))

	res := g.TuneThresholdForTargetClusters(1, TuneOptions{})

	// One node has no pair distribution; the seed threshold applies at
	// every percentile and the search walks to the bottom of the range.
	assert.InDelta(s.T(), 81, res.Percentile, 1e-9)
	assert.Equal(s.T(), 1, res.ClusterCount)
	assert.InDelta(s.T(), 0.8, res.Threshold, 1e-9)
}

func (s *TuneSuite) TestZeroOptionsMatchExplicitDefaults() {
	g := New[string](DefaultOptions())
	g.AddNodes(twoPairs(), true)

	implicit := g.TuneThresholdForTargetClusters(2, TuneOptions{})
	explicit := g.TuneThresholdForTargetClusters(2, TuneOptions{
		MinPercentile: 80,
		MaxPercentile: 99,
		Precision:     1,
	})

	assert.Equal(s.T(), explicit, implicit)
}

func (s *TuneSuite) TestTuneDoesNotMutateGrouperState() {
	g := New[string](DefaultOptions())
	g.AddNodes(twoPairs(), true)

	before := g.GetClusters()
	reclusters := g.Stats().Reclusters
	threshold := g.Stats().LastThreshold

	_ = g.TuneThresholdForTargetClusters(1, TuneOptions{})

	after := g.GetClusters()
	require.Len(s.T(), after, len(before))
	for i := range before {
		assert.Equal(s.T(), before[i].ID, after[i].ID)
		assert.Len(s.T(), after[i].Nodes, len(before[i].Nodes))
	}
	assert.Equal(s.T(), reclusters, g.Stats().Reclusters)
	assert.InDelta(s.T(), threshold, g.Stats().LastThreshold, 1e-12)
	assert.InDelta(s.T(), DefaultSimilarityPercentile, g.Options().SimilarityPercentile, 1e-9)
}

func (s *TuneSuite) TestSmallComponentsCountOnceNotPerNode() {
	// With a minimum cluster size larger than any component, a recluster
	// explodes everything into singletons, but tuning still counts whole
	// components.
	g := New[string](Options{SimilarityPercentile: 94, MinClusterSize: 10})
	g.AddNodes(twoPairs(), true)
	require.Equal(s.T(), 4, g.ClusterCount())

	res := g.TuneThresholdForTargetClusters(2, TuneOptions{})

	assert.Equal(s.T(), 2, res.ClusterCount)
}
