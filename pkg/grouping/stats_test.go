package grouping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsTracksMutations(t *testing.T) {
	g := New[string](DefaultOptions())
	a := testNode("a", 1, 0, 0)
	b := testNode("b", 1, 0, 0)

	g.AddNodes([]*Node[string]{a, b}, true)

	snap := g.Stats()
	assert.Equal(t, int64(2), snap.NodesAdded)
	assert.Equal(t, int64(1), snap.Reclusters)
	assert.Equal(t, int64(2), snap.LastReclusterNodes)
	assert.Equal(t, int64(1), snap.LastReclusterClusters)
	assert.Positive(t, snap.SimilarityComparisons)
	assert.GreaterOrEqual(t, snap.Uptime.Nanoseconds(), int64(0))

	require.True(t, g.RemoveNode(a))
	g.AddNode(testNode("c", 0, 1, 0))

	snap = g.Stats()
	assert.Equal(t, int64(3), snap.NodesAdded)
	assert.Equal(t, int64(1), snap.NodesRemoved)
	assert.GreaterOrEqual(t, snap.CacheInvalidations, int64(1))
}

func TestStatsSeedThresholdBeforeFirstRecluster(t *testing.T) {
	g := New[string](DefaultOptions())

	assert.InDelta(t, 0.8, g.Stats().LastThreshold, 1e-9)
}

func TestStatsSnapshotString(t *testing.T) {
	g := New[string](DefaultOptions())
	g.AddNodes([]*Node[string]{
		testNode("a", 1, 0, 0),
		testNode("b", 1, 0, 0),
	}, true)

	out := g.Stats().String()
	assert.Contains(t, out, "Reclusters: 1")
	assert.Contains(t, out, "Last Recluster: 2 nodes -> 1 clusters")
}
