package grouping

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"
)

// stats tracks engine activity with atomic counters so a snapshot can be
// read while another goroutine owns the grouper.
type stats struct {
	startTime time.Time

	nodesAdded         atomic.Int64
	nodesRemoved       atomic.Int64
	reclusters         atomic.Int64
	clustersCreated    atomic.Int64
	comparisons        atomic.Int64
	cacheInvalidations atomic.Int64

	lastReclusterNodes    atomic.Int64
	lastReclusterClusters atomic.Int64
	lastReclusterMicros   atomic.Int64
	lastThresholdBits     atomic.Uint64
}

func (s *stats) init() {
	s.startTime = time.Now()
	s.lastThresholdBits.Store(math.Float64bits(defaultThreshold))
}

func (s *stats) recordRecluster(nodes, clusters int, threshold float64, took time.Duration) {
	s.lastReclusterNodes.Store(int64(nodes))
	s.lastReclusterClusters.Store(int64(clusters))
	s.lastReclusterMicros.Store(took.Microseconds())
	s.lastThresholdBits.Store(math.Float64bits(threshold))
}

// StatsSnapshot is a point-in-time view of engine activity.
type StatsSnapshot struct {
	// Mutation counts
	NodesAdded   int64
	NodesRemoved int64

	// Clustering activity
	Reclusters            int64
	ClustersCreated       int64
	SimilarityComparisons int64
	CacheInvalidations    int64

	// Most recent full recluster
	LastReclusterNodes    int64
	LastReclusterClusters int64
	LastReclusterTime     time.Duration
	LastThreshold         float64

	// Runtime
	Uptime time.Duration
}

// Stats returns a snapshot of the engine counters.
func (g *Grouper[T]) Stats() StatsSnapshot {
	return StatsSnapshot{
		NodesAdded:            g.stats.nodesAdded.Load(),
		NodesRemoved:          g.stats.nodesRemoved.Load(),
		Reclusters:            g.stats.reclusters.Load(),
		ClustersCreated:       g.stats.clustersCreated.Load(),
		SimilarityComparisons: g.stats.comparisons.Load(),
		CacheInvalidations:    g.stats.cacheInvalidations.Load(),
		LastReclusterNodes:    g.stats.lastReclusterNodes.Load(),
		LastReclusterClusters: g.stats.lastReclusterClusters.Load(),
		LastReclusterTime:     time.Duration(g.stats.lastReclusterMicros.Load()) * time.Microsecond,
		LastThreshold:         math.Float64frombits(g.stats.lastThresholdBits.Load()),
		Uptime:                time.Since(g.stats.startTime),
	}
}

// String returns a human-readable representation of the snapshot.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(`Grouper Stats:
  Nodes: +%d / -%d
  Reclusters: %d (clusters created: %d)
  Comparisons: %d (cache invalidations: %d)
  Last Recluster: %d nodes -> %d clusters, threshold %.4f, took %v
  Uptime: %v`,
		s.NodesAdded, s.NodesRemoved,
		s.Reclusters, s.ClustersCreated,
		s.SimilarityComparisons, s.CacheInvalidations,
		s.LastReclusterNodes, s.LastReclusterClusters, s.LastThreshold, s.LastReclusterTime,
		s.Uptime,
	)
}
