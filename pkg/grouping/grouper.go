// Package grouping implements incremental similarity-graph clustering of
// embedding vectors. Edges connect node pairs whose cosine similarity
// reaches an adaptive, percentile-derived threshold; clusters are the
// connected components of that graph. The number of clusters is never
// fixed up front, it follows from the data.
package grouping

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/thebtf/grouper/pkg/embedding"
)

// Grouper clusters embedded nodes incrementally. Single inserts route a
// node into the most similar existing cluster by centroid; Recluster
// rebuilds the whole grouping from the full similarity graph.
//
// A Grouper is not safe for concurrent use. Callers sharing one across
// goroutines must serialize access; Stats alone may be read concurrently.
type Grouper[T any] struct {
	opts Options

	nodes       []*Node[T]
	clusters    []*Cluster[T]
	nodeCluster map[*Node[T]]string

	clusterSeq int

	// normalized caches unit-length embeddings per node, filled lazily.
	normalized map[*Node[T]]embedding.Vector

	// pairwise caches the sorted similarity distribution behind
	// percentile thresholds; dropped whenever the node set changes.
	pairwise      []float64
	pairwiseValid bool

	lastThreshold float64

	stats stats
	inst  *instruments
}

// New creates a Grouper. Zero-valued option fields fall back to
// DefaultOptions.
func New[T any](opts Options) *Grouper[T] {
	g := &Grouper[T]{
		opts:          opts.withDefaults(),
		nodeCluster:   make(map[*Node[T]]string),
		normalized:    make(map[*Node[T]]embedding.Vector),
		lastThreshold: defaultThreshold,
	}
	g.stats.init()

	if opts.Meter != nil {
		inst, err := newInstruments(opts.Meter)
		if err != nil {
			log.Warn().Err(err).Msg("grouper instrumentation disabled")
		} else {
			g.inst = inst
		}
	}
	return g
}

// AddNode inserts one node without a full recluster. The node joins the
// cluster whose centroid is most similar to it at or above the insert
// threshold, or starts a new singleton cluster when none qualifies.
func (g *Grouper[T]) AddNode(n *Node[T]) {
	g.nodes = append(g.nodes, n)
	g.normalizedFor(n)
	g.invalidatePairwise()
	g.stats.nodesAdded.Add(1)
	g.inst.countNodesAdded(1)

	if ci := g.bestClusterIndex(n); ci >= 0 {
		g.joinCluster(ci, n)
		return
	}
	g.newSingletonCluster(n)
}

// AddNodes inserts nodes in bulk. With reclusterAfter true the grouping
// is rebuilt once at the end, which is cheaper and more accurate than
// routing each node individually. With reclusterAfter false every node
// becomes its own singleton cluster with no similarity comparisons at
// all; callers are expected to Recluster later.
func (g *Grouper[T]) AddNodes(nodes []*Node[T], reclusterAfter bool) {
	g.nodes = append(g.nodes, nodes...)
	g.invalidatePairwise()
	g.stats.nodesAdded.Add(int64(len(nodes)))
	g.inst.countNodesAdded(int64(len(nodes)))

	log.Debug().
		Int("nodes", len(nodes)).
		Bool("recluster", reclusterAfter).
		Msg("bulk insert")

	if reclusterAfter {
		g.Recluster()
		return
	}
	for _, n := range nodes {
		g.newSingletonCluster(n)
	}
}

// RemoveNode detaches a previously added node, identified by pointer,
// and reports whether it was present. The owning cluster shrinks and its
// centroid is recomputed; a cluster left empty is dropped.
func (g *Grouper[T]) RemoveNode(n *Node[T]) bool {
	ni := -1
	for i, cand := range g.nodes {
		if cand == n {
			ni = i
			break
		}
	}
	if ni < 0 {
		return false
	}

	g.nodes = append(g.nodes[:ni], g.nodes[ni+1:]...)
	delete(g.normalized, n)
	g.invalidatePairwise()
	g.stats.nodesRemoved.Add(1)
	g.inst.countNodesRemoved(1)

	id, ok := g.nodeCluster[n]
	delete(g.nodeCluster, n)
	if !ok {
		return true
	}
	ci := g.clusterIndex(id)
	if ci < 0 {
		return true
	}

	c := g.clusters[ci]
	remaining := make([]*Node[T], 0, len(c.Nodes)-1)
	for _, m := range c.Nodes {
		if m != n {
			remaining = append(remaining, m)
		}
	}
	if len(remaining) == 0 {
		g.clusters = append(g.clusters[:ci], g.clusters[ci+1:]...)
		return true
	}

	g.clusters[ci] = &Cluster[T]{ID: c.ID, Nodes: remaining, Centroid: centroidOf(remaining)}
	for _, m := range remaining {
		g.nodeCluster[m] = c.ID
	}
	return true
}

// GetClusters returns a copy of the current clusters in creation order.
// Mutating the result does not affect the engine.
func (g *Grouper[T]) GetClusters() []*Cluster[T] {
	out := make([]*Cluster[T], len(g.clusters))
	for i, c := range g.clusters {
		out[i] = c.clone()
	}
	return out
}

// GetClusterForNode returns a copy of the cluster currently holding n.
// The second return is false when the node is unknown or was removed.
func (g *Grouper[T]) GetClusterForNode(n *Node[T]) (*Cluster[T], bool) {
	id, ok := g.nodeCluster[n]
	if !ok {
		return nil, false
	}
	ci := g.clusterIndex(id)
	if ci < 0 {
		return nil, false
	}
	return g.clusters[ci].clone(), true
}

// NodeCount returns the number of tracked nodes.
func (g *Grouper[T]) NodeCount() int {
	return len(g.nodes)
}

// ClusterCount returns the number of current clusters.
func (g *Grouper[T]) ClusterCount() int {
	return len(g.clusters)
}

// Options returns the configuration the grouper runs with, after
// defaulting.
func (g *Grouper[T]) Options() Options {
	return g.opts
}

// bestClusterIndex finds the cluster whose centroid is most similar to n
// at or above the insert threshold, or -1 when none qualifies. Ties keep
// the earliest cluster: a later candidate must be strictly better.
func (g *Grouper[T]) bestClusterIndex(n *Node[T]) int {
	if len(g.clusters) == 0 {
		return -1
	}

	threshold := g.insertThreshold()
	norm := g.normalizedFor(n)

	best := -1
	bestScore := math.Inf(-1)
	for i, c := range g.clusters {
		score := embedding.Dot(norm, c.Centroid)
		if score >= threshold && score > bestScore {
			best = i
			bestScore = score
		}
	}
	g.stats.comparisons.Add(int64(len(g.clusters)))
	return best
}

// insertThreshold is the similarity bar for single-node routing: the
// configured override when present, otherwise the threshold left behind
// by the most recent recluster.
func (g *Grouper[T]) insertThreshold() float64 {
	if g.opts.InsertThreshold != nil {
		return *g.opts.InsertThreshold
	}
	return g.lastThreshold
}

func (g *Grouper[T]) joinCluster(ci int, n *Node[T]) {
	c := g.clusters[ci]
	nodes := make([]*Node[T], 0, len(c.Nodes)+1)
	nodes = append(nodes, c.Nodes...)
	nodes = append(nodes, n)

	g.clusters[ci] = &Cluster[T]{ID: c.ID, Nodes: nodes, Centroid: centroidOf(nodes)}
	g.nodeCluster[n] = c.ID
}

func (g *Grouper[T]) newSingletonCluster(n *Node[T]) {
	c := &Cluster[T]{
		ID:       g.nextClusterID(),
		Nodes:    []*Node[T]{n},
		Centroid: centroidOf([]*Node[T]{n}),
	}
	g.clusters = append(g.clusters, c)
	g.nodeCluster[n] = c.ID
	g.stats.clustersCreated.Add(1)
}

// nextClusterID returns a fresh monotonic identifier. IDs are never
// reused within one grouper, so they change across reclusters.
func (g *Grouper[T]) nextClusterID() string {
	id := fmt.Sprintf("cluster_%d", g.clusterSeq)
	g.clusterSeq++
	return id
}

func (g *Grouper[T]) clusterIndex(id string) int {
	for i, c := range g.clusters {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// normalizedFor returns the unit-length embedding for n, computing and
// caching it on first use. The cache entry lives until the node is
// removed.
func (g *Grouper[T]) normalizedFor(n *Node[T]) embedding.Vector {
	if v, ok := g.normalized[n]; ok {
		return v
	}
	v := embedding.Normalize(n.Embedding.Value)
	g.normalized[n] = v
	return v
}

func (g *Grouper[T]) invalidatePairwise() {
	if !g.pairwiseValid && g.pairwise == nil {
		return
	}
	g.pairwise = nil
	g.pairwiseValid = false
	g.stats.cacheInvalidations.Add(1)
	g.inst.countCacheInvalidation()
}
