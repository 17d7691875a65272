package grouping

import (
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thebtf/grouper/pkg/embedding"
)

// Recluster rebuilds the grouping from scratch. It derives the edge
// threshold from the configured similarity percentile, connects every
// node pair at or above it, and turns the connected components into
// clusters. Components smaller than MinClusterSize are broken into
// singleton clusters. All cluster IDs are reissued.
func (g *Grouper[T]) Recluster() {
	start := time.Now()
	g.stats.reclusters.Add(1)

	if len(g.nodes) == 0 {
		g.clusters = nil
		g.nodeCluster = make(map[*Node[T]]string)
		return
	}

	threshold := g.thresholdForPercentile(g.opts.SimilarityPercentile)
	g.lastThreshold = threshold

	components := connectedComponents(g.buildAdjacency(threshold))

	clusters := make([]*Cluster[T], 0, len(components))
	nodeCluster := make(map[*Node[T]]string, len(g.nodes))

	for _, comp := range components {
		// DFS emits members in traversal order; restore insertion order.
		sort.Ints(comp)

		if len(comp) < g.opts.MinClusterSize {
			for _, ni := range comp {
				n := g.nodes[ni]
				c := &Cluster[T]{
					ID:       g.nextClusterID(),
					Nodes:    []*Node[T]{n},
					Centroid: centroidOf([]*Node[T]{n}),
				}
				clusters = append(clusters, c)
				nodeCluster[n] = c.ID
				g.stats.clustersCreated.Add(1)
			}
			continue
		}

		members := make([]*Node[T], len(comp))
		for i, ni := range comp {
			members[i] = g.nodes[ni]
		}
		c := &Cluster[T]{
			ID:       g.nextClusterID(),
			Nodes:    members,
			Centroid: centroidOf(members),
		}
		clusters = append(clusters, c)
		for _, m := range members {
			nodeCluster[m] = c.ID
		}
		g.stats.clustersCreated.Add(1)
	}

	g.clusters = clusters
	g.nodeCluster = nodeCluster

	took := time.Since(start)
	g.stats.recordRecluster(len(g.nodes), len(clusters), threshold, took)
	g.inst.recordRecluster(took)

	log.Debug().
		Int("nodes", len(g.nodes)).
		Int("clusters", len(clusters)).
		Float64("threshold", threshold).
		Dur("took", took).
		Msg("recluster complete")
}

// ApplyPercentileAndRecluster runs one full recluster at the given
// percentile without changing the configured one. Typically used to
// apply a percentile found by TuneThresholdForTargetClusters.
func (g *Grouper[T]) ApplyPercentileAndRecluster(percentile float64) {
	orig := g.opts.SimilarityPercentile
	g.opts.SimilarityPercentile = percentile
	defer func() { g.opts.SimilarityPercentile = orig }()

	g.Recluster()
}

// thresholdForPercentile picks the edge threshold at the given percentile
// of the pairwise similarity distribution. With fewer than two nodes
// there is no distribution and the seed threshold applies.
func (g *Grouper[T]) thresholdForPercentile(percentile float64) float64 {
	if len(g.nodes) < 2 {
		return defaultThreshold
	}

	sims := g.pairwiseSimilarities()
	idx := int(math.Floor(percentile / 100 * float64(len(sims))))
	if idx >= len(sims) {
		idx = len(sims) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sims[idx]
}

// pairwiseSimilarities returns the ascending distribution of cosine
// similarities over every ordered node pair, each node's self-similarity
// included once and every symmetric pair twice. Cached until the node
// set changes.
func (g *Grouper[T]) pairwiseSimilarities() []float64 {
	if g.pairwiseValid {
		return g.pairwise
	}

	n := len(g.nodes)
	norms := make([]embedding.Vector, n)
	for i, node := range g.nodes {
		norms[i] = g.normalizedFor(node)
	}

	sims := make([]float64, 0, n*n)
	for i := 0; i < n; i++ {
		sims = append(sims, embedding.Dot(norms[i], norms[i]))
		for j := i + 1; j < n; j++ {
			s := embedding.Dot(norms[i], norms[j])
			sims = append(sims, s, s)
		}
	}
	sort.Float64s(sims)

	g.pairwise = sims
	g.pairwiseValid = true
	g.stats.comparisons.Add(int64(n + n*(n-1)/2))
	return sims
}

// buildAdjacency connects node indexes whose cosine similarity is at or
// above threshold.
func (g *Grouper[T]) buildAdjacency(threshold float64) [][]int {
	n := len(g.nodes)
	norms := make([]embedding.Vector, n)
	for i, node := range g.nodes {
		norms[i] = g.normalizedFor(node)
	}

	adj := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if embedding.Dot(norms[i], norms[j]) >= threshold {
				adj[i] = append(adj[i], j)
				adj[j] = append(adj[j], i)
			}
		}
	}
	g.stats.comparisons.Add(int64(n * (n - 1) / 2))
	return adj
}

// connectedComponents returns groups of mutually reachable node indexes,
// walking each component with an explicit stack.
func connectedComponents(adj [][]int) [][]int {
	visited := make([]bool, len(adj))
	components := make([][]int, 0, len(adj))

	for start := range adj {
		if visited[start] {
			continue
		}

		comp := []int{}
		stack := []int{start}
		visited[start] = true

		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, cur)

			for _, next := range adj[cur] {
				if !visited[next] {
					visited[next] = true
					stack = append(stack, next)
				}
			}
		}
		components = append(components, comp)
	}
	return components
}
