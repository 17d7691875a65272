package grouping

import "math"

// TuneResult describes one evaluated percentile candidate.
type TuneResult struct {
	Percentile   float64 `json:"percentile"`
	ClusterCount int     `json:"cluster_count"`
	Threshold    float64 `json:"threshold"`
}

// TuneOptions bounds the percentile search. Zero values fall back to the
// 80 to 99 range with a precision of 1.
type TuneOptions struct {
	MinPercentile float64
	MaxPercentile float64
	Precision     float64
}

func (o TuneOptions) withDefaults() TuneOptions {
	if o.MinPercentile <= 0 {
		o.MinPercentile = 80
	}
	if o.MaxPercentile <= 0 {
		o.MaxPercentile = 99
	}
	if o.Precision <= 0 {
		o.Precision = 1
	}
	return o
}

// TuneThresholdForTargetClusters binary-searches the percentile range for
// a clustering that produces at most maxClusters connected components.
// The search is advisory: no grouper state changes, and the returned
// percentile can be applied with ApplyPercentileAndRecluster. Component
// counting here ignores MinClusterSize, so an undersized component counts
// once rather than as one singleton per node.
//
// Each step evaluates the midpoint percentile; a candidate meeting the
// target becomes the current best and the search continues below it,
// otherwise the floor rises past the midpoint. When no percentile in
// range meets the target, the evaluation of the upper bound is returned.
// With no nodes, the result reports the default percentile and seed
// threshold with a count of zero.
func (g *Grouper[T]) TuneThresholdForTargetClusters(maxClusters int, opts TuneOptions) TuneResult {
	opts = opts.withDefaults()

	if len(g.nodes) == 0 {
		return TuneResult{
			Percentile:   DefaultSimilarityPercentile,
			ClusterCount: 0,
			Threshold:    defaultThreshold,
		}
	}

	low, high := opts.MinPercentile, opts.MaxPercentile
	best := g.evaluatePercentile(high)

	for high-low > opts.Precision {
		mid := math.Floor((low + high) / 2)
		cand := g.evaluatePercentile(mid)
		if cand.ClusterCount <= maxClusters {
			best = cand
			high = mid
		} else {
			low = mid + opts.Precision
		}
	}
	return best
}

// evaluatePercentile derives the threshold at one percentile and counts
// the connected components it would produce.
func (g *Grouper[T]) evaluatePercentile(percentile float64) TuneResult {
	threshold := g.thresholdForPercentile(percentile)
	return TuneResult{
		Percentile:   percentile,
		ClusterCount: g.countClustersForThreshold(threshold),
		Threshold:    threshold,
	}
}

// countClustersForThreshold counts the connected components a threshold
// would produce, without touching the current clustering.
func (g *Grouper[T]) countClustersForThreshold(threshold float64) int {
	if len(g.nodes) == 0 {
		return 0
	}
	return len(connectedComponents(g.buildAdjacency(threshold)))
}
