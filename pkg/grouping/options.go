package grouping

import "go.opentelemetry.io/otel/metric"

const (
	// DefaultSimilarityPercentile is the percentile of the pairwise
	// similarity distribution used for the edge threshold when the
	// option is left unset.
	DefaultSimilarityPercentile = 94.0

	// DefaultMinClusterSize is the smallest connected component kept as
	// a group when the option is left unset.
	DefaultMinClusterSize = 2

	// defaultThreshold seeds the edge threshold before the first
	// recluster has derived one from the data, and applies whenever
	// fewer than two nodes exist.
	defaultThreshold = 0.8
)

// Options configures a Grouper.
type Options struct {
	// SimilarityPercentile selects the edge threshold from the pairwise
	// similarity distribution during Recluster, in the range 0-100.
	// Higher values produce stricter edges and more, smaller clusters.
	SimilarityPercentile float64

	// MinClusterSize is the smallest connected component kept as a
	// cluster. Smaller components are broken into singleton clusters.
	MinClusterSize int

	// InsertThreshold, when set, fixes the similarity an incrementally
	// added node needs to join an existing cluster. When nil, the
	// threshold from the most recent Recluster applies (0.8 before any
	// recluster has run).
	InsertThreshold *float64

	// Meter, when set, publishes engine counters and recluster timings
	// through OpenTelemetry. Nil disables instrumentation.
	Meter metric.Meter
}

// DefaultOptions returns the configuration used for zero-valued fields.
func DefaultOptions() Options {
	return Options{
		SimilarityPercentile: DefaultSimilarityPercentile,
		MinClusterSize:       DefaultMinClusterSize,
	}
}

func (o Options) withDefaults() Options {
	if o.SimilarityPercentile <= 0 {
		o.SimilarityPercentile = DefaultSimilarityPercentile
	}
	if o.MinClusterSize <= 0 {
		o.MinClusterSize = DefaultMinClusterSize
	}
	return o
}
