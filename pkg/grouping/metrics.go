package grouping

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// instruments holds the optional OpenTelemetry instruments. A nil
// *instruments records nothing, so callers never branch on it.
type instruments struct {
	nodesAdded         metric.Int64Counter
	nodesRemoved       metric.Int64Counter
	reclusters         metric.Int64Counter
	cacheInvalidations metric.Int64Counter
	reclusterSeconds   metric.Float64Histogram
}

func newInstruments(meter metric.Meter) (*instruments, error) {
	var in instruments
	var err error

	if in.nodesAdded, err = meter.Int64Counter(
		"grouper.nodes.added",
		metric.WithDescription("Nodes inserted into the grouper"),
	); err != nil {
		return nil, err
	}
	if in.nodesRemoved, err = meter.Int64Counter(
		"grouper.nodes.removed",
		metric.WithDescription("Nodes removed from the grouper"),
	); err != nil {
		return nil, err
	}
	if in.reclusters, err = meter.Int64Counter(
		"grouper.reclusters",
		metric.WithDescription("Full recluster passes"),
	); err != nil {
		return nil, err
	}
	if in.cacheInvalidations, err = meter.Int64Counter(
		"grouper.cache.invalidations",
		metric.WithDescription("Pairwise similarity cache drops"),
	); err != nil {
		return nil, err
	}
	if in.reclusterSeconds, err = meter.Float64Histogram(
		"grouper.recluster.duration",
		metric.WithDescription("Wall time of a full recluster pass"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return &in, nil
}

func (in *instruments) countNodesAdded(n int64) {
	if in == nil {
		return
	}
	in.nodesAdded.Add(context.Background(), n)
}

func (in *instruments) countNodesRemoved(n int64) {
	if in == nil {
		return
	}
	in.nodesRemoved.Add(context.Background(), n)
}

func (in *instruments) countCacheInvalidation() {
	if in == nil {
		return
	}
	in.cacheInvalidations.Add(context.Background(), 1)
}

func (in *instruments) recordRecluster(took time.Duration) {
	if in == nil {
		return
	}
	in.reclusters.Add(context.Background(), 1)
	in.reclusterSeconds.Record(context.Background(), took.Seconds())
}
