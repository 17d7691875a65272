// Package report collects and renders groupbench results.
package report

import (
	"fmt"
	"io"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/thebtf/grouper/pkg/grouping"
)

// ScenarioResult captures the outcome of one scenario run.
type ScenarioResult struct {
	Name           string `json:"name"`
	Nodes          int    `json:"nodes"`
	Clusters       int    `json:"clusters"`
	LargestCluster int    `json:"largest_cluster"`
	Singletons     int    `json:"singletons"`

	// Purity is the fraction of nodes sharing their cluster's majority
	// blob label, between 0 and 1. Higher means cleaner recovery of the
	// generated blobs.
	Purity float64 `json:"purity"`

	Threshold  float64 `json:"threshold"`
	DurationMS int64   `json:"duration_ms"`

	Tune *grouping.TuneResult `json:"tune,omitempty"`
}

// Report is one full groupbench run.
type Report struct {
	RunID     string           `json:"run_id"`
	StartedAt time.Time        `json:"started_at"`
	Results   []ScenarioResult `json:"results"`
}

// New creates an empty report with a fresh run id.
func New() *Report {
	return &Report{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}
}

// Add appends one scenario outcome.
func (r *Report) Add(res ScenarioResult) {
	r.Results = append(r.Results, res)
}

// Summarize builds a ScenarioResult from a finished run. Node payloads
// carry the generator's blob labels, which ground the purity measure.
func Summarize(name string, g *grouping.Grouper[int], took time.Duration) ScenarioResult {
	clusters := g.GetClusters()

	largest, singletons := 0, 0
	majority, total := 0, 0
	for _, c := range clusters {
		if len(c.Nodes) > largest {
			largest = len(c.Nodes)
		}
		if len(c.Nodes) == 1 {
			singletons++
		}

		counts := make(map[int]int)
		for _, n := range c.Nodes {
			counts[n.Value]++
		}
		top := 0
		for _, cnt := range counts {
			if cnt > top {
				top = cnt
			}
		}
		majority += top
		total += len(c.Nodes)
	}

	purity := 0.0
	if total > 0 {
		purity = float64(majority) / float64(total)
	}

	return ScenarioResult{
		Name:           name,
		Nodes:          g.NodeCount(),
		Clusters:       len(clusters),
		LargestCluster: largest,
		Singletons:     singletons,
		Purity:         purity,
		Threshold:      g.Stats().LastThreshold,
		DurationMS:     took.Milliseconds(),
	}
}

// Reporter renders reports to a writer.
type Reporter struct {
	w io.Writer
}

// NewReporter creates a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// PrintSummary writes a fixed-width table of scenario outcomes.
func (p *Reporter) PrintSummary(r *Report) {
	fmt.Fprintf(p.w, "run %s (%d scenarios)\n", r.RunID, len(r.Results))
	fmt.Fprintf(p.w, "%-24s %7s %9s %8s %11s %7s %10s %8s\n",
		"SCENARIO", "NODES", "CLUSTERS", "LARGEST", "SINGLETONS", "PURITY", "THRESHOLD", "TOOK")
	for _, res := range r.Results {
		fmt.Fprintf(p.w, "%-24s %7d %9d %8d %11d %7.3f %10.4f %6dms\n",
			res.Name, res.Nodes, res.Clusters, res.LargestCluster,
			res.Singletons, res.Purity, res.Threshold, res.DurationMS)
		if res.Tune != nil {
			fmt.Fprintf(p.w, "  tune: percentile %.0f -> %d clusters (threshold %.4f)\n",
				res.Tune.Percentile, res.Tune.ClusterCount, res.Tune.Threshold)
		}
	}
}

// PrintJSON writes the report as indented JSON.
func (p *Reporter) PrintJSON(r *Report) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// SaveJSON writes the report to path as indented JSON.
func (p *Reporter) SaveJSON(r *Report, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}
