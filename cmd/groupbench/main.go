// Package main provides the groupbench harness: it clusters synthetic
// embedding datasets with the grouping engine and reports the outcomes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/thebtf/grouper/internal/report"
	"github.com/thebtf/grouper/internal/scenario"
	"github.com/thebtf/grouper/internal/synthetic"
	"github.com/thebtf/grouper/internal/watcher"
	"github.com/thebtf/grouper/pkg/embedding"
	"github.com/thebtf/grouper/pkg/grouping"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Scenario config file (YAML); omit for the built-in default")
	output := flag.String("output", "summary", "Output format: summary, json")
	savePath := flag.String("save", "", "Save the JSON report to this file")
	watch := flag.Bool("watch", false, "Re-run whenever the config file changes")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Reports go to stdout, so log to stderr
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("Shutting down groupbench")
		cancel()
	}()

	log.Info().Str("version", Version).Msg("Starting groupbench")

	if err := runOnce(ctx, *configPath, *output, *savePath); err != nil {
		log.Fatal().Err(err).Msg("Benchmark run failed")
	}

	if !*watch {
		return
	}
	if *configPath == "" {
		log.Fatal().Msg("--watch requires --config")
	}

	w, err := watcher.New(*configPath, func() {
		log.Info().Str("path", *configPath).Msg("Config changed, re-running")
		if err := runOnce(ctx, *configPath, *output, *savePath); err != nil {
			log.Error().Err(err).Msg("Benchmark re-run failed")
		}
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create config watcher")
	}
	if err := w.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start config watcher")
	}
	defer func() { _ = w.Stop() }()

	log.Info().Str("path", *configPath).Msg("Watching config for changes")
	<-ctx.Done()
}

// runOnce loads the scenarios, runs them concurrently and renders the
// report.
func runOnce(ctx context.Context, configPath, output, savePath string) error {
	scenarios, err := scenario.Load(configPath)
	if err != nil {
		return err
	}

	results := make([]report.ScenarioResult, len(scenarios))
	eg, ctx := errgroup.WithContext(ctx)
	for i, sc := range scenarios {
		eg.Go(func() error {
			res, err := runScenario(ctx, sc)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", sc.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	rep := report.New()
	for _, res := range results {
		rep.Add(res)
	}

	reporter := report.NewReporter(os.Stdout)
	switch output {
	case "json":
		if err := reporter.PrintJSON(rep); err != nil {
			return err
		}
	default:
		reporter.PrintSummary(rep)
	}

	if savePath != "" {
		if err := reporter.SaveJSON(rep, savePath); err != nil {
			return err
		}
		log.Info().Str("path", savePath).Msg("Report saved")
	}
	return nil
}

// runScenario generates the dataset, clusters it and summarizes the
// result, including the advisory tune when the scenario asks for one.
func runScenario(ctx context.Context, sc scenario.Scenario) (report.ScenarioResult, error) {
	if err := ctx.Err(); err != nil {
		return report.ScenarioResult{}, err
	}

	points := synthetic.Blobs(sc.Generator())
	nodes := make([]*grouping.Node[int], len(points))
	for i, p := range points {
		nodes[i] = grouping.NewNode(p.Blob, embedding.Embedding{
			Type:  "synthetic",
			Value: p.Vector,
		})
	}

	g := grouping.New[int](sc.Options())

	start := time.Now()
	g.AddNodes(nodes, true)
	took := time.Since(start)

	res := report.Summarize(sc.Name, g, took)
	if sc.TargetClusters > 0 {
		tune := g.TuneThresholdForTargetClusters(sc.TargetClusters, grouping.TuneOptions{})
		res.Tune = &tune
	}

	log.Debug().
		Str("scenario", sc.Name).
		Int("nodes", res.Nodes).
		Int("clusters", res.Clusters).
		Dur("took", took).
		Msg("scenario complete")
	return res, nil
}
