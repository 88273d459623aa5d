package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/prodplan/prodplan/plan/generator"
	"github.com/prodplan/prodplan/plan/model"
	"github.com/prodplan/prodplan/plan/report"
	"github.com/prodplan/prodplan/plan/solver"
)

var (
	benchSeeds     int           // Number of consecutive seeds to run
	benchTimeLimit time.Duration // Per-instance solver limit
	benchMaxNodes  int           // Per-instance node budget
)

// benchStats aggregates solves over a range of seeds.
type benchStats struct {
	Runs       int
	Statuses   map[string]int
	Objectives []float64
	Runtimes   []float64 // seconds
	Nodes      []int
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Generate and solve instances over a range of seeds",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := generator.DefaultConfig()
		if genConfigPath != "" {
			loaded, err := generator.LoadConfig(genConfigPath)
			if err != nil {
				logrus.Fatalf("Failed to load generator config: %v", err)
			}
			cfg = *loaded
		}
		if err := overlayGenerateFlags(&cfg, cmd.Flags()); err != nil {
			logrus.Fatalf("Failed to read flags: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid generator configuration: %v", err)
		}
		if benchSeeds < 1 {
			logrus.Fatalf("--seeds must be at least 1, got %d", benchSeeds)
		}

		opts := solver.DefaultOptions()
		opts.TimeLimit = benchTimeLimit
		opts.MaxNodes = benchMaxNodes
		stats, err := runBench(cmd.Context(), cfg, benchSeeds, opts, solver.BranchAndBound{})
		if err != nil {
			logrus.Fatalf("Benchmark failed: %v", err)
		}
		stats.Print(os.Stdout)
	},
}

// runBench solves instances generated from cfg with seeds cfg.Seed ..
// cfg.Seed+seeds-1. Instances are not written to disk.
func runBench(ctx context.Context, cfg generator.Config, seeds int, opts solver.Options, engine solver.Engine) (*benchStats, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	stats := &benchStats{Statuses: make(map[string]int)}
	for k := 0; k < seeds; k++ {
		run := cfg
		run.Seed = cfg.Seed + int64(k)
		res, err := generator.Generate(run)
		if err != nil {
			return nil, err
		}
		sol, err := engine.Solve(ctx, model.Build(res.Instance), opts)
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", run.Seed, err)
		}
		logrus.Debugf("bench: seed %d → %s in %s", run.Seed, sol.Status, sol.Runtime)

		stats.Runs++
		stats.Statuses[sol.Status.String()]++
		stats.Runtimes = append(stats.Runtimes, sol.Runtime.Seconds())
		stats.Nodes = append(stats.Nodes, sol.Nodes)
		if sol.Status.HasSolution() {
			stats.Objectives = append(stats.Objectives, sol.Objective)
		}
	}
	return stats, nil
}

// Print displays the aggregated benchmark statistics.
func (b *benchStats) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Benchmark ===")
	fmt.Fprintf(w, "Runs                 : %d\n", b.Runs)
	statuses := make([]string, 0, len(b.Statuses))
	for s := range b.Statuses {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		fmt.Fprintf(w, "  %-24s: %d\n", s, b.Statuses[s])
	}
	if len(b.Objectives) > 0 {
		fmt.Fprintf(w, "Mean Objective       : %.2f machines\n", report.Mean(b.Objectives))
	}
	fmt.Fprintf(w, "Runtime Mean         : %.3f s\n", report.Mean(b.Runtimes))
	fmt.Fprintf(w, "Runtime P50 / P90    : %.3f s / %.3f s\n", report.Percentile(b.Runtimes, 50), report.Percentile(b.Runtimes, 90))
	fmt.Fprintf(w, "Nodes Mean / P90     : %.1f / %.1f\n", report.Mean(b.Nodes), report.Percentile(b.Nodes, 90))
}

// bench shares the generate flags; --outdir and --instance-name are ignored.
func init() {
	registerGenerateFlags(benchCmd.Flags())
	benchCmd.Flags().IntVar(&benchSeeds, "seeds", 10, "Number of consecutive seeds, starting at --seed")
	benchCmd.Flags().DurationVar(&benchTimeLimit, "time-limit", time.Minute, "Wall-clock limit per instance")
	benchCmd.Flags().IntVar(&benchMaxNodes, "max-nodes", 0, "Branch-and-bound node budget per instance (0 = unlimited)")
	rootCmd.AddCommand(benchCmd)
}
