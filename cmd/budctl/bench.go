package main

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/joshuapare/budkit/heap/trace"
	"github.com/joshuapare/budkit/internal/logger"
)

var (
	benchFlags      heapFlags
	benchHeaps      int
	benchWorkers    int
	benchSeed       int64
	benchRequests   int
	benchMaxLive    int
	benchLargeRatio float64
)

func init() {
	cmd := newBenchCmd()
	benchFlags.register(cmd)
	cmd.Flags().IntVar(&benchHeaps, "heaps", 8, "Number of independent heaps")
	cmd.Flags().IntVar(&benchWorkers, "workers", runtime.GOMAXPROCS(0), "Maximum heaps replayed at once")
	cmd.Flags().Int64Var(&benchSeed, "seed", 1, "Seed of the first heap's trace; heap i uses seed+i")
	cmd.Flags().IntVar(&benchRequests, "requests", 100000, "REQUEST operations per heap")
	cmd.Flags().IntVar(&benchMaxLive, "max-live", 512, "Maximum simultaneously live blocks per heap")
	cmd.Flags().Float64Var(&benchLargeRatio, "large-ratio", 0.02, "Fraction of requests that need a dedicated page")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Replay synthetic traces on independent heaps in parallel",
		Long: `The bench command generates one trace per heap and replays them
concurrently, each heap with its own page provider. It reports throughput
and the worst page usage seen.

Example:
  budctl bench
  budctl bench --heaps 32 --workers 4 --requests 20000 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd.Context())
		},
	}
	return cmd
}

// BenchReport is the bench command's output.
type BenchReport struct {
	Heaps          int     `json:"heaps"`
	Ops            int     `json:"ops"`
	Elapsed        string  `json:"elapsed"`
	OpsPerSec      float64 `json:"ops_per_sec"`
	MaxPeakPages   int     `json:"max_peak_pages"`
	MinUtilization float64 `json:"min_utilization"`
	MaxUtilization float64 `json:"max_utilization"`
	Leaks          int     `json:"leaks"`
}

func runBench(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if benchHeaps <= 0 {
		return fmt.Errorf("--heaps must be positive, got %d", benchHeaps)
	}
	workers := max(benchWorkers, 1)

	printVerbose("Generating %d traces of %d requests\n", benchHeaps, benchRequests)
	traces := make([][]trace.Op, benchHeaps)
	for i := range traces {
		traces[i] = trace.Generate(trace.GenOptions{
			Seed:       benchSeed + int64(i),
			Requests:   benchRequests,
			MaxLive:    benchMaxLive,
			LargeRatio: benchLargeRatio,
			PageSize:   benchFlags.pageSize,
		})
	}

	start := time.Now()
	p := pool.NewWithResults[trace.Result]().
		WithContext(ctx).
		WithCancelOnError().
		WithMaxGoroutines(workers)
	for i, ops := range traces {
		p.Go(func(ctx context.Context) (trace.Result, error) {
			ba, prov, err := benchFlags.newHeap()
			if err != nil {
				return trace.Result{}, err
			}
			defer ba.Close()
			res, err := trace.NewReplayer(ba, prov, trace.ReplayOptions{Logger: logger.L}).Replay(ctx, ops)
			if err != nil {
				return res, fmt.Errorf("heap %d: %w", i, err)
			}
			logger.Debug("heap replayed", "heap", i, "ops", res.Ops, "peak_pages", res.PeakPages)
			return res, nil
		})
	}
	results, err := p.Wait()
	elapsed := time.Since(start)
	if err != nil {
		return err
	}

	report := summarize(results, elapsed)
	if jsonOut {
		return printJSON(report)
	}
	printInfo("Heaps:        %d\n", report.Heaps)
	printInfo("Operations:   %d\n", report.Ops)
	printInfo("Elapsed:      %s\n", report.Elapsed)
	printInfo("Throughput:   %.0f ops/s\n", report.OpsPerSec)
	printInfo("Peak pages:   %d (worst heap)\n", report.MaxPeakPages)
	printInfo("Utilization:  %.2f%% .. %.2f%%\n", report.MinUtilization*100, report.MaxUtilization*100)
	if report.Leaks > 0 {
		printInfo("Leaks:        %d\n", report.Leaks)
	}
	return nil
}

func summarize(results []trace.Result, elapsed time.Duration) BenchReport {
	r := BenchReport{Heaps: len(results), Elapsed: elapsed.String()}
	for i, res := range results {
		r.Ops += res.Ops
		r.Leaks += res.Leaks
		r.MaxPeakPages = max(r.MaxPeakPages, res.PeakPages)
		if i == 0 || res.Utilization < r.MinUtilization {
			r.MinUtilization = res.Utilization
		}
		r.MaxUtilization = max(r.MaxUtilization, res.Utilization)
	}
	if s := elapsed.Seconds(); s > 0 {
		r.OpsPerSec = float64(r.Ops) / s
	}
	return r
}
